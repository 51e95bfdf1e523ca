// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
)

// Bank is a directory of ATMs and accounts. ATMs keep their registration
// order while accounts are keyed by card number.
type Bank struct {
	Name string

	atms     []*AutomatedTellerMachine
	accounts map[string]*Account
}

func NewBank(name string) *Bank {
	return &Bank{
		Name:     name,
		accounts: make(map[string]*Account),
	}
}

// AddATM registers an ATM with the bank.
func (b *Bank) AddATM(atm *AutomatedTellerMachine) {
	b.atms = append(b.atms, atm)
}

// ATMs returns the registered machines in registration order.
func (b *Bank) ATMs() []*AutomatedTellerMachine {
	return b.atms
}

// ATMByID finds a registered machine by its ID.
func (b *Bank) ATMByID(id string) (*AutomatedTellerMachine, bool) {
	for i := range b.atms {
		if b.atms[i].ID == id {
			return b.atms[i], true
		}
	}
	return nil, false
}

// AddAccount registers an account. Card numbers uniquely identify accounts,
// so registering a duplicate is rejected rather than shadowing the earlier
// account.
func (b *Bank) AddAccount(account *Account) error {
	if account == nil || account.CardNumber == "" {
		return fmt.Errorf("invalid account")
	}
	if _, exists := b.accounts[account.CardNumber]; exists {
		return fmt.Errorf("account with card number %s already exists", account.CardNumber)
	}
	b.accounts[account.CardNumber] = account
	return nil
}

// Lookup finds an account by card number. The second return value reports
// whether the card number is known, so callers branch on misses explicitly.
func (b *Bank) Lookup(cardNumber string) (*Account, bool) {
	account, exists := b.accounts[cardNumber]
	return account, exists
}
