// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"sync"
)

// Account is a card holder's balance known to the Bank. Balances are only
// changed through withdraw and deposit so the non-negative invariant holds.
type Account struct {
	// CardNumber is the opaque unique identifier for this account.
	CardNumber string `json:"cardNumber"`

	// FullName is the display name of the card holder.
	FullName string `json:"fullName"`

	// pinDigest is a sha256 of the PIN. Comparing digests keeps the
	// check constant-time and avoids leaking the PIN length.
	pinDigest [sha256.Size]byte

	mu      sync.Mutex
	balance Amount
}

// NewAccount creates an Account with an initial balance.
// The PIN is digested right away and never stored in cleartext.
func NewAccount(cardNumber, pin, fullName string, balance *Amount) *Account {
	return &Account{
		CardNumber: cardNumber,
		FullName:   fullName,
		pinDigest:  sha256.Sum256([]byte(pin)),
		balance:    *balance,
	}
}

// ValidatePIN compares the entered PIN against the stored credential.
// Any mismatch, including a differing length, returns false.
func (a *Account) ValidatePIN(entered string) bool {
	digest := sha256.Sum256([]byte(entered))
	return subtle.ConstantTimeCompare(digest[:], a.pinDigest[:]) == 1
}

// Balance returns the current balance.
func (a *Account) Balance() Amount {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// withdraw subtracts amount from the balance. It returns false without
// mutation when amount isn't positive or exceeds the balance.
func (a *Account) withdraw(amount Amount) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.withdrawLocked(amount)
}

func (a *Account) withdrawLocked(amount Amount) bool {
	if !amount.Positive() || amount.GreaterThan(a.balance) {
		return false
	}
	remaining, err := a.balance.Minus(amount)
	if err != nil {
		return false
	}
	a.balance = remaining
	return true
}

// deposit adds amount to the balance. Non-positive amounts are rejected,
// otherwise a deposit never fails.
func (a *Account) deposit(amount Amount) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.depositLocked(amount)
}

func (a *Account) depositLocked(amount Amount) bool {
	if !amount.Positive() {
		return false
	}
	total, err := a.balance.Plus(amount)
	if err != nil {
		return false
	}
	a.balance = total
	return true
}
