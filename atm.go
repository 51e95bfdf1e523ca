// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sync"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

var (
	atmOperations = kitprom.NewCounterFrom(stdprom.CounterOpts{
		Name: "atm_operations_total",
		Help: "Count of ATM operations by outcome.",
	}, []string{"operation", "outcome"})
)

// AutomatedTellerMachine runs the money operations for one physical machine.
// It operates on Account references passed per call and owns nothing except
// its cash float, which withdrawals draw down and deposits replenish.
type AutomatedTellerMachine struct {
	// ID identifies this machine to the Bank.
	ID string `json:"atmId"`

	// Address is where the machine is installed. It's descriptive only.
	Address string `json:"address"`

	mu        sync.Mutex
	totalCash Amount

	logger   log.Logger
	notifier Sender

	listeners []func(msg string)
}

// NewATM creates a machine loaded with totalCash.
// notifier can be nil when out-of-band messaging isn't configured.
func NewATM(logger log.Logger, id, address string, totalCash *Amount, notifier Sender) *AutomatedTellerMachine {
	return &AutomatedTellerMachine{
		ID:        id,
		Address:   address,
		totalCash: *totalCash,
		logger:    logger,
		notifier:  notifier,
	}
}

// Subscribe registers a listener for operation outcome messages. Listeners
// are invoked synchronously, in subscription order, exactly once per
// operation outcome.
//
// Subscribe isn't safe to call once operations have started.
func (atm *AutomatedTellerMachine) Subscribe(fn func(msg string)) {
	atm.listeners = append(atm.listeners, fn)
}

func (atm *AutomatedTellerMachine) emit(msg string) {
	for i := range atm.listeners {
		atm.listeners[i](msg)
	}
}

// TotalCash returns the machine's current cash float.
func (atm *AutomatedTellerMachine) TotalCash() Amount {
	atm.mu.Lock()
	defer atm.mu.Unlock()
	return atm.totalCash
}

// Authenticate checks the entered PIN against the account. No balance is
// read or written, only the boolean result and an outcome message.
func (atm *AutomatedTellerMachine) Authenticate(account *Account, enteredPIN string) bool {
	if account.ValidatePIN(enteredPIN) {
		atmOperations.With("operation", "authenticate", "outcome", "success").Add(1)
		atm.emit("Authentication successful.")
		return true
	}
	atmOperations.With("operation", "authenticate", "outcome", "failure").Add(1)
	atm.emit("Authentication failed.")
	return false
}

// CheckBalance reads the account balance and emits it as an outcome message.
func (atm *AutomatedTellerMachine) CheckBalance(account *Account) Amount {
	balance := account.Balance()
	atmOperations.With("operation", "balance", "outcome", "success").Add(1)
	atm.emit(fmt.Sprintf("Balance checked. Current balance: %s", balance.String()))
	return balance
}

// Withdraw dispenses amount from the machine. The account balance and the
// machine's cash float are checked together and mutated together, so the two
// can't drift: either both decrease by amount or neither changes.
func (atm *AutomatedTellerMachine) Withdraw(account *Account, amount Amount) bool {
	account.mu.Lock()
	defer account.mu.Unlock()
	atm.mu.Lock()
	defer atm.mu.Unlock()

	if !amount.Positive() || amount.GreaterThan(account.balance) || amount.GreaterThan(atm.totalCash) {
		atmOperations.With("operation", "withdraw", "outcome", "failure").Add(1)
		atm.emit("Withdrawal failed: Insufficient funds.")
		return false
	}

	remaining, err := atm.totalCash.Minus(amount)
	if err != nil || !account.withdrawLocked(amount) {
		atmOperations.With("operation", "withdraw", "outcome", "failure").Add(1)
		atm.emit("Withdrawal failed: Insufficient funds.")
		return false
	}
	atm.totalCash = remaining

	atmOperations.With("operation", "withdraw", "outcome", "success").Add(1)
	atm.emit(fmt.Sprintf("Withdrawal successful. Amount: %s", amount.String()))
	return true
}

// Deposit accepts amount into the machine. The account balance and the cash
// float both increase, or on an invalid amount neither changes.
func (atm *AutomatedTellerMachine) Deposit(account *Account, amount Amount) bool {
	account.mu.Lock()
	defer account.mu.Unlock()
	atm.mu.Lock()
	defer atm.mu.Unlock()

	if !amount.Positive() {
		atmOperations.With("operation", "deposit", "outcome", "failure").Add(1)
		atm.emit("Deposit failed: Invalid amount.")
		return false
	}

	total, err := atm.totalCash.Plus(amount)
	if err != nil || !account.depositLocked(amount) {
		atmOperations.With("operation", "deposit", "outcome", "failure").Add(1)
		atm.emit("Deposit failed: Invalid amount.")
		return false
	}
	atm.totalCash = total

	atmOperations.With("operation", "deposit", "outcome", "success").Add(1)
	atm.emit(fmt.Sprintf("Deposit successful. Amount: %s", amount.String()))
	return true
}

// Transfer moves amount between two accounts. No physical cash changes
// hands, so the machine's float is untouched. Both accounts are locked for
// the duration, ordered by card number to avoid deadlock.
//
// Both balances must hold amount's currency, checked before the sender is
// debited so a failed transfer leaves both accounts untouched.
func (atm *AutomatedTellerMachine) Transfer(sender, receiver *Account, amount Amount) bool {
	first, second := sender, receiver
	if first.CardNumber > second.CardNumber {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	if first != second {
		second.mu.Lock()
		defer second.mu.Unlock()
	}

	sameCurrency := amount.symbol == sender.balance.symbol && amount.symbol == receiver.balance.symbol
	if !amount.Positive() || !sameCurrency || !sender.withdrawLocked(amount) {
		atmOperations.With("operation", "transfer", "outcome", "failure").Add(1)
		atm.emit("Transfer failed: Insufficient funds.")
		return false
	}

	// The amount was validated positive and in the receiver's currency
	// above, so the deposit can't fail.
	receiver.depositLocked(amount)

	atmOperations.With("operation", "transfer", "outcome", "success").Add(1)
	atm.emit(fmt.Sprintf("Transfer successful. Amount: %s", amount.String()))
	return true
}

// SendNotification asks the configured Sender to deliver an out-of-band
// message. Delivery is best-effort: failures are logged and reported through
// the outcome message, never returned to callers, so a completed balance
// mutation can't be unwound by a transport problem.
func (atm *AutomatedTellerMachine) SendNotification(to, subject, body string) {
	if atm.notifier == nil {
		return
	}
	n := &Notification{
		ATM:     atm.ID,
		To:      to,
		Subject: subject,
		Body:    body,
	}
	if err := atm.notifier.Info(n); err != nil {
		atm.logger.Log("atm", fmt.Sprintf("problem sending notification: %v", err), "atmID", atm.ID)
		atm.emit(fmt.Sprintf("Failed to send email: %v", err))
		return
	}
	atm.emit("Email notification sent.")
}
