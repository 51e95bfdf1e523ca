// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"testing"
)

func testAccount(t *testing.T, balance string) *Account {
	t.Helper()

	amt, err := NewAmount("USD", balance)
	if err != nil {
		t.Fatal(err)
	}
	return NewAccount("1234567890123456", "1234", "John Doe", amt)
}

func TestAccount__ValidatePIN(t *testing.T) {
	account := testAccount(t, "5000.00")

	if !account.ValidatePIN("1234") {
		t.Error("expected match")
	}
	if account.ValidatePIN("4321") {
		t.Error("expected mismatch")
	}
	// differing lengths
	if account.ValidatePIN("123") {
		t.Error("expected mismatch")
	}
	if account.ValidatePIN("12345") {
		t.Error("expected mismatch")
	}
	if account.ValidatePIN("") {
		t.Error("expected mismatch")
	}
}

func TestAccount__withdraw(t *testing.T) {
	account := testAccount(t, "5000.00")

	amt, _ := NewAmount("USD", "2000.00")
	if !account.withdraw(*amt) {
		t.Fatal("expected success")
	}
	if v := account.Balance().String(); v != "USD 3000.00" {
		t.Errorf("got %q", v)
	}

	// more than the balance
	amt, _ = NewAmount("USD", "6000.00")
	if account.withdraw(*amt) {
		t.Fatal("expected failure")
	}
	if v := account.Balance().String(); v != "USD 3000.00" {
		t.Errorf("got %q", v)
	}

	// exactly the balance
	amt, _ = NewAmount("USD", "3000.00")
	if !account.withdraw(*amt) {
		t.Fatal("expected success")
	}
	if v := account.Balance().String(); v != "USD 0.00" {
		t.Errorf("got %q", v)
	}

	// zero and negative amounts
	amt, _ = NewAmount("USD", "0.00")
	if account.withdraw(*amt) {
		t.Fatal("expected failure")
	}
	amt, _ = NewAmount("USD", "-10.00")
	if account.withdraw(*amt) {
		t.Fatal("expected failure")
	}
	if v := account.Balance().String(); v != "USD 0.00" {
		t.Errorf("got %q", v)
	}
}

func TestAccount__deposit(t *testing.T) {
	account := testAccount(t, "1000.00")

	amt, _ := NewAmount("USD", "500.00")
	if !account.deposit(*amt) {
		t.Fatal("expected success")
	}
	if v := account.Balance().String(); v != "USD 1500.00" {
		t.Errorf("got %q", v)
	}

	// zero and negative amounts never mutate
	amt, _ = NewAmount("USD", "0.00")
	if account.deposit(*amt) {
		t.Fatal("expected failure")
	}
	amt, _ = NewAmount("USD", "-500.00")
	if account.deposit(*amt) {
		t.Fatal("expected failure")
	}
	if v := account.Balance().String(); v != "USD 1500.00" {
		t.Errorf("got %q", v)
	}
}

// The balance can never go negative through any sequence of operations.
func TestAccount__balanceNeverNegative(t *testing.T) {
	account := testAccount(t, "100.00")

	withdraw, _ := NewAmount("USD", "60.00")
	account.withdraw(*withdraw)
	account.withdraw(*withdraw) // fails, only 40 left
	account.withdraw(*withdraw)

	if v := account.Balance().String(); v != "USD 40.00" {
		t.Errorf("got %q", v)
	}
}
