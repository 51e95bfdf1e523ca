// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"golang.org/x/text/currency"
)

var (
	// ErrDifferentCurrencies is returned when an operation mixes
	// Amounts of different currencies.
	ErrDifferentCurrencies = errors.New("different currencies")
)

// Amount represents units of a particular currency.
type Amount struct {
	number *big.Rat
	symbol string // ISO 4217, i.e. USD, GBP
}

// Int returns the currency amount as an integer.
// Example: "USD 1.11" returns 111
func (a *Amount) Int() int {
	n, _ := a.number.Float64()
	return int(math.Round(n * 100))
}

func (a *Amount) Validate() error {
	if a == nil {
		return errors.New("nil Amount")
	}
	_, err := currency.ParseISO(a.symbol)
	return err
}

// Equal returns true if both Amounts have the same currency and quantity.
func (a Amount) Equal(other Amount) bool {
	if a.symbol != other.symbol {
		return false
	}
	return a.number.Cmp(other.number) == 0
}

// Plus returns an Amount of adding both Amount quantities together.
// Currency symbols must match for Plus to return a valid result.
func (a Amount) Plus(other Amount) (Amount, error) {
	if a.symbol != other.symbol {
		return a, ErrDifferentCurrencies
	}
	sum := new(big.Rat).Add(a.number, other.number)
	return Amount{sum, a.symbol}, nil
}

// Minus returns an Amount of the first minus the second quantity.
// Currency symbols must match for Minus to return a valid result.
func (a Amount) Minus(other Amount) (Amount, error) {
	if a.symbol != other.symbol {
		return a, ErrDifferentCurrencies
	}
	diff := new(big.Rat).Sub(a.number, other.number)
	return Amount{diff, a.symbol}, nil
}

// GreaterThan returns true if a's quantity is strictly larger than
// other's. Mismatched currencies always compare false.
func (a Amount) GreaterThan(other Amount) bool {
	if a.symbol != other.symbol {
		return false
	}
	return a.number.Cmp(other.number) > 0
}

// Positive returns true if the Amount quantity is strictly greater than zero.
func (a Amount) Positive() bool {
	return a.number != nil && a.number.Sign() > 0
}

// NewAmount returns an Amount object after validating the ISO 4217 currency symbol.
func NewAmount(symbol string, number string) (*Amount, error) {
	sym, err := currency.ParseISO(symbol)
	if err != nil {
		return nil, err
	}

	n := new(big.Rat)
	if _, ok := n.SetString(number); !ok {
		return nil, fmt.Errorf("unable to read %s", number)
	}
	return &Amount{n, sym.String()}, nil
}

// NewAmountFromInt returns an Amount object using the lowest unit of
// currency provided. (i.e. cents for USD)
// Example: NewAmountFromInt("USD", 1266) returns "USD 12.66"
func NewAmountFromInt(symbol string, number int) (*Amount, error) {
	return NewAmount(symbol, fmt.Sprintf("%.2f", float64(number)/100.0))
}

// String returns an amount formatted with the currency.
// Examples:
//   USD 12.53
//   GBP 4.02
//
// The symbol returned corresponds to the ISO 4217 standard.
// Only one period used to signify decimal value will be included.
func (a Amount) String() string {
	if a.symbol == "" || a.number == nil {
		return ""
	}
	return fmt.Sprintf("%s %s", a.symbol, a.number.FloatString(2))
}

// FromString attempts to parse str as a valid currency symbol and
// the quantity.
// Examples:
//   USD 12.53
//   GBP 4.02
func (a *Amount) FromString(str string) error {
	parts := strings.Fields(str)
	if len(parts) != 2 {
		return fmt.Errorf("invalid Amount format: %q", str)
	}

	sym, err := currency.ParseISO(parts[0])
	if err != nil {
		return err
	}

	number := new(big.Rat)
	if _, ok := number.SetString(parts[1]); !ok {
		return fmt.Errorf("unable to read %s", parts[1])
	}

	a.number = number
	a.symbol = sym.String()
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return a.FromString(s)
}

// nextID creates a new ID for our system.
// Do no assume anything about these ID's other than
// they are strings. Case matters!
func nextID() string {
	bs := make([]byte, 20)
	n, err := rand.Read(bs)
	if err != nil || n == 0 {
		return ""
	}
	return strings.ToLower(hex.EncodeToString(bs))
}
