// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"testing"
)

func TestPagerDuty__Ping(t *testing.T) {
	var pd *PagerDuty
	if err := pd.Ping(); err == nil {
		t.Error("expected error")
	}

	pd = &PagerDuty{}
	if err := pd.Ping(); err == nil {
		t.Error("expected error")
	}
}

func TestPagerDuty__Info(t *testing.T) {
	// Info never pages anyone
	pd := &PagerDuty{}
	if err := pd.Info(&Notification{ATM: "ATM001"}); err != nil {
		t.Fatal(err)
	}
}
