// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"io/ioutil"
	"os"
	"strings"
	"testing"
)

func TestConfig__Empty(t *testing.T) {
	cfg := Empty()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Http.BindAddress != ":8080" {
		t.Errorf("got %q", cfg.Http.BindAddress)
	}
	if cfg.Admin.BindAddress != ":9090" {
		t.Errorf("got %q", cfg.Admin.BindAddress)
	}
	if cfg.Database.SQLite == nil || cfg.Database.SQLite.Path != "atm.db" {
		t.Errorf("got %#v", cfg.Database.SQLite)
	}
	if cfg.CashWatch.Schedule != "@every 10m" {
		t.Errorf("got %q", cfg.CashWatch.Schedule)
	}
}

func TestConfig__Read(t *testing.T) {
	cfg, err := Read([]byte(`
logging:
  format: json
bank:
  name: "My Bank"
  atms:
    - id: "ATM001"
      address: "Main Street"
      totalCash: "USD 10000.00"
  accounts:
    - cardNumber: "1234567890123456"
      pin: "1234"
      fullName: "John Doe"
      balance: "USD 5000.00"
notifications:
  slack:
    webhookURL: "https://hooks.slack.com/services/XXX"
cashWatch:
  schedule: "@every 1m"
  minimum: "USD 1000.00"
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Bank.Name != "My Bank" {
		t.Errorf("got %q", cfg.Bank.Name)
	}
	if len(cfg.Bank.ATMs) != 1 || cfg.Bank.ATMs[0].TotalCash != "USD 10000.00" {
		t.Errorf("got %#v", cfg.Bank.ATMs)
	}
	if len(cfg.Bank.Accounts) != 1 || cfg.Bank.Accounts[0].FullName != "John Doe" {
		t.Errorf("got %#v", cfg.Bank.Accounts)
	}
	if cfg.Notifications == nil || cfg.Notifications.Slack == nil {
		t.Fatal("expected slack config")
	}
	if cfg.CashWatch.Minimum != "USD 1000.00" {
		t.Errorf("got %q", cfg.CashWatch.Minimum)
	}
	if cfg.Logger == nil {
		t.Error("expected a logger")
	}
}

func TestConfig__ReadInvalid(t *testing.T) {
	// duplicate card numbers
	if _, err := Read([]byte(`
bank:
  name: "My Bank"
  accounts:
    - cardNumber: "1111"
      pin: "1234"
      balance: "USD 1.00"
    - cardNumber: "1111"
      pin: "5678"
      balance: "USD 2.00"
`)); err == nil {
		t.Error("expected error")
	} else if !strings.Contains(err.Error(), "duplicate card number") {
		t.Errorf("got %v", err)
	}

	// atm without cash
	if _, err := Read([]byte(`
bank:
  name: "My Bank"
  atms:
    - id: "ATM001"
`)); err == nil {
		t.Error("expected error")
	}

	// incomplete email setup
	if _, err := Read([]byte(`
bank:
  name: "My Bank"
notifications:
  email:
    from: "noreply@example.com"
`)); err == nil {
		t.Error("expected error")
	}

	// incomplete pagerduty setup
	if _, err := Read([]byte(`
bank:
  name: "My Bank"
notifications:
  pagerduty:
    apiKey: "key"
`)); err == nil {
		t.Error("expected error")
	}

	if _, err := Read([]byte(`also: [`)); err == nil {
		t.Error("expected error")
	}
}

func TestConfig__FromFile(t *testing.T) {
	f, err := ioutil.TempFile("", "atm-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())

	if _, err := f.WriteString(`bank: {name: "File Bank"}`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := FromFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bank.Name != "File Bank" {
		t.Errorf("got %q", cfg.Bank.Name)
	}

	// no path falls back to defaults
	cfg, err = FromFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Bank.Name != "Moov Bank" {
		t.Errorf("got %q", cfg.Bank.Name)
	}

	if _, err := FromFile("/tmp/does/not/exist.yaml"); err == nil {
		t.Error("expected error")
	}
}

func TestConfig__EmailTemplate(t *testing.T) {
	var email *Email
	if tmpl := email.Tmpl(); tmpl == nil {
		t.Error("expected default template")
	}

	var buf bytes.Buffer
	data := struct {
		CompanyName, ATM, Body string
	}{"Moov", "ATM001", "Withdrawal successful. Amount: USD 20.00"}
	if err := DefaultEmailTemplate.Execute(&buf, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Moov ATM ATM001: Withdrawal successful. Amount: USD 20.00") {
		t.Errorf("got %q", buf.String())
	}

	email = &Email{Template: "{{ .Body }}"}
	buf.Reset()
	if err := email.Tmpl().Execute(&buf, data); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "Withdrawal successful. Amount: USD 20.00" {
		t.Errorf("got %q", buf.String())
	}
}
