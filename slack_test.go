// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moov-io/atm/internal/config"
)

func TestSlack__config(t *testing.T) {
	if _, err := NewSlack(nil); err == nil {
		t.Error("expected error")
	}
	if _, err := NewSlack(&config.Slack{}); err == nil {
		t.Error("expected error")
	}
}

func TestSlack(t *testing.T) {
	var received []slackWebhook
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var wh slackWebhook
		if err := json.NewDecoder(r.Body).Decode(&wh); err != nil {
			t.Fatal(err)
		}
		received = append(received, wh)
	}))
	defer server.Close()

	slack, err := NewSlack(&config.Slack{WebhookURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	n := &Notification{
		ATM:     "ATM001",
		Subject: "Low cash",
		Body:    "USD 120.00 left",
	}
	if err := slack.Info(n); err != nil {
		t.Fatal(err)
	}
	if err := slack.Critical(n); err != nil {
		t.Fatal(err)
	}

	if len(received) != 2 {
		t.Fatalf("got %d webhooks", len(received))
	}
	if !strings.Contains(received[0].Text, "Low cash (ATM001)") {
		t.Errorf("got %q", received[0].Text)
	}
	if !strings.HasPrefix(received[1].Text, ":rotating_light:") {
		t.Errorf("got %q", received[1].Text)
	}
}

func TestSlack__unexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	slack, err := NewSlack(&config.Slack{WebhookURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if err := slack.Info(&Notification{}); err == nil {
		t.Error("expected error")
	}
}
