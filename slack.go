// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/moov-io/atm/internal/config"
)

// Slack posts Notifications to an incoming webhook.
type Slack struct {
	cfg    *config.Slack
	client *http.Client
}

func NewSlack(cfg *config.Slack) (*Slack, error) {
	if cfg == nil || cfg.WebhookURL == "" {
		return nil, fmt.Errorf("slack: missing webhook url")
	}
	return &Slack{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type slackWebhook struct {
	Text string `json:"text"`
}

func (s *Slack) Info(n *Notification) error {
	return s.post(slackMessage(n))
}

func (s *Slack) Critical(n *Notification) error {
	return s.post(":rotating_light: " + slackMessage(n))
}

func slackMessage(n *Notification) string {
	return fmt.Sprintf("%s (%s): %s", n.Subject, n.ATM, n.Body)
}

func (s *Slack) post(text string) error {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(slackWebhook{Text: text}); err != nil {
		return err
	}
	resp, err := s.client.Post(s.cfg.WebhookURL, "application/json", &body)
	if err != nil {
		return fmt.Errorf("slack: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: unexpected status %d", resp.StatusCode)
	}
	return nil
}
