// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/PagerDuty/go-pagerduty"

	"github.com/moov-io/atm/internal/config"
)

// PagerDuty pages operators over the PagerDuty Events API. Routine outcomes
// don't page anyone, only Critical notifications trigger an event.
type PagerDuty struct {
	client *pagerduty.Client
	cfg    *config.PagerDuty
}

func NewPagerDuty(cfg *config.PagerDuty) (*PagerDuty, error) {
	notifier := &PagerDuty{
		client: pagerduty.NewClient(cfg.ApiKey),
		cfg:    cfg,
	}
	if err := notifier.Ping(); err != nil {
		return nil, err
	}
	return notifier, nil
}

func (pd *PagerDuty) Ping() error {
	if pd == nil || pd.client == nil {
		return errors.New("pagerduty: nil client")
	}
	resp, err := pd.client.ListAbilities()
	if err != nil {
		return fmt.Errorf("pagerduty: %v", err)
	}
	if len(resp.Abilities) <= 0 {
		return fmt.Errorf("pagerduty: missing abilities")
	}
	return nil
}

func (pd *PagerDuty) Info(n *Notification) error {
	return nil
}

func (pd *PagerDuty) Critical(n *Notification) error {
	_, err := pagerduty.ManageEvent(pagerduty.V2Event{
		RoutingKey: pd.cfg.RoutingKey,
		Action:     "trigger",
		Payload: &pagerduty.V2Payload{
			Summary:  fmt.Sprintf("%s: %s", n.Subject, n.Body),
			Source:   n.ATM,
			Severity: "critical",
		},
	})
	return err
}
