// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/go-kit/kit/log"

	"github.com/moov-io/atm/internal/config"
)

// Notification is an out-of-band message about a machine.
type Notification struct {
	// ATM identifies the machine the message is about.
	ATM string

	// To is the destination address (email). Senders without a
	// destination concept ignore it.
	To string

	Subject string
	Body    string
}

// Sender delivers Notifications to card holders or operators.
type Sender interface {
	Info(n *Notification) error
	Critical(n *Notification) error
}

// MultiSender is a Sender which will attempt to send each Notification to
// every included Sender and returns the first error encountered.
type MultiSender struct {
	logger  log.Logger
	senders []Sender
}

func NewMultiSender(logger log.Logger, cfg *config.Notifications) (*MultiSender, error) {
	ms := &MultiSender{logger: logger}
	if cfg == nil {
		return ms, nil
	}
	if cfg.Email != nil {
		sender, err := NewEmail(cfg.Email)
		if err != nil {
			return nil, err
		}
		ms.senders = append(ms.senders, sender)
	}
	if cfg.PagerDuty != nil {
		sender, err := NewPagerDuty(cfg.PagerDuty)
		if err != nil {
			return nil, err
		}
		ms.senders = append(ms.senders, sender)
	}
	if cfg.Slack != nil {
		sender, err := NewSlack(cfg.Slack)
		if err != nil {
			return nil, err
		}
		ms.senders = append(ms.senders, sender)
	}
	return ms, nil
}

func (ms *MultiSender) Info(n *Notification) error {
	var firstError error
	for i := range ms.senders {
		if err := ms.senders[i].Info(n); err != nil {
			ms.logger.Log("notify", fmt.Sprintf("multi-sender Info %T: %v", ms.senders[i], err))

			if firstError == nil {
				firstError = err
			}
		}
	}
	return firstError
}

func (ms *MultiSender) Critical(n *Notification) error {
	var firstError error
	for i := range ms.senders {
		if err := ms.senders[i].Critical(n); err != nil {
			ms.logger.Log("notify", fmt.Sprintf("multi-sender Critical %T: %v", ms.senders[i], err))

			if firstError == nil {
				firstError = err
			}
		}
	}
	return firstError
}

// MockSender records delivered Notifications for tests.
type MockSender struct {
	infoCalled     bool
	criticalCalled bool
	Err            error
	notification   *Notification
}

func (s *MockSender) Info(n *Notification) error {
	s.infoCalled = true
	s.notification = n
	return s.Err
}

func (s *MockSender) Critical(n *Notification) error {
	s.criticalCalled = true
	s.notification = n
	return s.Err
}

func (s *MockSender) InfoWasCalled() bool {
	return s.infoCalled
}

func (s *MockSender) CriticalWasCalled() bool {
	return s.criticalCalled
}

func (s *MockSender) CapturedNotification() *Notification {
	return s.notification
}
