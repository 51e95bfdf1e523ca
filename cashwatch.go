// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/robfig/cron/v3"

	"github.com/moov-io/atm/internal/config"
)

// cashWatcher periodically sweeps every registered machine and pages
// operators when a cash float drops under the configured floor. It only
// reads the floats, refills happen out of band.
type cashWatcher struct {
	logger   log.Logger
	bank     *Bank
	notifier Sender

	minimum Amount

	cron *cron.Cron
}

// newCashWatcher returns nil when no cash floor is configured.
func newCashWatcher(logger log.Logger, bank *Bank, notifier Sender, cfg config.CashWatch) (*cashWatcher, error) {
	if cfg.Minimum == "" || notifier == nil {
		return nil, nil
	}
	var minimum Amount
	if err := minimum.FromString(cfg.Minimum); err != nil {
		return nil, fmt.Errorf("cashwatch: invalid minimum %q: %v", cfg.Minimum, err)
	}

	watcher := &cashWatcher{
		logger:   logger,
		bank:     bank,
		notifier: notifier,
		minimum:  minimum,
		cron:     cron.New(),
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 10m"
	}
	if _, err := watcher.cron.AddFunc(schedule, watcher.sweep); err != nil {
		return nil, fmt.Errorf("cashwatch: invalid schedule %q: %v", schedule, err)
	}
	return watcher, nil
}

func (w *cashWatcher) start() {
	if w == nil {
		return
	}
	w.cron.Start()
}

func (w *cashWatcher) stop() {
	if w == nil {
		return
	}
	w.cron.Stop()
}

func (w *cashWatcher) sweep() {
	atms := w.bank.ATMs()
	for i := range atms {
		cash := atms[i].TotalCash()
		if !w.minimum.GreaterThan(cash) {
			continue
		}
		w.logger.Log("cashwatch", fmt.Sprintf("ATM %s cash is low: %s", atms[i].ID, cash.String()))

		err := w.notifier.Critical(&Notification{
			ATM:     atms[i].ID,
			Subject: "Low cash",
			Body:    fmt.Sprintf("ATM %s (%s) has %s left, below the %s floor", atms[i].ID, atms[i].Address, cash.String(), w.minimum.String()),
		})
		if err != nil {
			w.logger.Log("cashwatch", fmt.Sprintf("problem notifying about ATM %s: %v", atms[i].ID, err))
		}
	}
}
