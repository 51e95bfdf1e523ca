// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	"github.com/moov-io/atm/internal/database"
)

func TestEvents__writeAndGet(t *testing.T) {
	db := database.CreateTestSqliteDB(t)
	defer db.Close()

	repo := &sqlEventRepo{db.DB, log.NewNopLogger()}

	cardNumber := "1234567890123456"
	event := &Event{
		ID:      EventID(nextID()),
		Topic:   "withdrawals",
		Message: "Withdrawal successful. Amount: USD 20.00",
		Type:    WithdrawalEvent,
	}
	if err := repo.writeEvent(cardNumber, event); err != nil {
		t.Fatal(err)
	}

	found, err := repo.getEvent(event.ID, cardNumber)
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != event.ID {
		t.Errorf("got %#v", found)
	}
	if found.Message != event.Message || found.Type != WithdrawalEvent {
		t.Errorf("got %#v", found)
	}

	// other cards can't read the event
	if found, _ := repo.getEvent(event.ID, "0000111122223333"); found != nil {
		t.Errorf("got %#v", found)
	}

	// unknown events are a miss, not an error
	if found, err := repo.getEvent(EventID("missing"), cardNumber); err != nil || found != nil {
		t.Errorf("found=%#v err=%v", found, err)
	}
}

func TestEvents__getAccountEvents(t *testing.T) {
	db := database.CreateTestSqliteDB(t)
	defer db.Close()

	repo := &sqlEventRepo{db.DB, log.NewNopLogger()}

	cardNumber := "1234567890123456"
	for i := 0; i < 3; i++ {
		err := repo.writeEvent(cardNumber, &Event{
			ID:      EventID(nextID()),
			Topic:   "deposits",
			Message: fmt.Sprintf("Deposit successful. Amount: USD %d.00", 100*(i+1)),
			Type:    DepositEvent,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	events, err := repo.getAccountEvents(cardNumber)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Errorf("got %d events", len(events))
	}

	events, err = repo.getAccountEvents("0000111122223333")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events", len(events))
	}
}

func TestEvents__HTTPGet(t *testing.T) {
	db := database.CreateTestSqliteDB(t)
	defer db.Close()

	repo := &sqlEventRepo{db.DB, log.NewNopLogger()}

	cardNumber := "1234567890123456"
	event := &Event{
		ID:      EventID(nextID()),
		Topic:   "transfers",
		Message: "Transfer successful. Amount: USD 50.00",
		Type:    TransferEvent,
	}
	if err := repo.writeEvent(cardNumber, event); err != nil {
		t.Fatal(err)
	}

	router := mux.NewRouter()
	addEventRoutes(log.NewNopLogger(), router, repo)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", fmt.Sprintf("/accounts/%s/events", cardNumber), nil)
	router.ServeHTTP(w, r)
	w.Flush()

	if w.Code != 200 {
		t.Errorf("got %d", w.Code)
	}
	var events []*Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != event.ID {
		t.Errorf("got %#v", events)
	}

	// single event read
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", fmt.Sprintf("/accounts/%s/events/%s", cardNumber, event.ID), nil)
	router.ServeHTTP(w, r)
	w.Flush()

	if w.Code != 200 {
		t.Errorf("got %d", w.Code)
	}
	var found Event
	if err := json.Unmarshal(w.Body.Bytes(), &found); err != nil {
		t.Fatal(err)
	}
	if found.ID != event.ID {
		t.Errorf("got %#v", found)
	}

	// unknown event
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", fmt.Sprintf("/accounts/%s/events/missing", cardNumber), nil)
	router.ServeHTTP(w, r)
	w.Flush()

	if w.Code != 404 {
		t.Errorf("got %d", w.Code)
	}
}
