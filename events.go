// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	moovhttp "github.com/moov-io/base/http"
)

type EventID string

// Event is one recorded operation outcome for an account.
type Event struct {
	ID      EventID   `json:"id"`
	Topic   string    `json:"topic"`
	Message string    `json:"message"`
	Type    EventType `json:"type"`
}

type EventType string

const (
	AuthenticationEvent EventType = "Authentication"
	BalanceEvent        EventType = "Balance"
	WithdrawalEvent     EventType = "Withdrawal"
	DepositEvent        EventType = "Deposit"
	TransferEvent       EventType = "Transfer"
)

func addEventRoutes(logger log.Logger, r *mux.Router, eventRepo eventRepository) {
	r.Methods("GET").Path("/accounts/{cardNumber}/events").HandlerFunc(getAccountEvents(logger, eventRepo))
	r.Methods("GET").Path("/accounts/{cardNumber}/events/{eventID}").HandlerFunc(getEventHandler(logger, eventRepo))
}

func getAccountEvents(logger log.Logger, eventRepo eventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "getAccountEvents")
		if err != nil {
			return
		}

		cardNumber := getCardNumber(r)
		events, err := eventRepo.getAccountEvents(cardNumber)
		if err != nil {
			moovhttp.Problem(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(events); err != nil {
			internalError(logger, w, err)
			return
		}
	}
}

func getEventHandler(logger log.Logger, eventRepo eventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "getEvent")
		if err != nil {
			return
		}

		eventID, cardNumber := getEventID(r), getCardNumber(r)
		if eventID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// grab event
		event, err := eventRepo.getEvent(eventID, cardNumber)
		if err != nil {
			moovhttp.Problem(w, err)
			return
		}
		if event == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(event); err != nil {
			internalError(logger, w, err)
			return
		}
	}
}

// getEventID extracts the EventID from the incoming request.
func getEventID(r *http.Request) EventID {
	v := mux.Vars(r)
	id, ok := v["eventID"]
	if !ok {
		return EventID("")
	}
	return EventID(id)
}

type eventRepository interface {
	getEvent(eventID EventID, cardNumber string) (*Event, error)
	getAccountEvents(cardNumber string) ([]*Event, error)

	writeEvent(cardNumber string, event *Event) error
}

type sqlEventRepo struct {
	db  *sql.DB
	log log.Logger
}

func (r *sqlEventRepo) close() error {
	return r.db.Close()
}

func (r *sqlEventRepo) writeEvent(cardNumber string, event *Event) error {
	query := `insert into events (event_id, card_number, topic, message, type, created_at) values (?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, cardNumber, event.Topic, event.Message, event.Type, time.Now())
	if err != nil {
		return err
	}
	return nil
}

func (r *sqlEventRepo) getEvent(eventID EventID, cardNumber string) (*Event, error) {
	query := `select event_id, topic, message, type from events
where event_id = ? and card_number = ?
limit 1`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	row := stmt.QueryRow(eventID, cardNumber)

	event := &Event{}
	if err := row.Scan(&event.ID, &event.Topic, &event.Message, &event.Type); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // event not found
		}
		return nil, err
	}
	if event.ID == "" {
		return nil, nil // event not found
	}
	return event, nil
}

func (r *sqlEventRepo) getAccountEvents(cardNumber string) ([]*Event, error) {
	query := `select event_id from events where card_number = ?`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(cardNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var eventIDs []string
	for rows.Next() {
		var row string
		if err := rows.Scan(&row); err != nil {
			r.log.Log("events", fmt.Sprintf("problem reading event row: %v", err))
			continue
		}
		if row != "" {
			eventIDs = append(eventIDs, row)
		}
	}
	var events []*Event
	for i := range eventIDs {
		event, err := r.getEvent(EventID(eventIDs[i]), cardNumber)
		if err == nil && event != nil {
			events = append(events, event)
		}
	}
	return events, rows.Err()
}
