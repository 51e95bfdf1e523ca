// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	"github.com/moov-io/atm/internal/idempotent"
)

var (
	errAccountNotFound = errors.New("account not found")
	errATMNotFound     = errors.New("ATM not found")
)

// addATMRoutes registers the operation endpoints front-ends call. Every
// route resolves accounts through the Bank directory and runs the operation
// on the addressed machine, mirroring how the console front-end drives the
// same contracts interactively.
func addATMRoutes(logger log.Logger, r *mux.Router, bank *Bank, eventRepo eventRepository, idem idempotent.Recorder) {
	r.Methods("POST").Path("/atms/{atmID}/authenticate").HandlerFunc(authenticateAccount(logger, bank, eventRepo))
	r.Methods("GET").Path("/atms/{atmID}/accounts/{cardNumber}/balance").HandlerFunc(checkBalance(logger, bank, eventRepo))
	r.Methods("POST").Path("/atms/{atmID}/accounts/{cardNumber}/withdrawals").HandlerFunc(withdraw(logger, bank, eventRepo, idem))
	r.Methods("POST").Path("/atms/{atmID}/accounts/{cardNumber}/deposits").HandlerFunc(deposit(logger, bank, eventRepo, idem))
	r.Methods("POST").Path("/atms/{atmID}/accounts/{cardNumber}/transfers").HandlerFunc(transfer(logger, bank, eventRepo, idem))
}

// getATM resolves the atmID path variable against the Bank.
func getATM(r *http.Request, bank *Bank) (*AutomatedTellerMachine, bool) {
	return bank.ATMByID(mux.Vars(r)["atmID"])
}

func notFound(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	})
}

// recordEvent writes an audit row for an operation outcome. Auditing is
// best-effort: a write problem is logged but the completed operation stands.
func recordEvent(logger log.Logger, repo eventRepository, cardNumber string, eventType EventType, topic, message string) {
	err := repo.writeEvent(cardNumber, &Event{
		ID:      EventID(nextID()),
		Topic:   topic,
		Message: message,
		Type:    eventType,
	})
	if err != nil {
		logger.Log("events", fmt.Sprintf("problem writing %s event: %v", topic, err))
	}
}

type authenticateRequest struct {
	CardNumber string `json:"cardNumber"`
	PIN        string `json:"pin"`
}

func (r authenticateRequest) missingFields() error {
	if r.CardNumber == "" || r.PIN == "" {
		return errMissingRequiredJson
	}
	return nil
}

func authenticateAccount(logger log.Logger, bank *Bank, eventRepo eventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "authenticateAccount")
		if err != nil {
			return
		}

		atm, ok := getATM(r, bank)
		if !ok {
			notFound(w, errATMNotFound)
			return
		}

		bs, err := read(r.Body)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req authenticateRequest
		if err := json.Unmarshal(bs, &req); err != nil {
			encodeError(w, err)
			return
		}
		if err := req.missingFields(); err != nil {
			encodeError(w, err)
			return
		}

		account, exists := bank.Lookup(req.CardNumber)
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		if !atm.Authenticate(account, req.PIN) {
			recordEvent(logger, eventRepo, req.CardNumber, AuthenticationEvent, "authentications", "Authentication failed.")

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Authentication failed.",
			})
			return
		}
		recordEvent(logger, eventRepo, req.CardNumber, AuthenticationEvent, "authentications", "Authentication successful.")

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": true,
			"fullName":      account.FullName,
		})
	}
}

func checkBalance(logger log.Logger, bank *Bank, eventRepo eventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "checkBalance")
		if err != nil {
			return
		}

		atm, ok := getATM(r, bank)
		if !ok {
			notFound(w, errATMNotFound)
			return
		}
		account, exists := bank.Lookup(getCardNumber(r))
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		balance := atm.CheckBalance(account)
		recordEvent(logger, eventRepo, account.CardNumber, BalanceEvent, "balances",
			fmt.Sprintf("Balance checked. Current balance: %s", balance.String()))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"balance": balance.String(),
		})
	}
}

type amountRequest struct {
	Amount Amount `json:"amount"`
}

func (r amountRequest) missingFields() error {
	if r.Amount.String() == "" {
		return errMissingRequiredJson
	}
	return nil
}

func withdraw(logger log.Logger, bank *Bank, eventRepo eventRepository, idem idempotent.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "withdraw")
		if err != nil {
			return
		}

		if _, seen := idempotent.FromRequest(r, idem); seen {
			idempotent.SeenBefore(w)
			return
		}

		atm, ok := getATM(r, bank)
		if !ok {
			notFound(w, errATMNotFound)
			return
		}
		account, exists := bank.Lookup(getCardNumber(r))
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		req, err := readAmountRequest(r)
		if err != nil {
			encodeError(w, err)
			return
		}

		if !atm.Withdraw(account, req.Amount) {
			recordEvent(logger, eventRepo, account.CardNumber, WithdrawalEvent, "withdrawals", "Withdrawal failed: Insufficient funds.")
			encodeError(w, errors.New("Withdrawal failed: Insufficient funds."))
			return
		}
		recordEvent(logger, eventRepo, account.CardNumber, WithdrawalEvent, "withdrawals",
			fmt.Sprintf("Withdrawal successful. Amount: %s", req.Amount.String()))

		balance := account.Balance()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"amount":  req.Amount.String(),
			"balance": balance.String(),
		})
	}
}

func deposit(logger log.Logger, bank *Bank, eventRepo eventRepository, idem idempotent.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "deposit")
		if err != nil {
			return
		}

		if _, seen := idempotent.FromRequest(r, idem); seen {
			idempotent.SeenBefore(w)
			return
		}

		atm, ok := getATM(r, bank)
		if !ok {
			notFound(w, errATMNotFound)
			return
		}
		account, exists := bank.Lookup(getCardNumber(r))
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		req, err := readAmountRequest(r)
		if err != nil {
			encodeError(w, err)
			return
		}

		if !atm.Deposit(account, req.Amount) {
			recordEvent(logger, eventRepo, account.CardNumber, DepositEvent, "deposits", "Deposit failed: Invalid amount.")
			encodeError(w, errors.New("Deposit failed: Invalid amount."))
			return
		}
		recordEvent(logger, eventRepo, account.CardNumber, DepositEvent, "deposits",
			fmt.Sprintf("Deposit successful. Amount: %s", req.Amount.String()))

		balance := account.Balance()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"amount":  req.Amount.String(),
			"balance": balance.String(),
		})
	}
}

type transferRequest struct {
	ToCardNumber string `json:"toCardNumber"`
	Amount       Amount `json:"amount"`
}

func (r transferRequest) missingFields() error {
	if r.ToCardNumber == "" || r.Amount.String() == "" {
		return errMissingRequiredJson
	}
	return nil
}

func transfer(logger log.Logger, bank *Bank, eventRepo eventRepository, idem idempotent.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w, err := wrapResponseWriter(logger, w, r, "transfer")
		if err != nil {
			return
		}

		if _, seen := idempotent.FromRequest(r, idem); seen {
			idempotent.SeenBefore(w)
			return
		}

		atm, ok := getATM(r, bank)
		if !ok {
			notFound(w, errATMNotFound)
			return
		}
		sender, exists := bank.Lookup(getCardNumber(r))
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		bs, err := read(r.Body)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req transferRequest
		if err := json.Unmarshal(bs, &req); err != nil {
			encodeError(w, err)
			return
		}
		if err := req.missingFields(); err != nil {
			encodeError(w, err)
			return
		}

		receiver, exists := bank.Lookup(req.ToCardNumber)
		if !exists {
			notFound(w, errAccountNotFound)
			return
		}

		if !atm.Transfer(sender, receiver, req.Amount) {
			recordEvent(logger, eventRepo, sender.CardNumber, TransferEvent, "transfers", "Transfer failed: Insufficient funds.")
			encodeError(w, errors.New("Transfer failed: Insufficient funds."))
			return
		}
		message := fmt.Sprintf("Transfer successful. Amount: %s", req.Amount.String())
		recordEvent(logger, eventRepo, sender.CardNumber, TransferEvent, "transfers", message)
		recordEvent(logger, eventRepo, receiver.CardNumber, TransferEvent, "transfers", message)

		balance := sender.Balance()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"amount":  req.Amount.String(),
			"balance": balance.String(),
		})
	}
}

func readAmountRequest(r *http.Request) (*amountRequest, error) {
	bs, err := read(r.Body)
	if err != nil {
		return nil, err
	}
	var req amountRequest
	if err := json.Unmarshal(bs, &req); err != nil {
		return nil, err
	}
	if err := req.missingFields(); err != nil {
		return nil, err
	}
	return &req, nil
}
