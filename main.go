// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moov-io/base/admin"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"

	"github.com/moov-io/atm/internal/config"
	"github.com/moov-io/atm/internal/database"
	"github.com/moov-io/atm/internal/idempotent/lru"
)

var (
	flagConfigFile = flag.String("config", "", "Filepath for config file to load")
)

func main() {
	flag.Parse()

	cfg, err := config.FromFile(*flagConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger

	logger.Log("startup", "Starting atm server")

	// migrate database
	db, err := database.New(logger, &cfg.Database)
	if err != nil {
		panic(fmt.Sprintf("error creating database: %v", err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Log("exit", err)
		}
	}()

	// Listen for application termination.
	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	// Spin up admin HTTP server and optionally override the bind address
	adminAddr := cfg.Admin.BindAddress
	if v := os.Getenv("HTTP_ADMIN_BIND_ADDRESS"); v != "" {
		adminAddr = v
	}
	adminServer := admin.NewServer(adminAddr)
	go func() {
		logger.Log("admin", fmt.Sprintf("listening on %s", adminServer.BindAddr()))
		if err := adminServer.Listen(); err != nil {
			err = fmt.Errorf("problem starting admin http: %v", err)
			logger.Log("admin", err)
			errs <- err
		}
	}()
	defer adminServer.Shutdown()
	adminServer.AddLivenessCheck("database", db.Ping)

	// Setup repositories
	eventRepo := &sqlEventRepo{db, logger}
	defer eventRepo.close()

	// Out-of-band notifications (email, pagerduty, slack)
	notifier, err := NewMultiSender(logger, cfg.Notifications)
	if err != nil {
		panic(fmt.Sprintf("error setting up notifications: %v", err))
	}

	// Seed the bank from our config
	bank, err := setupBank(logger, cfg, notifier)
	if err != nil {
		panic(fmt.Sprintf("error setting up bank: %v", err))
	}

	// Watch every machine's cash float
	watcher, err := newCashWatcher(logger, bank, notifier, cfg.CashWatch)
	if err != nil {
		panic(fmt.Sprintf("error setting up cash watcher: %v", err))
	}
	watcher.start()
	defer watcher.stop()

	// Create HTTP handler
	handler := mux.NewRouter()
	addATMRoutes(logger, handler, bank, eventRepo, lru.New())
	addEventRoutes(logger, handler, eventRepo)
	addPingRoute(logger, handler)

	// Check to see if our bind address has been overridden
	httpAddr := cfg.Http.BindAddress
	if v := os.Getenv("HTTP_BIND_ADDRESS"); v != "" {
		httpAddr = v
	}
	// Create main HTTP server
	serve := &http.Server{
		Addr:    httpAddr,
		Handler: handler,
		TLSConfig: &tls.Config{
			InsecureSkipVerify:       false,
			PreferServerCipherSuites: true,
			MinVersion:               tls.VersionTLS12,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownServer := func() {
		if err := serve.Shutdown(context.TODO()); err != nil {
			logger.Log("shutdown", err)
		}
	}
	defer shutdownServer()

	// Start main HTTP server
	go func() {
		if certFile, keyFile := os.Getenv("HTTPS_CERT_FILE"), os.Getenv("HTTPS_KEY_FILE"); certFile != "" && keyFile != "" {
			logger.Log("startup", fmt.Sprintf("binding to %s for secure HTTP server", httpAddr))
			if err := serve.ListenAndServeTLS(certFile, keyFile); err != nil {
				logger.Log("exit", err)
			}
		} else {
			logger.Log("startup", fmt.Sprintf("binding to %s for HTTP server", httpAddr))
			if err := serve.ListenAndServe(); err != nil {
				logger.Log("exit", err)
			}
		}
	}()

	if err := <-errs; err != nil {
		logger.Log("exit", err)
	}
	os.Exit(0)
}

// setupBank builds the Bank directory from our config: every machine is
// loaded with its cash float and every account registered. Each machine gets
// a listener that writes operation outcomes to the log.
func setupBank(logger log.Logger, cfg *config.Config, notifier Sender) (*Bank, error) {
	bank := NewBank(cfg.Bank.Name)

	for i := range cfg.Bank.ATMs {
		c := cfg.Bank.ATMs[i]
		totalCash, err := parseAmount(c.TotalCash)
		if err != nil {
			return nil, fmt.Errorf("atm %s: %v", c.ID, err)
		}
		atm := NewATM(logger, c.ID, c.Address, totalCash, notifier)
		atm.Subscribe(func(msg string) {
			logger.Log("atm", msg, "atmID", atm.ID)
		})
		bank.AddATM(atm)
	}

	for i := range cfg.Bank.Accounts {
		c := cfg.Bank.Accounts[i]
		balance, err := parseAmount(c.Balance)
		if err != nil {
			return nil, fmt.Errorf("account %s: %v", c.CardNumber, err)
		}
		if err := bank.AddAccount(NewAccount(c.CardNumber, c.PIN, c.FullName, balance)); err != nil {
			return nil, err
		}
	}
	return bank, nil
}

func parseAmount(str string) (*Amount, error) {
	var amount Amount
	if err := amount.FromString(str); err != nil {
		return nil, err
	}
	return &amount, nil
}
