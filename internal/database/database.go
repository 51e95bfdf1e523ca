// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package database

import (
	"database/sql"
	"errors"

	"github.com/moov-io/atm/internal/config"

	"github.com/go-kit/kit/log"
)

type db interface {
	Connect() (*sql.DB, error)
}

// New establishes a database connection from our config. SQLite is the
// default when nothing else is configured.
func New(logger log.Logger, cfg *config.Database) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("missing database config")
	}
	if cfg.MySQL != nil {
		return mysqlConnection(logger, cfg.MySQL.User, cfg.MySQL.Password, cfg.MySQL.Address, cfg.MySQL.Database).Connect()
	}
	return sqliteConnection(logger, getSqlitePath(cfg)).Connect()
}

// UniqueViolation returns true when the provided error matches a database error
// for duplicate entries (violating a unique table constraint).
func UniqueViolation(err error) bool {
	return MySQLUniqueViolation(err) || SqliteUniqueViolation(err)
}
