/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database provides the durable on-device store of the field client
package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/kropland/kropland/pkg/cli/utils"
	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB contains information about the current database connection. When tx is
// set, every statement runs inside that transaction.
type DB struct {
	Conn     *sql.DB
	Filepath string
	tx       *sql.Tx
}

// Open opens the SQLite database at the given path, creating the parent
// directory if it does not exist. The path may also be a `file:` URI such as
// the shared in-memory databases used in tests.
func Open(dbPath string) (*DB, error) {
	if !strings.HasPrefix(dbPath, "file:") {
		if err := utils.EnsureDir(filepath.Dir(dbPath)); err != nil {
			return nil, errors.Wrap(err, "preparing the database directory")
		}
	}

	conn, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrapf(err, "connecting to %s", dbPath)
	}
	// SQLite has a single writer, and a shared in-memory database lives only
	// as long as one of its connections.
	conn.SetMaxOpenConns(1)

	return &DB{Conn: conn, Filepath: dbPath}, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}

	return dbPath + sep + "_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000"
}

// Begin starts a transaction and returns a DB bound to it
func (d *DB) Begin(ctx context.Context) (*DB, error) {
	if d.tx != nil {
		return nil, errors.New("transaction already in progress")
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning a transaction")
	}

	return &DB{Conn: d.Conn, Filepath: d.Filepath, tx: tx}, nil
}

// Commit commits the transaction
func (d *DB) Commit() error {
	if d.tx == nil {
		return errors.New("no transaction in progress")
	}

	return d.tx.Commit()
}

// Rollback aborts the transaction
func (d *DB) Rollback() error {
	if d.tx == nil {
		return errors.New("no transaction in progress")
	}

	return d.tx.Rollback()
}

// Exec executes a statement
func (d *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if d.tx != nil {
		return d.tx.ExecContext(ctx, query, args...)
	}

	return d.Conn.ExecContext(ctx, query, args...)
}

// Query runs a query that returns rows
func (d *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if d.tx != nil {
		return d.tx.QueryContext(ctx, query, args...)
	}

	return d.Conn.QueryContext(ctx, query, args...)
}

// QueryRow runs a query that returns at most one row
func (d *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if d.tx != nil {
		return d.tx.QueryRowContext(ctx, query, args...)
	}

	return d.Conn.QueryRowContext(ctx, query, args...)
}

// Close closes the underlying connection pool
func (d *DB) Close() error {
	if d.Conn == nil {
		return nil
	}

	return d.Conn.Close()
}
