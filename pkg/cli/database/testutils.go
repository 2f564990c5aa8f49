/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of Dnote.
 *
 * Dnote is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Dnote is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Dnote.  If not, see <https://www.gnu.org/licenses/>.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/pkg/errors"
)

// MustScan scans the given row and fails a test in case of any errors
func MustScan(t *testing.T, message string, row *sql.Row, args ...interface{}) {
	err := row.Scan(args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "scanning a row"), message))
	}
}

// MustExec executes the given SQL query and fails a test if an error occurs
func MustExec(t *testing.T, message string, db *DB, query string, args ...interface{}) sql.Result {
	result, err := db.Exec(context.Background(), query, args...)
	if err != nil {
		t.Fatal(errors.Wrap(errors.Wrap(err, "executing sql"), message))
	}

	return result
}

// OpenTestMemoryDB opens an empty in-memory database without applying migrations
func OpenTestMemoryDB(t *testing.T) *DB {
	uuid := mustGenerateTestUUID(t)
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)

	db, err := Open(dbName)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening in-memory database"))
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// InitTestMemoryDB returns an initialized store backed by an in-memory database
func InitTestMemoryDB(t *testing.T) *Store {
	s := NewStoreWithDB(OpenTestMemoryDB(t))
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "initializing the test store"))
	}

	return s
}

// InitTestFileDB returns an initialized store backed by a database file in a
// temporary directory, along with the file path
func InitTestFileDB(t *testing.T) (*Store, string) {
	uuid := mustGenerateTestUUID(t)
	dbPath := filepath.Join(t.TempDir(), fmt.Sprintf("kropland-%s.db", uuid))

	s := NewStore(dbPath)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "initializing the test store"))
	}

	t.Cleanup(func() { s.Close() })
	return s, dbPath
}

// MustPut writes the record and fails the test on error
func MustPut(t *testing.T, s *Store, coll string, rec Record) {
	if err := s.Put(context.Background(), coll, rec); err != nil {
		t.Fatal(errors.Wrapf(err, "putting %s into %s", rec.ID(), coll))
	}
}

// MustEnqueue enqueues a mutation and fails the test on error
func MustEnqueue(t *testing.T, s *Store, action Action, coll string, payload Record) {
	if err := s.EnqueueMutation(context.Background(), action, coll, payload); err != nil {
		t.Fatal(errors.Wrap(err, "enqueueing a mutation"))
	}
}

// MustListQueue lists the queue and fails the test on error
func MustListQueue(t *testing.T, s *Store) []QueueEntry {
	entries, err := s.ListQueue(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "listing the queue"))
	}

	return entries
}

// mustGenerateTestUUID generates a UUID for test databases and fails the test on error
func mustGenerateTestUUID(t *testing.T) string {
	uuid, err := utils.GenerateUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "generating UUID for test database"))
	}
	return uuid
}
