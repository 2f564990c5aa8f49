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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

var (
	// ErrStorageUnavailable is returned when the on-device database cannot be
	// opened or migrated
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUnknownCollection is returned for a collection name the store does not hold
	ErrUnknownCollection = errors.New("unknown collection")
)

// Store holds the record collections and the mutation queue. It opens the
// database lazily on the first operation and can be shared between goroutines.
type Store struct {
	Path  string
	Clock clock.Clock

	mu    sync.Mutex
	db    *DB
	ready bool
}

// NewStore returns a store backed by the database file at the given path
func NewStore(path string) *Store {
	return &Store{Path: path, Clock: clock.New()}
}

// NewStoreWithDB returns a store using an already opened database
func NewStoreWithDB(db *DB) *Store {
	return &Store{Path: db.Filepath, Clock: clock.New(), db: db}
}

// Initialize opens the database and applies pending migrations. It is safe
// to call more than once; a failed attempt is retried on the next call.
func (s *Store) Initialize(ctx context.Context) error {
	_, err := s.conn(ctx)
	return err
}

func (s *Store) conn(ctx context.Context) (*DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.db, nil
	}

	if s.db == nil {
		db, err := Open(s.Path)
		if err != nil {
			return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
		}
		s.db = db
	}

	if _, err := Migrate(ctx, s.db); err != nil {
		return nil, errors.Wrap(ErrStorageUnavailable, err.Error())
	}
	s.ready = true

	return s.db, nil
}

// DB returns the initialized database
func (s *Store) DB(ctx context.Context) (*DB, error) {
	return s.conn(ctx)
}

// Close closes the database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	s.ready = false

	return err
}

func (s *Store) now() string {
	return s.Clock.Now().UTC().Format(time.RFC3339Nano)
}

func checkCollection(coll string) error {
	if !ValidCollection(coll) {
		return errors.Wrapf(ErrUnknownCollection, "'%s'", coll)
	}

	return nil
}

// GetAll returns every record in the collection. It never fails: errors are
// logged and an empty list is returned.
func (s *Store) GetAll(ctx context.Context, coll string) []Record {
	ret, err := s.getAll(ctx, coll)
	if err != nil {
		log.Errorf("reading %s: %s\n", coll, err)
		return []Record{}
	}

	return ret
}

func (s *Store) getAll(ctx context.Context, coll string) ([]Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, fmt.Sprintf("SELECT data FROM %s ORDER BY rowid", coll))
	if err != nil {
		return nil, errors.Wrap(err, "querying records")
	}
	defer rows.Close()

	ret := []Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scanning a record")
		}

		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, errors.Wrap(err, "decoding a record")
		}
		ret = append(ret, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating records")
	}

	return ret, nil
}

// GetOne returns the record with the given id, or nil if there is none
func (s *Store) GetOne(ctx context.Context, coll, id string) (Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var data string
	err = db.QueryRow(ctx, fmt.Sprintf("SELECT data FROM %s WHERE id = ?", coll), id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding %s in %s", id, coll)
	}

	var r Record
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, errors.Wrap(err, "decoding the record")
	}

	return r, nil
}

func putRecord(ctx context.Context, db *DB, coll string, rec Record, now string) error {
	id := rec.ID()
	if id == "" {
		return errors.New("record has no id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding the record")
	}

	_, err = db.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (id, data, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, coll), id, string(data), now)
	if err != nil {
		return errors.Wrapf(err, "writing %s into %s", id, coll)
	}

	return nil
}

// Put inserts the record, or replaces the stored record with the same id
func (s *Store) Put(ctx context.Context, coll string, rec Record) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return putRecord(ctx, db, coll, rec, s.now())
}

// Delete removes the record with the given id. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return deleteRecord(ctx, db, coll, id)
}

func deleteRecord(ctx context.Context, db *DB, coll, id string) error {
	if _, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", coll), id); err != nil {
		return errors.Wrapf(err, "deleting %s from %s", id, coll)
	}

	return nil
}

// ReplaceAll clears the collection and inserts the given records within a
// single transaction, so readers never see the collection empty.
func (s *Store) ReplaceAll(ctx context.Context, coll string, recs []Record) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", coll)); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "clearing %s", coll)
	}

	now := s.now()
	for _, rec := range recs {
		if err := putRecord(ctx, tx, coll, rec, now); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "committing the snapshot of %s", coll)
	}

	return nil
}

// GetSystem reads a system value into dest
func (s *Store) GetSystem(ctx context.Context, key string, dest interface{}) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return GetSystem(ctx, db, key, dest)
}

// UpdateSystem writes a system value
func (s *Store) UpdateSystem(ctx context.Context, key string, val interface{}) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return UpdateSystem(ctx, db, key, val)
}
