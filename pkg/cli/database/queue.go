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
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Action is the kind of a queued mutation
type Action string

const (
	// ActionCreate creates a record
	ActionCreate Action = "create"
	// ActionUpdate merges changes into a record
	ActionUpdate Action = "update"
	// ActionDelete deletes a record
	ActionDelete Action = "delete"
)

// Valid reports whether the action is known
func (a Action) Valid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// QueueEntry is a mutation recorded while offline
type QueueEntry struct {
	Seq       int64     `json:"seq"`
	Action    Action    `json:"action"`
	StoreName string    `json:"storeName"`
	Data      Record    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Synced    bool      `json:"synced"`
}

// UpdatePayload builds the queued payload of an update
func UpdatePayload(id string, changes Record) Record {
	return Record{"id": id, "cambios": changes}
}

// DeletePayload builds the queued payload of a delete
func DeletePayload(id string) Record {
	return Record{"id": id}
}

// Changes returns the changes carried by an update payload
func (e QueueEntry) Changes() Record {
	switch c := e.Data["cambios"].(type) {
	case Record:
		return c
	case map[string]interface{}:
		return Record(c)
	}

	return Record{}
}

// Mutation is a change to queue for the remote service
type Mutation struct {
	Action  Action
	Payload Record
}

func insertQueueEntry(ctx context.Context, db *DB, coll string, m Mutation, now string) error {
	if !m.Action.Valid() {
		return errors.Errorf("invalid action '%s'", m.Action)
	}

	data, err := json.Marshal(m.Payload)
	if err != nil {
		return errors.Wrap(err, "encoding the payload")
	}

	_, err = db.Exec(ctx, "INSERT INTO sync_queue (action, store_name, data, timestamp, synced) VALUES (?, ?, ?, ?, ?)",
		string(m.Action), coll, string(data), now, false)
	if err != nil {
		return errors.Wrap(err, "inserting a queue entry")
	}

	return nil
}

// EnqueueMutation appends a mutation to the end of the queue
func (s *Store) EnqueueMutation(ctx context.Context, action Action, coll string, payload Record) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return insertQueueEntry(ctx, db, coll, Mutation{Action: action, Payload: payload}, s.now())
}

// inTx runs fn within a transaction, rolling back if it fails
func (s *Store) inTx(ctx context.Context, fn func(tx *DB) error) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing")
	}

	return nil
}

// PutQueued saves the record and queues the mutation in one transaction,
// so that neither is kept without the other. A nil mutation only saves.
func (s *Store) PutQueued(ctx context.Context, coll string, rec Record, m *Mutation) error {
	if err := checkCollection(coll); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *DB) error {
		now := s.now()
		if err := putRecord(ctx, tx, coll, rec, now); err != nil {
			return err
		}
		if m == nil {
			return nil
		}

		return insertQueueEntry(ctx, tx, coll, *m, now)
	})
}

// DeleteQueued deletes the record and queues the mutation in one
// transaction. A nil mutation only deletes.
func (s *Store) DeleteQueued(ctx context.Context, coll, id string, m *Mutation) error {
	if err := checkCollection(coll); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *DB) error {
		if err := deleteRecord(ctx, tx, coll, id); err != nil {
			return err
		}
		if m == nil {
			return nil
		}

		return insertQueueEntry(ctx, tx, coll, *m, s.now())
	})
}

func markSynced(ctx context.Context, db *DB, seq int64) error {
	res, err := db.Exec(ctx, "UPDATE sync_queue SET synced = ? WHERE seq = ?", true, seq)
	if err != nil {
		return errors.Wrapf(err, "marking queue entry %d as synced", seq)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting updated queue entries")
	}
	if n == 0 {
		return errors.Errorf("queue entry %d not found", seq)
	}

	return nil
}

// MarkSynced records that the queued mutation reached the remote service,
// so that it is not sent again
func (s *Store) MarkSynced(ctx context.Context, seq int64) error {
	return s.inTx(ctx, func(tx *DB) error {
		return markSynced(ctx, tx, seq)
	})
}

// MarkCreated records that the queued create reached the remote service,
// which stored the record under remoteID. The record and every reference
// to localID, in the stored records and in the pending mutations, move to
// remoteID.
func (s *Store) MarkCreated(ctx context.Context, seq int64, coll, localID, remoteID string) error {
	if err := checkCollection(coll); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *DB) error {
		if err := markSynced(ctx, tx, seq); err != nil {
			return err
		}
		if localID == "" || remoteID == "" || localID == remoteID {
			return nil
		}

		for _, c := range Collections {
			if err := remapRecords(ctx, tx, c, localID, remoteID); err != nil {
				return err
			}
		}

		return remapQueue(ctx, tx, localID, remoteID)
	})
}

type storedRow struct {
	key  string
	data string
}

// rowsContaining returns the rows whose data holds the id as a JSON string
func rowsContaining(ctx context.Context, db *DB, query, id string) ([]storedRow, error) {
	needle, err := json.Marshal(id)
	if err != nil {
		return nil, errors.Wrap(err, "encoding the id")
	}

	rows, err := db.Query(ctx, query, string(needle))
	if err != nil {
		return nil, errors.Wrap(err, "querying")
	}
	defer rows.Close()

	ret := []storedRow{}
	for rows.Next() {
		var r storedRow
		if err := rows.Scan(&r.key, &r.data); err != nil {
			return nil, errors.Wrap(err, "scanning")
		}
		ret = append(ret, r)
	}

	return ret, rows.Err()
}

func remapRecords(ctx context.Context, db *DB, coll, localID, remoteID string) error {
	rows, err := rowsContaining(ctx, db, fmt.Sprintf("SELECT id, data FROM %s WHERE instr(data, ?) > 0", coll), localID)
	if err != nil {
		return errors.Wrapf(err, "finding references to %s in %s", localID, coll)
	}

	for _, row := range rows {
		var rec Record
		if err := json.Unmarshal([]byte(row.data), &rec); err != nil {
			return errors.Wrapf(err, "decoding %s in %s", row.key, coll)
		}
		rec, changed := ReplaceID(rec, localID, remoteID)
		if !changed {
			continue
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "encoding the record")
		}

		if row.key == localID {
			// a copy pulled from the remote meanwhile is the same record
			if _, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", coll), remoteID); err != nil {
				return errors.Wrapf(err, "replacing %s in %s", remoteID, coll)
			}
			_, err = db.Exec(ctx, fmt.Sprintf("UPDATE %s SET id = ?, data = ? WHERE id = ?", coll), remoteID, string(data), localID)
		} else {
			_, err = db.Exec(ctx, fmt.Sprintf("UPDATE %s SET data = ? WHERE id = ?", coll), string(data), row.key)
		}
		if err != nil {
			return errors.Wrapf(err, "moving %s to %s in %s", localID, remoteID, coll)
		}
	}

	return nil
}

func remapQueue(ctx context.Context, db *DB, localID, remoteID string) error {
	rows, err := rowsContaining(ctx, db, "SELECT seq, data FROM sync_queue WHERE synced = 0 AND instr(data, ?) > 0", localID)
	if err != nil {
		return errors.Wrapf(err, "finding queued references to %s", localID)
	}

	for _, row := range rows {
		var payload Record
		if err := json.Unmarshal([]byte(row.data), &payload); err != nil {
			return errors.Wrapf(err, "decoding queue entry %s", row.key)
		}
		payload, changed := ReplaceID(payload, localID, remoteID)
		if !changed {
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "encoding the payload")
		}

		if _, err := db.Exec(ctx, "UPDATE sync_queue SET data = ? WHERE seq = ?", string(data), row.key); err != nil {
			return errors.Wrapf(err, "updating queue entry %s", row.key)
		}
	}

	return nil
}

// ListQueue returns every queued mutation in the order it was enqueued
func (s *Store) ListQueue(ctx context.Context) ([]QueueEntry, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, "SELECT seq, action, store_name, data, timestamp, synced FROM sync_queue ORDER BY seq")
	if err != nil {
		return nil, errors.Wrap(err, "querying the queue")
	}
	defer rows.Close()

	ret := []QueueEntry{}
	for rows.Next() {
		var e QueueEntry
		var action, data, ts string
		if err := rows.Scan(&e.Seq, &action, &e.StoreName, &data, &ts, &e.Synced); err != nil {
			return nil, errors.Wrap(err, "scanning a queue entry")
		}

		e.Action = Action(action)
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return nil, errors.Wrapf(err, "decoding queue entry %d", e.Seq)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, errors.Wrapf(err, "parsing the timestamp of queue entry %d", e.Seq)
		}

		ret = append(ret, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating the queue")
	}

	return ret, nil
}

// ClearQueue removes every queued mutation, sent or not
func (s *Store) ClearQueue(ctx context.Context) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if _, err := db.Exec(ctx, "DELETE FROM sync_queue"); err != nil {
		return errors.Wrap(err, "clearing the queue")
	}

	return nil
}

// QueueLength returns the number of queued mutations not sent yet
func (s *Store) QueueLength(ctx context.Context) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRow(ctx, "SELECT count(*) FROM sync_queue WHERE synced = 0").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "counting queue entries")
	}

	return n, nil
}
