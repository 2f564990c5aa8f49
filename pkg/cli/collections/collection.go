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

// Package collections keeps an in-memory mirror of a store collection and
// writes every change through to the store, queueing it while offline
package collections

import (
	"context"
	"sync"

	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when no record has the given id
var ErrNotFound = errors.New("record not found")

// Connectivity reports whether the remote service is reachable
type Connectivity interface {
	GetState() connectivity.State
}

type item[T models.Entity] struct {
	rec database.Record
	val T
}

// Collection is the in-memory mirror of the store collection holding T
type Collection[T models.Entity] struct {
	store *database.Store
	conn  Connectivity
	clock clock.Clock
	coll  string

	mu      sync.RWMutex
	items   []item[T]
	loadErr error
}

// New returns an empty collection. Call Load to read the persisted records.
func New[T models.Entity](store *database.Store, conn Connectivity, c clock.Clock) *Collection[T] {
	if c == nil {
		c = clock.New()
	}

	var zero T
	return &Collection[T]{
		store: store,
		conn:  conn,
		clock: c,
		coll:  zero.CollectionName(),
	}
}

// Name returns the store collection name
func (c *Collection[T]) Name() string {
	return c.coll
}

// Load initializes the store and reads the persisted records into memory.
// If the store cannot be initialized, the collection keeps working in memory
// only and LoadErr reports the failure.
func (c *Collection[T]) Load(ctx context.Context) error {
	if err := c.store.Initialize(ctx); err != nil {
		c.mu.Lock()
		c.items = nil
		c.loadErr = err
		c.mu.Unlock()

		return errors.Wrapf(err, "loading %s", c.coll)
	}

	items := []item[T]{}
	for _, rec := range c.store.GetAll(ctx, c.coll) {
		var val T
		if err := database.FromRecord(rec, &val); err != nil {
			log.Debug("collections: skipping %s '%s': %s\n", c.coll, rec.ID(), err)
			continue
		}

		items = append(items, item[T]{rec: rec, val: val})
	}

	c.mu.Lock()
	c.items = items
	c.loadErr = nil
	c.mu.Unlock()

	return nil
}

// LoadErr returns the error of the last Load, if any
func (c *Collection[T]) LoadErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.loadErr
}

// List returns every record in the order they were added
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ret := make([]T, 0, len(c.items))
	for _, it := range c.items {
		ret = append(ret, it.val)
	}

	return ret
}

// Where returns the records for which fn is true
func (c *Collection[T]) Where(fn func(T) bool) []T {
	ret := []T{}
	for _, v := range c.List() {
		if fn(v) {
			ret = append(ret, v)
		}
	}

	return ret
}

func (c *Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.rec.ID() == id {
			return i
		}
	}

	return -1
}

// Get returns the record with the given id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i].val, true
	}

	var zero T
	return zero, false
}

func (c *Collection[T]) offline() bool {
	return c.conn == nil || !c.conn.GetState().IsOnline
}

// writeErr decides whether a failed store write is returned. Writes are
// dropped silently only while the collection runs in memory.
func (c *Collection[T]) writeErr(err error) error {
	if err == nil {
		return nil
	}
	if c.LoadErr() != nil && errors.Is(err, database.ErrStorageUnavailable) {
		log.Debug("collections: %s kept in memory only: %s\n", c.coll, err)
		return nil
	}

	return err
}

// mutation returns the change to queue along with a write, which is nil
// while online
func (c *Collection[T]) mutation(action database.Action, payload database.Record) *database.Mutation {
	if !c.offline() {
		return nil
	}

	return &database.Mutation{Action: action, Payload: payload}
}

// Create assigns a new id and the creation date to v, saves it and returns
// the saved record
func (c *Collection[T]) Create(ctx context.Context, v T) (T, error) {
	var zero T

	rec, err := database.ToRecord(v)
	if err != nil {
		return zero, err
	}

	id, err := utils.GenerateUUID()
	if err != nil {
		return zero, err
	}
	rec["id"] = id
	rec[zero.CreatedField()] = c.clock.Now().Format(models.DateLayout)

	var created T
	if err := database.FromRecord(rec, &created); err != nil {
		return zero, err
	}

	m := c.mutation(database.ActionCreate, rec)
	if err := c.writeErr(c.store.PutQueued(ctx, c.coll, rec, m)); err != nil {
		return zero, errors.Wrapf(err, "saving %s '%s'", c.coll, id)
	}

	c.mu.Lock()
	c.items = append(c.items, item[T]{rec: rec, val: created})
	c.mu.Unlock()

	return created, nil
}

// Update merges changes into the record with the given id and returns the
// result. The id itself cannot be changed.
func (c *Collection[T]) Update(ctx context.Context, id string, changes map[string]interface{}) (T, error) {
	var zero T

	c.mu.RLock()
	i := c.indexOf(id)
	var old database.Record
	if i >= 0 {
		old = c.items[i].rec
	}
	c.mu.RUnlock()

	if old == nil {
		return zero, errors.Wrapf(ErrNotFound, "%s '%s'", c.coll, id)
	}

	cambios := database.Record{}
	for k, v := range changes {
		if k == "id" {
			continue
		}
		cambios[k] = v
	}

	merged := database.Merge(old, cambios)

	var updated T
	if err := database.FromRecord(merged, &updated); err != nil {
		return zero, errors.Wrapf(err, "applying changes to %s '%s'", c.coll, id)
	}

	m := c.mutation(database.ActionUpdate, database.UpdatePayload(id, cambios))
	if err := c.writeErr(c.store.PutQueued(ctx, c.coll, merged, m)); err != nil {
		return zero, errors.Wrapf(err, "saving %s '%s'", c.coll, id)
	}

	c.mu.Lock()
	if j := c.indexOf(id); j >= 0 {
		c.items[j] = item[T]{rec: merged, val: updated}
	}
	c.mu.Unlock()

	return updated, nil
}

// Delete removes the record with the given id
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.RLock()
	found := c.indexOf(id) >= 0
	c.mu.RUnlock()

	if !found {
		return errors.Wrapf(ErrNotFound, "%s '%s'", c.coll, id)
	}

	m := c.mutation(database.ActionDelete, database.DeletePayload(id))
	if err := c.writeErr(c.store.DeleteQueued(ctx, c.coll, id, m)); err != nil {
		return errors.Wrapf(err, "deleting %s '%s'", c.coll, id)
	}

	c.mu.Lock()
	if j := c.indexOf(id); j >= 0 {
		c.items = append(c.items[:j:j], c.items[j+1:]...)
	}
	c.mu.Unlock()

	return nil
}

// CreateRecord creates a record given as loose fields
func (c *Collection[T]) CreateRecord(ctx context.Context, rec database.Record) (database.Record, error) {
	var v T
	if err := database.FromRecord(rec, &v); err != nil {
		return nil, errors.Wrapf(err, "decoding the new %s", c.coll)
	}

	created, err := c.Create(ctx, v)
	if err != nil {
		return nil, err
	}

	return database.ToRecord(created)
}

// UpdateRecord is Update returning the result as a record
func (c *Collection[T]) UpdateRecord(ctx context.Context, id string, changes map[string]interface{}) (database.Record, error) {
	updated, err := c.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	return database.ToRecord(updated)
}

// Records returns every record as stored
func (c *Collection[T]) Records() []database.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ret := make([]database.Record, 0, len(c.items))
	for _, it := range c.items {
		ret = append(ret, it.rec.Clone())
	}

	return ret
}

// Record returns the record with the given id as stored
func (c *Collection[T]) Record(id string) (database.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i].rec.Clone(), true
	}

	return nil, false
}
