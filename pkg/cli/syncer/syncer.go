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

// Package syncer replays the offline mutation queue against the remote
// service and refreshes the local store from a remote snapshot
package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kropland/kropland/pkg/cli/client"
	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultRequestTimeout bounds every call made to the remote service during a sync
const DefaultRequestTimeout = 15 * time.Second

const (
	// ReasonOffline is the skip reason when the remote service is unreachable
	ReasonOffline = "offline"
	// ReasonInProgress is the skip reason when another sync is running
	ReasonInProgress = "sync in progress"
)

// Store is the part of the local store a sync reads and writes
type Store interface {
	ListQueue(ctx context.Context) ([]database.QueueEntry, error)
	MarkSynced(ctx context.Context, seq int64) error
	MarkCreated(ctx context.Context, seq int64, coll, localID, remoteID string) error
	ClearQueue(ctx context.Context) error
	ReplaceAll(ctx context.Context, coll string, recs []database.Record) error
}

// LastSyncRecorder persists the time of the last successful sync
type LastSyncRecorder interface {
	SetLastSync(t time.Time) error
}

// ReplayError is returned when some queued mutations could not be replayed.
// The queue is kept, with the mutations that went through marked as synced,
// so that only the failed ones are sent again on the next sync.
type ReplayError struct {
	// Keys lists the failed mutations as collection:action, once each, in
	// the order they failed
	Keys []string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replaying queued changes failed for %s", strings.Join(e.Keys, ", "))
}

// Result is the outcome of a sync
type Result struct {
	// Skipped is true when the sync did not run. Reason says why.
	Skipped bool
	Reason  string

	// Replayed is the number of queued mutations sent successfully
	Replayed int
	// Failed lists the keys of mutations that failed
	Failed []string
	// Refreshed lists the collections overwritten from the remote snapshot
	Refreshed []string
	// LastSync is set when the sync succeeded
	LastSync *time.Time
	// Err is the error that stopped the sync
	Err error
}

// Options configures an Engine
type Options struct {
	// RequestTimeout defaults to DefaultRequestTimeout
	RequestTimeout time.Duration
	// State, when set, receives the time of every successful sync
	State LastSyncRecorder
	Clock clock.Clock
}

// Engine synchronizes the local store with the remote service
type Engine struct {
	store   Store
	api     client.API
	tracker *connectivity.Tracker
	state   LastSyncRecorder
	clock   clock.Clock
	timeout time.Duration
}

// New returns an engine. The tracker decides whether a sync may run and
// reflects its progress.
func New(store Store, api client.API, tracker *connectivity.Tracker, opts Options) *Engine {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}

	return &Engine{
		store:   store,
		api:     api,
		tracker: tracker,
		state:   opts.State,
		clock:   c,
		timeout: timeout,
	}
}

// Sync sends the queued mutations, then replaces the local collections with
// the remote ones. It does nothing when offline or when a sync is already
// running. Sync does not return an error: the outcome is in the Result and
// in the tracker state.
func (e *Engine) Sync(ctx context.Context) (res Result) {
	if !e.tracker.BeginSync() {
		res.Skipped = true
		res.Reason = ReasonInProgress
		if !e.tracker.GetState().IsOnline {
			res.Reason = ReasonOffline
		}

		log.Debug("sync: skipped (%s)\n", res.Reason)
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.Errorf("unexpected failure: %v", r)
			res.LastSync = nil
		}
		if res.Err != nil {
			log.Debug("sync: failed: %s\n", res.Err)
		}

		e.tracker.EndSync(res.LastSync, res.Err)
	}()

	replayed, err := e.replay(ctx)
	res.Replayed = replayed
	if err != nil {
		var rerr *ReplayError
		if errors.As(err, &rerr) {
			res.Failed = rerr.Keys
		}
		res.Err = err
		return res
	}

	refreshed, err := e.refresh(ctx)
	res.Refreshed = refreshed
	if err != nil {
		res.Err = err
		return res
	}

	now := e.clock.Now()
	if e.state != nil {
		if err := e.state.SetLastSync(now); err != nil {
			res.Err = errors.Wrap(err, "saving the last sync time")
			return res
		}
	}
	res.LastSync = &now

	log.Debug("sync: done, replayed %d, refreshed %v\n", res.Replayed, res.Refreshed)
	return res
}

func entryKey(entry database.QueueEntry) string {
	return fmt.Sprintf("%s:%s", entry.StoreName, entry.Action)
}

// replay sends every pending mutation in order. A failed mutation does not
// stop the others. Each mutation that goes through is marked as synced right
// away, and the queue is cleared only when none is left pending.
func (e *Engine) replay(ctx context.Context) (int, error) {
	entries, err := e.store.ListQueue(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "reading the queue")
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var replayed int
	var failed []string
	seen := map[string]bool{}

	for i, entry := range entries {
		if entry.Synced {
			continue
		}

		remoteID, err := e.send(ctx, entry)
		if err != nil {
			key := entryKey(entry)
			log.Debug("sync: replaying %d (%s): %s\n", entry.Seq, key, err)

			if !seen[key] {
				seen[key] = true
				failed = append(failed, key)
			}
			continue
		}

		localID := entry.Data.ID()
		if entry.Action == database.ActionCreate {
			err = e.store.MarkCreated(ctx, entry.Seq, entry.StoreName, localID, remoteID)
		} else {
			err = e.store.MarkSynced(ctx, entry.Seq)
		}
		if err != nil {
			return replayed, errors.Wrapf(err, "recording queue entry %d as synced", entry.Seq)
		}
		replayed++

		if entry.Action == database.ActionCreate && remoteID != "" && remoteID != localID {
			log.Debug("sync: %s '%s' is '%s' on the remote\n", entry.StoreName, localID, remoteID)
			for j := i + 1; j < len(entries); j++ {
				entries[j].Data, _ = database.ReplaceID(entries[j].Data, localID, remoteID)
			}
		}
	}

	if len(failed) > 0 {
		return replayed, &ReplayError{Keys: failed}
	}

	if err := e.store.ClearQueue(ctx); err != nil {
		return replayed, errors.Wrap(err, "clearing the queue")
	}

	return replayed, nil
}

// send replays one mutation. For a create it returns the id the remote
// service stored the record under.
func (e *Engine) send(ctx context.Context, entry database.QueueEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch entry.Action {
	case database.ActionCreate:
		created, err := e.api.Create(ctx, entry.StoreName, entry.Data)
		if err != nil {
			return "", err
		}
		return created.ID(), nil
	case database.ActionUpdate:
		_, err := e.api.Update(ctx, entry.StoreName, entry.Data.ID(), entry.Changes())
		return "", err
	case database.ActionDelete:
		err := e.api.Delete(ctx, entry.StoreName, entry.Data.ID())
		if errors.Is(err, client.ErrNotFound) {
			// already gone on the remote
			return "", nil
		}
		return "", err
	}

	return "", errors.Errorf("unknown action '%s'", entry.Action)
}

// refresh fetches every collection in parallel and overwrites the local
// ones that came back non-empty. A failed fetch counts as empty so that the
// local data is kept; fetches therefore never fail the group.
func (e *Engine) refresh(ctx context.Context) ([]string, error) {
	snapshot := make([][]database.Record, len(database.Collections))

	var g errgroup.Group
	for i, coll := range database.Collections {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			recs, err := e.api.List(cctx, coll)
			if err != nil {
				log.Debug("sync: fetching %s: %s\n", coll, err)
				return nil
			}

			snapshot[i] = recs
			return nil
		})
	}
	g.Wait()

	refreshed := []string{}
	for i, coll := range database.Collections {
		if len(snapshot[i]) == 0 {
			continue
		}

		if err := e.store.ReplaceAll(ctx, coll, snapshot[i]); err != nil {
			return refreshed, errors.Wrapf(err, "replacing %s", coll)
		}
		refreshed = append(refreshed, coll)
	}

	return refreshed, nil
}
