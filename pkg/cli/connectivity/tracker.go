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

// Package connectivity tracks whether the remote service is reachable and
// whether a sync is in progress, and notifies subscribers of changes
package connectivity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/log"
)

// DefaultPollInterval is how often the probe is re-checked
const DefaultPollInterval = 3 * time.Second

// Options configures a Tracker
type Options struct {
	// PollInterval defaults to DefaultPollInterval
	PollInterval time.Duration
	// LastSync is the time of the last successful sync known at startup
	LastSync *time.Time
}

type subscriber struct {
	cb     func(State)
	last   State
	active bool
}

// Tracker holds the connectivity State of the process. Create it with New,
// run it with Start and release it with Close.
//
// Subscriber callbacks run synchronously while the tracker holds its
// notification lock. They may call GetState and unsubscribe, but must not
// call Subscribe or change the state.
type Tracker struct {
	probe        Probe
	pollInterval time.Duration

	mu          sync.Mutex
	state       State
	subs        map[int]*subscriber
	nextID      int
	onReconnect func()
	cancel      context.CancelFunc

	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

// New returns a tracker that is offline until Start checks the probe
func New(probe Probe, opts Options) *Tracker {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	t := &Tracker{
		probe:        probe,
		pollInterval: interval,
		subs:         map[int]*subscriber{},
	}
	if opts.LastSync != nil {
		ls := *opts.LastSync
		t.state.LastSync = &ls
	}

	return t
}

// OnReconnect registers the function invoked, in its own goroutine, every
// time the tracker goes from offline to online
func (t *Tracker) OnReconnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onReconnect = fn
}

// Start checks the probe once, without treating the result as a reconnect,
// and then polls it until the context is done or Close is called. Probes
// that can push changes are also watched.
func (t *Tracker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		cancel()
		return
	}
	t.cancel = cancel
	t.mu.Unlock()

	online := t.probe.Online(ctx)
	t.update(func(s *State) {
		s.IsOnline = online
	})

	if n, ok := t.probe.(Notifier); ok {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()

			if err := n.Watch(ctx, t.SetOnline); err != nil {
				log.Debug("connectivity: watching the probe: %s\n", err)
			}
		}()
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.poll(ctx)
	}()
}

func (t *Tracker) poll(ctx context.Context) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.SetOnline(t.probe.Online(ctx))
		}
	}
}

// Close stops polling and waits for the background goroutines, including
// running reconnect hooks, to return
func (t *Tracker) Close() {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

// GetState returns a snapshot of the current state
func (t *Tracker) GetState() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state.clone()
}

// Subscribe invokes cb with the current state, and then once for every
// change until the returned function is called. The returned function can be
// called any number of times.
func (t *Tracker) Subscribe(cb func(State)) func() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	s := t.state.clone()
	sub := &subscriber{cb: cb, last: s, active: true}
	t.subs[id] = sub
	t.mu.Unlock()

	cb(s)

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if sub, ok := t.subs[id]; ok {
			sub.active = false
			delete(t.subs, id)
		}
	}
}

// update applies fn to the state and notifies subscribers if the state
// changed. It reports the state before and after.
func (t *Tracker) update(fn func(s *State)) (State, State) {
	t.mu.Lock()
	prev := t.state.clone()
	fn(&t.state)
	cur := t.state.clone()
	t.mu.Unlock()

	if !prev.equal(cur) {
		t.notify()
	}

	return prev, cur
}

func (t *Tracker) notify() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	s := t.state.clone()
	ids := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, t.subs[id])
	}
	t.mu.Unlock()

	for _, sub := range subs {
		t.mu.Lock()
		active := sub.active
		t.mu.Unlock()

		if !active || sub.last.equal(s) {
			continue
		}

		sub.last = s.clone()
		sub.cb(s.clone())
	}
}

// SetOnline records the connectivity reported by the platform. Going from
// offline to online runs the reconnect hook. Going offline does not affect a
// sync in progress.
func (t *Tracker) SetOnline(online bool) {
	prev, cur := t.update(func(s *State) {
		s.IsOnline = online
	})

	if prev.IsOnline || !cur.IsOnline {
		return
	}

	log.Debug("connectivity: back online\n")

	t.mu.Lock()
	hook := t.onReconnect
	t.mu.Unlock()

	if hook != nil {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			hook()
		}()
	}
}

// BeginSync marks a sync as started and clears the previous sync error. It
// returns false, without changing anything, if the tracker is offline or a
// sync is already running.
func (t *Tracker) BeginSync() bool {
	var ok bool
	t.update(func(s *State) {
		if !s.IsOnline || s.IsSyncing {
			return
		}

		ok = true
		s.IsSyncing = true
		s.SyncError = nil
	})

	return ok
}

// EndSync marks the running sync as finished. lastSync is recorded when not
// nil, and syncErr becomes the sync error when not nil.
func (t *Tracker) EndSync(lastSync *time.Time, syncErr error) {
	t.update(func(s *State) {
		s.IsSyncing = false
		if lastSync != nil {
			ls := *lastSync
			s.LastSync = &ls
		}
		if syncErr != nil {
			msg := syncErr.Error()
			s.SyncError = &msg
		}
	})
}
