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

package client

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

const (
	// DefaultLatency is the delay the simulated service adds to every call
	DefaultLatency = 300 * time.Millisecond
	// DefaultFailureRate is the probability of a simulated call failing
	DefaultFailureRate = 0.05

	idLength   = 9
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// SimulatedOptions configures a Simulated service
type SimulatedOptions struct {
	Latency     time.Duration
	FailureRate float64
	// Rand drives failures and ids. A time seeded source is used if nil.
	Rand  *rand.Rand
	Clock clock.Clock
}

// Simulated is an in-memory remote service with injected latency and random
// failures
type Simulated struct {
	latency     time.Duration
	failureRate float64
	clock       clock.Clock

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.Mutex
	data  map[string]map[string]database.Record
	order map[string][]string
}

// NewSimulated returns an empty simulated service
func NewSimulated(opts SimulatedOptions) *Simulated {
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}

	s := &Simulated{
		latency:     opts.Latency,
		failureRate: opts.FailureRate,
		clock:       c,
		rnd:         rnd,
		data:        map[string]map[string]database.Record{},
		order:       map[string][]string{},
	}
	for _, coll := range database.Collections {
		s.data[coll] = map[string]database.Record{}
	}

	return s
}

// Load stores the records as they are, replacing records with the same id.
// It has no latency and never fails.
func (s *Simulated) Load(coll string, recs []database.Record) error {
	if !database.ValidCollection(coll) {
		return errors.Wrapf(database.ErrUnknownCollection, "'%s'", coll)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		s.put(coll, r.Clone())
	}

	return nil
}

func (s *Simulated) put(coll string, r database.Record) {
	id := r.ID()
	if _, ok := s.data[coll][id]; !ok {
		s.order[coll] = append(s.order[coll], id)
	}
	s.data[coll][id] = r
}

func (s *Simulated) remove(coll, id string) {
	delete(s.data[coll], id)

	ids := s.order[coll]
	for i, v := range ids {
		if v == id {
			s.order[coll] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

// call waits for the simulated latency and decides whether the call fails
func (s *Simulated) call(ctx context.Context, coll string) error {
	if !database.ValidCollection(coll) {
		return errors.Wrapf(database.ErrUnknownCollection, "'%s'", coll)
	}

	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
			return errors.Wrap(ErrRemoteUnavailable, ctx.Err().Error())
		}
	} else if err := ctx.Err(); err != nil {
		return errors.Wrap(ErrRemoteUnavailable, err.Error())
	}

	s.rndMu.Lock()
	fail := s.rnd.Float64() < s.failureRate
	s.rndMu.Unlock()

	if fail {
		return errors.Wrap(ErrRemoteUnavailable, "simulated network error")
	}

	return nil
}

func (s *Simulated) newID() string {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()

	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[s.rnd.Intn(len(idAlphabet))]
	}

	return string(b)
}

// List implements API
func (s *Simulated) List(ctx context.Context, coll string) ([]database.Record, error) {
	if err := s.call(ctx, coll); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]database.Record, 0, len(s.order[coll]))
	for _, id := range s.order[coll] {
		ret = append(ret, s.data[coll][id].Clone())
	}

	return ret, nil
}

// Get implements API
func (s *Simulated) Get(ctx context.Context, coll, id string) (database.Record, error) {
	if err := s.call(ctx, coll); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.data[coll][id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", coll, id)
	}

	return r.Clone(), nil
}

// Create implements API. The service assigns the id and the creation time.
func (s *Simulated) Create(ctx context.Context, coll string, data database.Record) (database.Record, error) {
	if err := s.call(ctx, coll); err != nil {
		return nil, err
	}

	r := data.Clone()
	if r == nil {
		r = database.Record{}
	}
	r["id"] = s.newID()
	r["createdAt"] = s.clock.Now().UTC().Format(time.RFC3339Nano)

	s.mu.Lock()
	s.put(coll, r)
	s.mu.Unlock()

	log.Debug("simulated: created %s %s\n", coll, r.ID())

	return r.Clone(), nil
}

// Update implements API
func (s *Simulated) Update(ctx context.Context, coll, id string, partial database.Record) (database.Record, error) {
	if err := s.call(ctx, coll); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.data[coll][id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %s", coll, id)
	}

	r := database.Merge(old, partial.Clone())
	r["id"] = id
	s.data[coll][id] = r

	log.Debug("simulated: updated %s %s\n", coll, id)

	return r.Clone(), nil
}

// Delete implements API
func (s *Simulated) Delete(ctx context.Context, coll, id string) error {
	if err := s.call(ctx, coll); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[coll][id]; !ok {
		return errors.Wrapf(ErrNotFound, "%s %s", coll, id)
	}
	s.remove(coll, id)

	log.Debug("simulated: deleted %s %s\n", coll, id)

	return nil
}
