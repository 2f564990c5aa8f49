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

package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

const (
	// DefaultInitialDelay is the wait before the first sync after start
	DefaultInitialDelay = time.Second
	// DefaultInterval is the period of the automatic sync
	DefaultInterval = 5 * time.Minute
)

// Trigger says what started a sync
type Trigger string

const (
	// TriggerStartup is the sync run shortly after start
	TriggerStartup Trigger = "startup"
	// TriggerReconnect is the sync run when connectivity comes back
	TriggerReconnect Trigger = "reconnect"
	// TriggerPeriodic is the sync run on the schedule
	TriggerPeriodic Trigger = "periodic"
)

// SchedulerOptions configures a Scheduler
type SchedulerOptions struct {
	InitialDelay time.Duration
	Interval     time.Duration
	// OnResult is called after every sync the scheduler starts
	OnResult func(Trigger, Result)
}

// Scheduler runs the engine automatically: once after start, on every
// reconnect and periodically while online and idle
type Scheduler struct {
	engine  *Engine
	tracker *connectivity.Tracker
	opts    SchedulerOptions

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler returns a scheduler for the engine
func NewScheduler(engine *Engine, opts SchedulerOptions) *Scheduler {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	return &Scheduler{
		engine:  engine,
		tracker: engine.tracker,
		opts:    opts,
	}
}

// Start registers the reconnect hook and starts the timers. The tracker
// should already be started so that the initial sync sees its state.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	ctx, cancel := context.WithCancel(ctx)

	c := cron.New()
	schedule := "@every " + s.opts.Interval.String()
	err := c.AddFunc(schedule, func() {
		st := s.tracker.GetState()
		if !st.IsOnline || st.IsSyncing {
			return
		}

		s.run(ctx, TriggerPeriodic)
	})
	if err != nil {
		cancel()
		return errors.Wrapf(err, "scheduling '%s'", schedule)
	}

	s.cron = c
	s.cancel = cancel

	s.tracker.OnReconnect(func() {
		s.run(ctx, TriggerReconnect)
	})

	if s.tracker.GetState().IsOnline {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()

			t := time.NewTimer(s.opts.InitialDelay)
			defer t.Stop()

			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.run(ctx, TriggerStartup)
			}
		}()
	}

	c.Start()

	return nil
}

// begin counts a sync in, unless the scheduler is stopped
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return false
	}
	s.wg.Add(1)

	return true
}

func (s *Scheduler) run(ctx context.Context, trigger Trigger) {
	if !s.begin() {
		return
	}
	defer s.wg.Done()

	if ctx.Err() != nil {
		return
	}

	log.Debug("sync: %s sync\n", trigger)
	res := s.engine.Sync(ctx)

	if s.opts.OnResult != nil {
		s.opts.OnResult(trigger, res)
	}
}

// Stop halts the timers and unregisters the reconnect hook. A sync already
// running is cancelled through its context, and Stop returns once it ended,
// whichever trigger started it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancel
	s.cron = nil
	s.cancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	s.tracker.OnReconnect(nil)
	c.Stop()
	cancel()
	s.wg.Wait()
}
