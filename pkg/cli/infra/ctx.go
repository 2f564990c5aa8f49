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

package infra

import (
	"context"

	"github.com/kropland/kropland/pkg/cli/client"
	"github.com/kropland/kropland/pkg/cli/collections"
	"github.com/kropland/kropland/pkg/cli/config"
	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/state"
	"github.com/kropland/kropland/pkg/cli/syncer"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
}

// Ctx holds the services of the current run of the field client
type Ctx struct {
	Paths      Paths
	Version    string
	ConfigPath string
	Config     config.Config
	Store      *database.Store
	State      *state.File
	API        client.API
	Clock      clock.Clock
	// Editor is the command line of the text editor
	Editor string
}

// Close releases the database
func (c *Ctx) Close() error {
	if c.Store == nil {
		return nil
	}

	return c.Store.Close()
}

// NewProbe returns the connectivity probe for the configured remote. The
// offline flag file forces the client offline whatever the remote says.
func (c *Ctx) NewProbe() connectivity.Probe {
	var next connectivity.Probe
	if c.Config.Remote == config.RemoteHTTP {
		next = connectivity.NewHTTPProbe(c.Config.APIEndpoint)
	} else {
		next = connectivity.NewStaticProbe(true)
	}

	return connectivity.NewFlagFileProbe(c.Config.OfflineFlag, next)
}

// NewTracker returns a tracker for the configured remote, aware of the last
// successful sync. It is not started.
func (c *Ctx) NewTracker() *connectivity.Tracker {
	lastSync, err := c.State.LastSync()
	if err != nil {
		log.Debug("reading the last sync time: %s\n", err)
	}

	return connectivity.New(c.NewProbe(), connectivity.Options{
		PollInterval: c.Config.PollInterval,
		LastSync:     lastSync,
	})
}

// StartTracker returns a started tracker. Close it when done.
func (c *Ctx) StartTracker(ctx context.Context) *connectivity.Tracker {
	tr := c.NewTracker()
	tr.Start(ctx)

	return tr
}

// NewEngine returns the sync engine driven by the tracker
func (c *Ctx) NewEngine(tr *connectivity.Tracker) *syncer.Engine {
	return syncer.New(c.Store, c.API, tr, syncer.Options{
		RequestTimeout: c.Config.RequestTimeout,
		State:          c.State,
		Clock:          c.Clock,
	})
}

// NewScheduler returns the automatic sync scheduler for the engine
func (c *Ctx) NewScheduler(e *syncer.Engine, onResult func(syncer.Trigger, syncer.Result)) *syncer.Scheduler {
	return syncer.NewScheduler(e, syncer.SchedulerOptions{
		InitialDelay: c.Config.InitialSyncDelay,
		Interval:     c.Config.AutoSyncInterval,
		OnResult:     onResult,
	})
}

// LoadCollections returns every collection loaded from the store
func (c *Ctx) LoadCollections(ctx context.Context, conn collections.Connectivity) (*collections.Set, error) {
	set := collections.NewSet(c.Store, conn, c.Clock)
	if err := set.Load(ctx); err != nil {
		return nil, errors.Wrap(err, "loading collections")
	}

	return set, nil
}

// newAPI returns the configured remote. The simulated remote starts from
// the records of the local store as they were before the queued changes,
// so that replaying the queue and pulling a snapshot behave as they would
// against a server.
func newAPI(ctx context.Context, version string, cf config.Config, store *database.Store, c clock.Clock) (client.API, error) {
	if cf.Remote == config.RemoteHTTP {
		return client.NewHTTP(cf.APIEndpoint, version), nil
	}

	sim := client.NewSimulated(client.SimulatedOptions{
		Latency:     cf.Latency,
		FailureRate: cf.FailureRate,
		Clock:       c,
	})

	data, err := remoteView(ctx, store)
	if err != nil {
		return nil, errors.Wrap(err, "preparing the simulated remote")
	}
	for _, coll := range database.Collections {
		if err := sim.Load(coll, data[coll]); err != nil {
			return nil, errors.Wrapf(err, "preparing the simulated %s", coll)
		}
	}

	return sim, nil
}

// remoteView returns the local records without those created offline, and
// with a stub for every record deleted offline. Mutations already synced
// are part of the remote.
func remoteView(ctx context.Context, store *database.Store) (map[string][]database.Record, error) {
	entries, err := store.ListQueue(ctx)
	if err != nil && !errors.Is(err, database.ErrStorageUnavailable) {
		return nil, errors.Wrap(err, "listing queued changes")
	}

	created := map[string]bool{}
	deleted := map[string][]string{}
	for _, e := range entries {
		if e.Synced {
			continue
		}
		key := e.StoreName + "/" + e.Data.ID()

		switch e.Action {
		case database.ActionCreate:
			created[key] = true
		case database.ActionDelete:
			if !created[key] {
				deleted[e.StoreName] = append(deleted[e.StoreName], e.Data.ID())
			}
		}
	}

	ret := map[string][]database.Record{}
	for _, coll := range database.Collections {
		present := map[string]bool{}
		for _, r := range store.GetAll(ctx, coll) {
			if created[coll+"/"+r.ID()] {
				continue
			}
			present[r.ID()] = true
			ret[coll] = append(ret[coll], r)
		}

		for _, id := range deleted[coll] {
			if !present[id] {
				present[id] = true
				ret[coll] = append(ret[coll], database.Record{"id": id})
			}
		}
	}

	return ret, nil
}

// Session starts a tracker and loads the collections against it, so that
// writes made while offline are queued. Close the tracker when done.
func (c *Ctx) Session(ctx context.Context) (*collections.Set, *connectivity.Tracker, error) {
	tr := c.StartTracker(ctx)

	set, err := c.LoadCollections(ctx, tr)
	if err != nil {
		tr.Close()
		return nil, nil, err
	}

	return set, tr, nil
}

// UseEndpoint switches the context to the kropland server at the endpoint
func (c *Ctx) UseEndpoint(endpoint string) {
	c.Config.Remote = config.RemoteHTTP
	c.Config.APIEndpoint = endpoint
	c.API = client.NewHTTP(endpoint, c.Version)
}
