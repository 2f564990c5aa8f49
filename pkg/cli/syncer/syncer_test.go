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
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/cli/client"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/state"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

func TestSyncOffline(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	tr, _ := startTracker(t, false)
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c1"})

	res := New(store, api, tr, Options{}).Sync(context.Background())

	assert.Equal(t, res.Skipped, true, "Skipped mismatch")
	assert.Equal(t, res.Reason, ReasonOffline, "Reason mismatch")
	assert.Equal(t, len(api.Calls()), 0, "no call should be made")
	assert.Equal(t, len(database.MustListQueue(t, store)), 1, "queue should be kept")
	assert.Equal(t, tr.GetState().IsSyncing, false, "IsSyncing mismatch")
}

func TestSyncReplayOrder(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	tr, _ := startTracker(t, true)

	coll := database.CollectionClientes
	database.MustEnqueue(t, store, database.ActionCreate, coll, database.Record{"id": "c1", "nombre": "Ana"})
	database.MustEnqueue(t, store, database.ActionUpdate, coll, database.UpdatePayload("c1", database.Record{"nombre": "Ana María"}))
	database.MustEnqueue(t, store, database.ActionUpdate, coll, database.UpdatePayload("c1", database.Record{"telefono": "600111222"}))
	database.MustEnqueue(t, store, database.ActionDelete, coll, database.DeletePayload("c1"))

	res := New(store, api, tr, Options{}).Sync(context.Background())

	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	assert.Equal(t, res.Replayed, 4, "Replayed mismatch")

	expected := []apiCall{
		{Method: "create", Coll: coll, ID: "c1", Data: database.Record{"id": "c1", "nombre": "Ana"}},
		{Method: "update", Coll: coll, ID: "c1", Data: database.Record{"nombre": "Ana María"}},
		{Method: "update", Coll: coll, ID: "c1", Data: database.Record{"telefono": "600111222"}},
		{Method: "delete", Coll: coll, ID: "c1"},
	}
	assert.DeepEqual(t, api.mutationCalls(), expected, "calls mismatch")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be cleared")

	var lists int
	for _, c := range api.Calls() {
		if c.Method == "list" {
			lists++
		}
	}
	assert.Equal(t, lists, len(database.Collections), "every collection should be fetched")
}

func TestSyncMutualExclusion(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	api.block = make(chan struct{})
	tr, _ := startTracker(t, true)
	e := New(store, api, tr, Options{})

	var wg sync.WaitGroup
	var first Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = e.Sync(context.Background())
	}()

	waitFor(t, "the first sync to fetch", func() bool {
		return len(api.Calls()) == len(database.Collections)
	})
	assert.Equal(t, tr.GetState().IsSyncing, true, "IsSyncing mismatch")

	second := e.Sync(context.Background())

	assert.Equal(t, second.Skipped, true, "second sync should be skipped")
	assert.Equal(t, second.Reason, ReasonInProgress, "Reason mismatch")
	assert.Equal(t, len(api.Calls()), len(database.Collections), "second sync should not call the remote")

	close(api.block)
	wg.Wait()

	assert.Equal(t, first.Skipped, false, "first sync should run")
	assert.Equal(t, first.Err, nil, "first sync error mismatch")
	assert.Equal(t, len(api.Calls()), len(database.Collections), "call count mismatch")
	assert.Equal(t, tr.GetState().IsSyncing, false, "IsSyncing should be released")
}

func TestSyncPartialFailure(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	api.fail["fincas:update"] = true
	api.lists[database.CollectionClientes] = []database.Record{{"id": "remote"}}
	tr, _ := startTracker(t, true)
	sf := state.New(filepath.Join(t.TempDir(), "state.yml"))

	database.MustPut(t, store, database.CollectionClientes, database.Record{"id": "c1"})
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c1"})
	database.MustEnqueue(t, store, database.ActionUpdate, database.CollectionFincas, database.UpdatePayload("f1", database.Record{"cultivo": "olivo"}))
	database.MustEnqueue(t, store, database.ActionDelete, database.CollectionVisitas, database.DeletePayload("v1"))

	res := New(store, api, tr, Options{State: sf}).Sync(context.Background())

	assert.Equal(t, res.Replayed, 2, "Replayed mismatch")
	assert.DeepEqual(t, res.Failed, []string{"fincas:update"}, "Failed mismatch")
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	assert.Equal(t, res.LastSync == nil, true, "LastSync should not be set")

	assert.Equal(t, len(api.mutationCalls()), 3, "replay should continue after a failure")
	assert.Equal(t, len(api.Calls()), 3, "snapshot should not be fetched")
	assert.Equal(t, len(database.MustListQueue(t, store)), 3, "queue should be kept whole")
	assert.DeepEqual(t, store.GetAll(context.Background(), database.CollectionClientes), []database.Record{{"id": "c1"}}, "local data mismatch")

	st := tr.GetState()
	assert.Equal(t, st.IsSyncing, false, "IsSyncing mismatch")
	if st.SyncError == nil || !strings.Contains(*st.SyncError, "fincas:update") {
		t.Fatalf("SyncError should name the failed key, got %v", st.SyncError)
	}
	assert.Equal(t, st.LastSync == nil, true, "tracker LastSync should not be set")

	ls, err := sf.LastSync()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ls == nil, true, "state LastSync should not be set")
}

func TestSyncFailedKeys(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	api.fail["clientes:create"] = true
	api.fail["visitas:delete"] = true
	tr, _ := startTracker(t, true)

	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c1"})
	database.MustEnqueue(t, store, database.ActionDelete, database.CollectionVisitas, database.DeletePayload("v1"))
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c2"})

	res := New(store, api, tr, Options{}).Sync(context.Background())

	assert.DeepEqual(t, res.Failed, []string{"clientes:create", "visitas:delete"}, "Failed mismatch")
	assert.Equal(t, res.Err.Error(), "replaying queued changes failed for clientes:create, visitas:delete", "error message mismatch")
}

func TestSyncSnapshotKeepsLocalData(t *testing.T) {
	ctx := context.Background()
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	tr, _ := startTracker(t, true)

	database.MustPut(t, store, database.CollectionClientes, database.Record{"id": "c1", "nombre": "Local"})
	fincas := []database.Record{{"id": "f1"}, {"id": "f2"}, {"id": "f3"}}
	for _, f := range fincas {
		database.MustPut(t, store, database.CollectionFincas, f)
	}
	database.MustPut(t, store, database.CollectionVisitas, database.Record{"id": "v1"})
	database.MustPut(t, store, database.CollectionActividades, database.Record{"id": "a1"})

	api.lists[database.CollectionClientes] = []database.Record{{"id": "c9", "nombre": "Remota"}}
	api.listErr[database.CollectionFincas] = client.ErrRemoteUnavailable
	api.lists[database.CollectionVisitas] = []database.Record{{"id": "v8"}, {"id": "v9"}}

	res := New(store, api, tr, Options{}).Sync(ctx)

	assert.Equal(t, res.Err, nil, "Err mismatch")
	assert.DeepEqual(t, res.Refreshed, []string{database.CollectionClientes, database.CollectionVisitas}, "Refreshed mismatch")
	assert.DeepEqual(t, store.GetAll(ctx, database.CollectionClientes), []database.Record{{"id": "c9", "nombre": "Remota"}}, "clientes mismatch")
	assert.DeepEqual(t, store.GetAll(ctx, database.CollectionFincas), fincas, "fincas should keep their records")
	assert.DeepEqual(t, store.GetAll(ctx, database.CollectionVisitas), []database.Record{{"id": "v8"}, {"id": "v9"}}, "visitas mismatch")
	assert.DeepEqual(t, store.GetAll(ctx, database.CollectionActividades), []database.Record{{"id": "a1"}}, "actividades should keep their records")
}

func TestSyncRecordsLastSync(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	tr, _ := startTracker(t, true)
	c := clock.NewMock()
	sf := state.New(filepath.Join(t.TempDir(), "state.yml"))

	api.fail["clientes:create"] = true
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c1"})

	e := New(store, api, tr, Options{State: sf, Clock: c})
	res := e.Sync(context.Background())
	if res.Err == nil {
		t.Fatal("expected the first sync to fail")
	}

	api.mu.Lock()
	api.fail = map[string]bool{}
	api.mu.Unlock()

	res = e.Sync(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}

	now := c.Now()
	assert.Equal(t, *res.LastSync, now, "Result.LastSync mismatch")

	st := tr.GetState()
	assert.Equal(t, st.SyncError == nil, true, "SyncError should be cleared")
	assert.Equal(t, *st.LastSync, now, "tracker LastSync mismatch")

	ls, err := sf.LastSync()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ls.Equal(now), true, "persisted LastSync mismatch")
}

func TestSyncRequestTimeout(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := newFakeAPI()
	api.block = make(chan struct{})
	defer close(api.block)
	tr, _ := startTracker(t, true)

	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "c1"})

	res := New(store, api, tr, Options{RequestTimeout: 20 * time.Millisecond}).Sync(context.Background())

	assert.DeepEqual(t, res.Failed, []string{"clientes:create"}, "a timed out call should fail its entry")
	assert.Equal(t, len(database.MustListQueue(t, store)), 1, "queue should be kept")
	assert.Equal(t, tr.GetState().IsSyncing, false, "IsSyncing mismatch")
}

func TestSyncSimulatedRemote(t *testing.T) {
	ctx := context.Background()
	store := database.InitTestMemoryDB(t)
	api := client.NewSimulated(client.SimulatedOptions{})
	tr, probe := startTracker(t, false)

	ana := database.Record{"id": "local-ana", "nombre": "Ana"}
	database.MustPut(t, store, database.CollectionClientes, ana)
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, ana)

	results := make(chan Result, 4)
	s := NewScheduler(New(store, api, tr, Options{}), SchedulerOptions{
		InitialDelay: time.Hour,
		Interval:     time.Hour,
		OnResult: func(trigger Trigger, res Result) {
			if trigger == TriggerReconnect {
				results <- res
			}
		},
	})
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	probe.Set(true)
	tr.SetOnline(true)

	var res Result
	select {
	case res = <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the reconnect sync")
	}
	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}

	remote, err := api.List(ctx, database.CollectionClientes)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, len(remote), 1, "remote should have one client")
	assert.Equal(t, remote[0]["nombre"], "Ana", "remote nombre mismatch")
	assert.NotEqual(t, remote[0].ID(), "local-ana", "remote should assign its own id")

	local := store.GetAll(ctx, database.CollectionClientes)
	assert.Equal(t, len(local), 1, "local should have one client")
	assert.Equal(t, local[0].ID(), remote[0].ID(), "local should hold the server-assigned id")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be empty")
}

// flakyAPI fails the mutations named by collection:method and records the
// mutations it lets through
type flakyAPI struct {
	client.API

	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *flakyAPI) check(coll, method, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := coll + ":" + method
	if f.fail[key] {
		return errors.Wrap(client.ErrRemoteUnavailable, "injected failure")
	}
	f.calls = append(f.calls, key+":"+id)

	return nil
}

func (f *flakyAPI) Create(ctx context.Context, coll string, data database.Record) (database.Record, error) {
	if err := f.check(coll, "create", data.ID()); err != nil {
		return nil, err
	}
	return f.API.Create(ctx, coll, data)
}

func (f *flakyAPI) Update(ctx context.Context, coll, id string, partial database.Record) (database.Record, error) {
	if err := f.check(coll, "update", id); err != nil {
		return nil, err
	}
	return f.API.Update(ctx, coll, id, partial)
}

func (f *flakyAPI) Delete(ctx context.Context, coll, id string) error {
	if err := f.check(coll, "delete", id); err != nil {
		return err
	}
	return f.API.Delete(ctx, coll, id)
}

func (f *flakyAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.calls...)
}

func mustList(t *testing.T, api client.API, coll string) []database.Record {
	t.Helper()

	recs, err := api.List(context.Background(), coll)
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

func TestSyncOfflineCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := database.InitTestMemoryDB(t)
	api := client.NewSimulated(client.SimulatedOptions{})
	tr, _ := startTracker(t, true)

	coll := database.CollectionClientes
	ana := database.Record{"id": "local-ana", "nombre": "Ana"}
	database.MustPut(t, store, coll, database.Merge(ana, database.Record{"telefono": "600111222"}))
	database.MustEnqueue(t, store, database.ActionCreate, coll, ana)
	database.MustEnqueue(t, store, database.ActionUpdate, coll, database.UpdatePayload("local-ana", database.Record{"telefono": "600111222"}))
	e := New(store, api, tr, Options{})

	res := e.Sync(ctx)

	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	assert.Equal(t, res.Replayed, 2, "Replayed mismatch")

	remote := mustList(t, api, coll)
	assert.Equal(t, len(remote), 1, "remote should have one client")
	assert.NotEqual(t, remote[0].ID(), "local-ana", "remote should assign its own id")
	assert.Equal(t, remote[0]["telefono"], "600111222", "the update should reach the created record")

	local := store.GetAll(ctx, coll)
	assert.Equal(t, len(local), 1, "local should have one client")
	assert.Equal(t, local[0].ID(), remote[0].ID(), "local id mismatch")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be empty")

	res = e.Sync(ctx)
	if res.Err != nil {
		t.Fatalf("unexpected error on the second sync: %s", res.Err)
	}
	assert.Equal(t, len(mustList(t, api, coll)), 1, "a second sync should not duplicate the client")
}

func TestSyncOfflineCreateThenDelete(t *testing.T) {
	ctx := context.Background()
	store := database.InitTestMemoryDB(t)
	api := client.NewSimulated(client.SimulatedOptions{})
	tr, _ := startTracker(t, true)

	coll := database.CollectionFincas
	database.MustEnqueue(t, store, database.ActionCreate, coll, database.Record{"id": "local-finca", "nombre": "Los Olivos"})
	database.MustEnqueue(t, store, database.ActionDelete, coll, database.DeletePayload("local-finca"))

	res := New(store, api, tr, Options{}).Sync(ctx)

	if res.Err != nil {
		t.Fatalf("unexpected error: %s", res.Err)
	}
	assert.Equal(t, len(mustList(t, api, coll)), 0, "the created finca should be deleted on the remote")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be empty")
}

func TestSyncRetryAfterPartialFailure(t *testing.T) {
	ctx := context.Background()
	store := database.InitTestMemoryDB(t)
	sim := client.NewSimulated(client.SimulatedOptions{})
	if err := sim.Load(database.CollectionVisitas, []database.Record{{"id": "v1"}}); err != nil {
		t.Fatal(err)
	}
	if err := sim.Load(database.CollectionFincas, []database.Record{{"id": "f1", "cultivo": "Naranjo"}}); err != nil {
		t.Fatal(err)
	}
	api := &flakyAPI{API: sim, fail: map[string]bool{"fincas:update": true}}
	tr, _ := startTracker(t, true)

	database.MustEnqueue(t, store, database.ActionDelete, database.CollectionVisitas, database.DeletePayload("v1"))
	database.MustEnqueue(t, store, database.ActionCreate, database.CollectionClientes, database.Record{"id": "local-luis", "nombre": "Luis"})
	database.MustEnqueue(t, store, database.ActionUpdate, database.CollectionFincas, database.UpdatePayload("f1", database.Record{"cultivo": "Olivo"}))
	e := New(store, api, tr, Options{})

	res := e.Sync(ctx)

	assert.DeepEqual(t, res.Failed, []string{"fincas:update"}, "Failed mismatch")
	queue := database.MustListQueue(t, store)
	assert.Equal(t, len(queue), 3, "queue should be kept")
	assert.Equal(t, queue[0].Synced, true, "the delete should be marked as synced")
	assert.Equal(t, queue[1].Synced, true, "the create should be marked as synced")
	assert.Equal(t, queue[2].Synced, false, "the failed update should stay pending")
	n, err := store.QueueLength(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, n, 1, "pending length mismatch")

	api.mu.Lock()
	api.fail = map[string]bool{}
	api.mu.Unlock()

	res = e.Sync(ctx)

	if res.Err != nil {
		t.Fatalf("unexpected error on the retry: %s", res.Err)
	}
	assert.Equal(t, res.Replayed, 1, "only the failed mutation should be sent again")
	assert.DeepEqual(t, api.Calls(), []string{"visitas:delete:v1", "clientes:create:local-luis", "fincas:update:f1"}, "calls mismatch")
	assert.Equal(t, len(mustList(t, sim, database.CollectionClientes)), 1, "the client should be created once")
	assert.Equal(t, mustList(t, sim, database.CollectionFincas)[0]["cultivo"], "Olivo", "finca update mismatch")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be cleared")
	assert.Equal(t, len(store.GetAll(ctx, database.CollectionClientes)), 1, "snapshot should be pulled")
}

func TestSyncDeleteAlreadyGone(t *testing.T) {
	store := database.InitTestMemoryDB(t)
	api := client.NewSimulated(client.SimulatedOptions{})
	tr, _ := startTracker(t, true)

	database.MustEnqueue(t, store, database.ActionDelete, database.CollectionVisitas, database.DeletePayload("v1"))

	res := New(store, api, tr, Options{}).Sync(context.Background())

	assert.Equal(t, res.Err, nil, "deleting a record the remote does not have should succeed")
	assert.Equal(t, len(database.MustListQueue(t, store)), 0, "queue should be cleared")
}
