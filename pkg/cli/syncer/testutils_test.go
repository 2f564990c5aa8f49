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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/cli/client"
	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/pkg/errors"
)

type apiCall struct {
	Method string
	Coll   string
	ID     string
	Data   database.Record
}

// fakeAPI records every call in order. Calls can be made to fail by
// collection:method key, and can be held until block is closed.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall

	lists   map[string][]database.Record
	listErr map[string]error
	fail    map[string]bool
	block   chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		lists:   map[string][]database.Record{},
		listErr: map[string]error{},
		fail:    map[string]bool{},
	}
}

func (f *fakeAPI) record(c apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, c)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	ret := make([]apiCall, len(f.calls))
	copy(ret, f.calls)
	return ret
}

func (f *fakeAPI) mutationCalls() []apiCall {
	ret := []apiCall{}
	for _, c := range f.Calls() {
		if c.Method != "list" {
			ret = append(ret, c)
		}
	}
	return ret
}

func (f *fakeAPI) wait(ctx context.Context, coll, method string) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return errors.Wrap(client.ErrRemoteUnavailable, ctx.Err().Error())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail[fmt.Sprintf("%s:%s", coll, method)] {
		return errors.Wrap(client.ErrRemoteUnavailable, "injected failure")
	}

	return nil
}

func (f *fakeAPI) List(ctx context.Context, coll string) ([]database.Record, error) {
	f.record(apiCall{Method: "list", Coll: coll})
	if err := f.wait(ctx, coll, "list"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErr[coll]; err != nil {
		return nil, err
	}

	ret := []database.Record{}
	for _, r := range f.lists[coll] {
		ret = append(ret, r.Clone())
	}
	return ret, nil
}

func (f *fakeAPI) Get(ctx context.Context, coll, id string) (database.Record, error) {
	f.record(apiCall{Method: "get", Coll: coll, ID: id})
	return nil, client.ErrNotFound
}

func (f *fakeAPI) Create(ctx context.Context, coll string, data database.Record) (database.Record, error) {
	f.record(apiCall{Method: string(database.ActionCreate), Coll: coll, ID: data.ID(), Data: data})
	if err := f.wait(ctx, coll, string(database.ActionCreate)); err != nil {
		return nil, err
	}

	return data, nil
}

func (f *fakeAPI) Update(ctx context.Context, coll, id string, partial database.Record) (database.Record, error) {
	f.record(apiCall{Method: string(database.ActionUpdate), Coll: coll, ID: id, Data: partial})
	if err := f.wait(ctx, coll, string(database.ActionUpdate)); err != nil {
		return nil, err
	}

	return partial, nil
}

func (f *fakeAPI) Delete(ctx context.Context, coll, id string) error {
	f.record(apiCall{Method: string(database.ActionDelete), Coll: coll, ID: id})
	return f.wait(ctx, coll, string(database.ActionDelete))
}

func startTracker(t *testing.T, online bool) (*connectivity.Tracker, *connectivity.StaticProbe) {
	probe := connectivity.NewStaticProbe(online)
	tr := connectivity.New(probe, connectivity.Options{PollInterval: time.Hour})
	tr.Start(context.Background())
	t.Cleanup(tr.Close)

	return tr, probe
}

func waitFor(t *testing.T, message string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("timed out waiting: %s", message)
}
