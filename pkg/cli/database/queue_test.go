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
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

func TestEnqueueMutation(t *testing.T) {
	s := InitTestMemoryDB(t)
	c := clock.NewMock()
	s.Clock = c
	ctx := context.Background()

	MustEnqueue(t, s, ActionCreate, CollectionClientes, Record{"id": "c1", "nombre": "Ana"})
	c.Advance(time.Second)
	MustEnqueue(t, s, ActionUpdate, CollectionClientes, UpdatePayload("c1", Record{"telefono": "600111222"}))
	c.Advance(time.Second)
	MustEnqueue(t, s, ActionDelete, CollectionClientes, DeletePayload("c1"))

	entries := MustListQueue(t, s)
	assert.Equalf(t, len(entries), 3, "queue length mismatch")

	start := clock.NewMock().Now()
	expected := []struct {
		action    Action
		data      Record
		timestamp time.Time
	}{
		{ActionCreate, Record{"id": "c1", "nombre": "Ana"}, start},
		{ActionUpdate, Record{"id": "c1", "cambios": map[string]interface{}{"telefono": "600111222"}}, start.Add(time.Second)},
		{ActionDelete, Record{"id": "c1"}, start.Add(2 * time.Second)},
	}
	for i, e := range expected {
		got := entries[i]
		assert.Equal(t, got.Action, e.action, "action mismatch")
		assert.Equal(t, got.StoreName, CollectionClientes, "store name mismatch")
		assert.DeepEqual(t, got.Data, e.data, "payload mismatch")
		assert.Equal(t, got.Timestamp.Equal(e.timestamp), true, "timestamp mismatch")
		assert.Equal(t, got.Synced, false, "synced mismatch")
		if i > 0 {
			assert.Equal(t, got.Seq > entries[i-1].Seq, true, "sequence should increase")
		}
	}

	assert.DeepEqual(t, entries[1].Changes(), Record{"telefono": "600111222"}, "changes mismatch")

	n, err := s.QueueLength(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, n, 3, "queue length mismatch")
}

func TestEnqueueMutationInvalid(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()

	err := s.EnqueueMutation(ctx, Action("upsert"), CollectionClientes, Record{"id": "c1"})
	assert.NotEqual(t, err, nil, "invalid action should fail")

	err = s.EnqueueMutation(ctx, ActionCreate, "tractores", Record{"id": "t1"})
	assert.Equal(t, errors.Is(err, ErrUnknownCollection), true, "unknown collection should fail")

	assert.Equal(t, len(MustListQueue(t, s)), 0, "queue should be empty")
}

func TestClearQueue(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()
	MustEnqueue(t, s, ActionCreate, CollectionFincas, Record{"id": "f1"})
	MustEnqueue(t, s, ActionCreate, CollectionVisitas, Record{"id": "v1"})

	if err := s.ClearQueue(ctx); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(MustListQueue(t, s)), 0, "queue should be empty")

	// sequence numbers keep increasing after a clear
	MustEnqueue(t, s, ActionCreate, CollectionFincas, Record{"id": "f2"})
	entries := MustListQueue(t, s)
	assert.Equal(t, entries[0].Seq, int64(3), "seq mismatch")
}

func TestMarkSynced(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()
	MustEnqueue(t, s, ActionDelete, CollectionVisitas, DeletePayload("v1"))
	MustEnqueue(t, s, ActionDelete, CollectionVisitas, DeletePayload("v2"))

	entries := MustListQueue(t, s)
	if err := s.MarkSynced(ctx, entries[0].Seq); err != nil {
		t.Fatal(err)
	}

	entries = MustListQueue(t, s)
	assert.Equal(t, len(entries), 2, "synced entries should be kept")
	assert.Equal(t, entries[0].Synced, true, "first entry should be synced")
	assert.Equal(t, entries[1].Synced, false, "second entry should be pending")

	n, err := s.QueueLength(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, n, 1, "only pending entries should be counted")

	err = s.MarkSynced(ctx, 999)
	assert.NotEqual(t, err, nil, "marking an unknown entry should fail")
}

func TestMarkCreated(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()

	MustPut(t, s, CollectionClientes, Record{"id": "c0", "nombre": "Luis"})
	MustPut(t, s, CollectionClientes, Record{"id": "local-ana", "nombre": "Ana"})
	MustPut(t, s, CollectionFincas, Record{"id": "local-finca", "clienteId": "local-ana"})
	MustEnqueue(t, s, ActionCreate, CollectionClientes, Record{"id": "local-ana", "nombre": "Ana"})
	MustEnqueue(t, s, ActionUpdate, CollectionClientes, UpdatePayload("local-ana", Record{"telefono": "600111222"}))
	MustEnqueue(t, s, ActionCreate, CollectionFincas, Record{"id": "local-finca", "clienteId": "local-ana"})

	entries := MustListQueue(t, s)
	if err := s.MarkCreated(ctx, entries[0].Seq, CollectionClientes, "local-ana", "remote-ana"); err != nil {
		t.Fatal(err)
	}

	entries = MustListQueue(t, s)
	assert.Equal(t, entries[0].Synced, true, "the create should be synced")
	assert.DeepEqual(t, entries[1].Data, Record{"id": "remote-ana", "cambios": map[string]interface{}{"telefono": "600111222"}}, "pending update should target the remote id")
	assert.DeepEqual(t, entries[2].Data, Record{"id": "local-finca", "clienteId": "remote-ana"}, "pending create should reference the remote id")

	assert.DeepEqual(t, s.GetAll(ctx, CollectionClientes), []Record{
		{"id": "c0", "nombre": "Luis"},
		{"id": "remote-ana", "nombre": "Ana"},
	}, "clientes mismatch")
	old, err := s.GetOne(ctx, CollectionClientes, "local-ana")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, old == nil, true, "the local id should be gone")
	assert.DeepEqual(t, s.GetAll(ctx, CollectionFincas), []Record{{"id": "local-finca", "clienteId": "remote-ana"}}, "fincas mismatch")
}

func TestMarkCreatedSameID(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()
	MustPut(t, s, CollectionClientes, Record{"id": "c1"})
	MustEnqueue(t, s, ActionCreate, CollectionClientes, Record{"id": "c1"})

	entries := MustListQueue(t, s)
	if err := s.MarkCreated(ctx, entries[0].Seq, CollectionClientes, "c1", "c1"); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, MustListQueue(t, s)[0].Synced, true, "synced mismatch")
	assert.DeepEqual(t, s.GetAll(ctx, CollectionClientes), []Record{{"id": "c1"}}, "clientes mismatch")
}

func TestPutQueued(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()

	rec := Record{"id": "c1", "nombre": "Ana"}
	if err := s.PutQueued(ctx, CollectionClientes, rec, &Mutation{Action: ActionCreate, Payload: rec}); err != nil {
		t.Fatal(err)
	}
	if err := s.PutQueued(ctx, CollectionClientes, Record{"id": "c2"}, nil); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, len(s.GetAll(ctx, CollectionClientes)), 2, "records mismatch")
	entries := MustListQueue(t, s)
	assert.Equal(t, len(entries), 1, "only the mutation given should be queued")
	assert.DeepEqual(t, entries[0].Data, rec, "payload mismatch")
}

func TestPutQueuedRollsBack(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()

	err := s.PutQueued(ctx, CollectionClientes, Record{"id": "c1"}, &Mutation{Action: Action("upsert"), Payload: Record{"id": "c1"}})
	assert.NotEqual(t, err, nil, "error should not be nil")

	got, err := s.GetOne(ctx, CollectionClientes, "c1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, got == nil, true, "the record should not be saved without its mutation")
	assert.Equal(t, len(MustListQueue(t, s)), 0, "queue should be empty")
}

func TestDeleteQueuedRollsBack(t *testing.T) {
	s := InitTestMemoryDB(t)
	ctx := context.Background()
	MustPut(t, s, CollectionFincas, Record{"id": "f1"})

	err := s.DeleteQueued(ctx, CollectionFincas, "f1", &Mutation{Action: Action("purge"), Payload: DeletePayload("f1")})
	assert.NotEqual(t, err, nil, "error should not be nil")
	assert.DeepEqual(t, s.GetAll(ctx, CollectionFincas), []Record{{"id": "f1"}}, "the record should be kept")

	if err := s.DeleteQueued(ctx, CollectionFincas, "f1", &Mutation{Action: ActionDelete, Payload: DeletePayload("f1")}); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, len(s.GetAll(ctx, CollectionFincas)), 0, "the record should be deleted")
	assert.Equal(t, len(MustListQueue(t, s)), 1, "the delete should be queued")
}
