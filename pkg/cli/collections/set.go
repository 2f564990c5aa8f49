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

package collections

import (
	"context"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/clock"
)

// Set holds one collection of each kind
type Set struct {
	Clientes    *Clientes
	Fincas      *Fincas
	Visitas     *Visitas
	Actividades *Actividades
}

// NewSet returns the collections backed by the store
func NewSet(store *database.Store, conn Connectivity, c clock.Clock) *Set {
	return &Set{
		Clientes:    NewClientes(store, conn, c),
		Fincas:      NewFincas(store, conn, c),
		Visitas:     NewVisitas(store, conn, c),
		Actividades: NewActividades(store, conn, c),
	}
}

// Load loads every collection and returns the first error. Collections that
// failed keep working in memory.
func (s *Set) Load(ctx context.Context) error {
	var ret error
	for _, load := range []func(context.Context) error{
		s.Clientes.Load,
		s.Fincas.Load,
		s.Visitas.Load,
		s.Actividades.Load,
	} {
		if err := load(ctx); err != nil && ret == nil {
			ret = err
		}
	}

	return ret
}

// Mutator is the untyped interface shared by every collection
type Mutator interface {
	Name() string
	CreateRecord(ctx context.Context, rec database.Record) (database.Record, error)
	UpdateRecord(ctx context.Context, id string, changes map[string]interface{}) (database.Record, error)
	Delete(ctx context.Context, id string) error
	Records() []database.Record
	Record(id string) (database.Record, bool)
}

// ByName returns the collection with the given store name
func (s *Set) ByName(name string) (Mutator, bool) {
	switch name {
	case database.CollectionClientes:
		return s.Clientes, true
	case database.CollectionFincas:
		return s.Fincas, true
	case database.CollectionVisitas:
		return s.Visitas, true
	case database.CollectionActividades:
		return s.Actividades, true
	}

	return nil, false
}
