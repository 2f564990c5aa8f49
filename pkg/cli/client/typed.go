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

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/pkg/errors"
)

func list[T models.Entity](ctx context.Context, api API) ([]T, error) {
	var zero T
	recs, err := api.List(ctx, zero.CollectionName())
	if err != nil {
		return nil, err
	}

	ret := make([]T, 0, len(recs))
	for _, r := range recs {
		var v T
		if err := database.FromRecord(r, &v); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", r.ID())
		}
		ret = append(ret, v)
	}

	return ret, nil
}

func decode[T models.Entity](r database.Record, err error) (T, error) {
	var ret T
	if err != nil {
		return ret, err
	}
	if err := database.FromRecord(r, &ret); err != nil {
		return ret, errors.Wrapf(err, "decoding %s", r.ID())
	}

	return ret, nil
}

func get[T models.Entity](ctx context.Context, api API, id string) (T, error) {
	var zero T
	return decode[T](api.Get(ctx, zero.CollectionName(), id))
}

func create[T models.Entity](ctx context.Context, api API, v T) (T, error) {
	r, err := database.ToRecord(v)
	if err != nil {
		return v, err
	}
	delete(r, "id")

	return decode[T](api.Create(ctx, v.CollectionName(), r))
}

func update[T models.Entity](ctx context.Context, api API, id string, partial database.Record) (T, error) {
	var zero T
	return decode[T](api.Update(ctx, zero.CollectionName(), id, partial))
}

// GetClientes lists the clientes
func GetClientes(ctx context.Context, api API) ([]models.Cliente, error) {
	return list[models.Cliente](ctx, api)
}

// GetCliente gets a cliente by id
func GetCliente(ctx context.Context, api API, id string) (models.Cliente, error) {
	return get[models.Cliente](ctx, api, id)
}

// CreateCliente creates a cliente. The service assigns the id.
func CreateCliente(ctx context.Context, api API, c models.Cliente) (models.Cliente, error) {
	return create(ctx, api, c)
}

// UpdateCliente merges the fields into a cliente
func UpdateCliente(ctx context.Context, api API, id string, partial database.Record) (models.Cliente, error) {
	return update[models.Cliente](ctx, api, id, partial)
}

// DeleteCliente deletes a cliente
func DeleteCliente(ctx context.Context, api API, id string) error {
	return api.Delete(ctx, database.CollectionClientes, id)
}

// GetFincas lists the fincas
func GetFincas(ctx context.Context, api API) ([]models.Finca, error) {
	return list[models.Finca](ctx, api)
}

// GetFinca gets a finca by id
func GetFinca(ctx context.Context, api API, id string) (models.Finca, error) {
	return get[models.Finca](ctx, api, id)
}

// CreateFinca creates a finca. The service assigns the id.
func CreateFinca(ctx context.Context, api API, f models.Finca) (models.Finca, error) {
	return create(ctx, api, f)
}

// UpdateFinca merges the fields into a finca
func UpdateFinca(ctx context.Context, api API, id string, partial database.Record) (models.Finca, error) {
	return update[models.Finca](ctx, api, id, partial)
}

// DeleteFinca deletes a finca
func DeleteFinca(ctx context.Context, api API, id string) error {
	return api.Delete(ctx, database.CollectionFincas, id)
}

// GetVisitas lists the visitas
func GetVisitas(ctx context.Context, api API) ([]models.Visita, error) {
	return list[models.Visita](ctx, api)
}

// GetVisita gets a visita by id
func GetVisita(ctx context.Context, api API, id string) (models.Visita, error) {
	return get[models.Visita](ctx, api, id)
}

// CreateVisita creates a visita. The service assigns the id.
func CreateVisita(ctx context.Context, api API, v models.Visita) (models.Visita, error) {
	return create(ctx, api, v)
}

// UpdateVisita merges the fields into a visita
func UpdateVisita(ctx context.Context, api API, id string, partial database.Record) (models.Visita, error) {
	return update[models.Visita](ctx, api, id, partial)
}

// DeleteVisita deletes a visita
func DeleteVisita(ctx context.Context, api API, id string) error {
	return api.Delete(ctx, database.CollectionVisitas, id)
}

// GetActividades lists the actividades
func GetActividades(ctx context.Context, api API) ([]models.Actividad, error) {
	return list[models.Actividad](ctx, api)
}

// GetActividad gets an actividad by id
func GetActividad(ctx context.Context, api API, id string) (models.Actividad, error) {
	return get[models.Actividad](ctx, api, id)
}

// CreateActividad creates an actividad. The service assigns the id.
func CreateActividad(ctx context.Context, api API, a models.Actividad) (models.Actividad, error) {
	return create(ctx, api, a)
}

// UpdateActividad merges the fields into an actividad
func UpdateActividad(ctx context.Context, api API, id string, partial database.Record) (models.Actividad, error) {
	return update[models.Actividad](ctx, api, id, partial)
}

// DeleteActividad deletes an actividad
func DeleteActividad(ctx context.Context, api API, id string) error {
	return api.Delete(ctx, database.CollectionActividades, id)
}
