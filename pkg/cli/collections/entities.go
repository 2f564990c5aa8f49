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
	"sort"
	"time"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/kropland/kropland/pkg/clock"
)

// Clientes is the collection of clientes
type Clientes struct {
	*Collection[models.Cliente]
}

// NewClientes returns the clientes collection
func NewClientes(store *database.Store, conn Connectivity, c clock.Clock) *Clientes {
	return &Clientes{New[models.Cliente](store, conn, c)}
}

// Filter returns the clientes matching f
func (c *Clientes) Filter(f models.FiltrosCliente) []models.Cliente {
	return c.Where(f.Match)
}

// Fincas is the collection of fincas
type Fincas struct {
	*Collection[models.Finca]
}

// NewFincas returns the fincas collection
func NewFincas(store *database.Store, conn Connectivity, c clock.Clock) *Fincas {
	return &Fincas{New[models.Finca](store, conn, c)}
}

// Filter returns the fincas matching f
func (c *Fincas) Filter(f models.FiltrosFinca) []models.Finca {
	return c.Where(f.Match)
}

// ByCliente returns the fincas of a cliente
func (c *Fincas) ByCliente(clienteID string) []models.Finca {
	return c.Where(func(f models.Finca) bool {
		return f.ClienteID == clienteID
	})
}

// Visitas is the collection of visitas
type Visitas struct {
	*Collection[models.Visita]
}

// NewVisitas returns the visitas collection
func NewVisitas(store *database.Store, conn Connectivity, c clock.Clock) *Visitas {
	return &Visitas{New[models.Visita](store, conn, c)}
}

// Filter returns the visitas matching f, latest first
func (c *Visitas) Filter(f models.FiltrosVisita) []models.Visita {
	ret := c.Where(f.Match)
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Fecha > ret[j].Fecha
	})

	return ret
}

// Proximas returns the pending or confirmed visitas of the next dias days
func (c *Visitas) Proximas(now time.Time, dias int) []models.Visita {
	abiertas := c.Where(func(v models.Visita) bool {
		return v.Estado == models.EstadoPendiente || v.Estado == models.EstadoConfirmada
	})

	return models.Proximas(abiertas, now, dias)
}

// Actividades is the collection of actividades
type Actividades struct {
	*Collection[models.Actividad]
}

// NewActividades returns the actividades collection
func NewActividades(store *database.Store, conn Connectivity, c clock.Clock) *Actividades {
	return &Actividades{New[models.Actividad](store, conn, c)}
}

// CreateForFinca creates the actividad with its cost per hectare computed
// from the surface of the finca
func (c *Actividades) CreateForFinca(ctx context.Context, a models.Actividad, superficie float64) (models.Actividad, error) {
	a.CostoPorHa = models.CostoPorHa(a.CostoTotal, superficie)
	return c.Create(ctx, a)
}

// ByFinca returns the actividades of a finca, latest first
func (c *Actividades) ByFinca(fincaID string) []models.Actividad {
	ret := c.Where(func(a models.Actividad) bool {
		return a.FincaID == fincaID
	})
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Fecha > ret[j].Fecha
	})

	return ret
}

// Between returns the actividades of a finca dated within the inclusive
// range of dates, given in models.DateLayout
func (c *Actividades) Between(fincaID, desde, hasta string) []models.Actividad {
	return c.Where(func(a models.Actividad) bool {
		if a.FincaID != fincaID {
			return false
		}

		fecha := a.Fecha
		if len(fecha) > len(models.DateLayout) {
			fecha = fecha[:len(models.DateLayout)]
		}

		return fecha >= desde && fecha <= hasta
	})
}

// Costos adds up the cost of the actividades of a finca
func (c *Actividades) Costos(fincaID string) models.Costos {
	return models.CostosTotales(c.Where(func(a models.Actividad) bool {
		return a.FincaID == fincaID
	}))
}
