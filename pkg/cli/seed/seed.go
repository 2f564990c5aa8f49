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

// Package seed writes the demo data of a new installation
package seed

import (
	"context"
	"time"

	"github.com/kropland/kropland/pkg/cli/consts"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/pkg/errors"
)

// Result reports what Run wrote
type Result struct {
	// Skipped is true when the store was already seeded
	Skipped bool
	// SeededAt is when the store was seeded, by this run or a previous one
	SeededAt string
	// Counts is the number of records written per collection
	Counts map[string]int
}

// Options configures Run
type Options struct {
	// Force seeds again even if the store was seeded before
	Force bool
	Clock clock.Clock
}

func float(v float64) *float64 {
	return &v
}

// Clientes are the demo clientes
var Clientes = []models.Cliente{
	{
		ID: "cli-1", Nombre: "Juan", Apellidos: "García Martínez", DNI: "12345678A",
		Telefono: "600123456", Email: "juan.garcia@email.com",
		Poblacion: "Ciudad Real", Provincia: "Ciudad Real", ComunidadAutonoma: "Castilla-La Mancha",
		CodigoPostal: "13001", Direccion: "Calle Principal 123", Notas: "Cliente desde 2020",
		FechaAlta: "2020-01-15", Activo: true, Tipo: models.TipoClienteActivo,
	},
	{
		ID: "cli-2", Nombre: "María", Apellidos: "López Sánchez", DNI: "87654321B",
		Telefono: "600234567", Email: "maria.lopez@email.com",
		Poblacion: "Jaén", Provincia: "Jaén", ComunidadAutonoma: "Andalucía",
		CodigoPostal: "23001", Direccion: "Avenida Andalucía 45",
		FechaAlta: "2021-03-20", Activo: true, Tipo: models.TipoClienteActivo,
	},
	{
		ID: "cli-3", Nombre: "Pedro", Apellidos: "Fernández Ruiz", DNI: "11223344C",
		Telefono: "600345678", Email: "pedro.fernandez@email.com",
		Poblacion: "Córdoba", Provincia: "Córdoba", ComunidadAutonoma: "Andalucía",
		CodigoPostal: "14001", Notas: "Prefiere comunicación por email",
		FechaAlta: "2019-11-10", Activo: true, Tipo: models.TipoClientePotencial,
	},
}

// Fincas are the demo fincas, one per demo cliente
var Fincas = []models.Finca{
	{
		ID: "fin-1", ClienteID: "cli-1", Nombre: "El Olivar", Cultivo: "Olivo", Variedad: "Picual",
		Portainjerto: "Frantoio", Superficie: 12.5, VolumenCaldoPorHa: 800, AnoPlantacion: 2015,
		TipoRiego: models.RiegoRegadio,
		Ubicacion: models.Ubicacion{Direccion: "Camino de la Vega, Ciudad Real", Latitud: float(38.9848), Longitud: float(-3.9271)},
		Notas:     "Producción en ecológico", FechaCreacion: "2020-01-15", Activa: true,
	},
	{
		ID: "fin-2", ClienteID: "cli-2", Nombre: "Los Almendros", Cultivo: "Almendro", Variedad: "Guara",
		Superficie: 8.3, VolumenCaldoPorHa: 600, AnoPlantacion: 2018, TipoRiego: models.RiegoSecano,
		Ubicacion:     models.Ubicacion{Direccion: "Paraje Las Lomas, Jaén", Latitud: float(37.7796), Longitud: float(-3.7849)},
		FechaCreacion: "2021-03-20", Activa: true,
	},
	{
		ID: "fin-3", ClienteID: "cli-3", Nombre: "La Viña Grande", Cultivo: "Viña", Variedad: "Tempranillo",
		Portainjerto: "R110", Superficie: 5.2, VolumenCaldoPorHa: 400, AnoPlantacion: 2012,
		TipoRiego: models.RiegoRegadio,
		Ubicacion: models.Ubicacion{Direccion: "Sierra de Córdoba", Latitud: float(37.8882), Longitud: float(-4.7794)},
		Notas:     "DOC Montilla-Moriles", FechaCreacion: "2019-11-10", Activa: true,
	},
}

// Visitas are the demo visitas
var Visitas = []models.Visita{
	{
		ID: "vis-1", ClienteID: "cli-1", FincaID: "fin-1", TecnicoID: "tecnico1",
		Fecha: "2025-11-20", HoraInicio: "16:00", Estado: models.EstadoConfirmada,
		Notas:            "Revisión general del olivar, evaluar necesidad de poda",
		DuracionEstimada: 90, FechaCreacion: "2025-11-12",
	},
	{
		ID: "vis-2", ClienteID: "cli-2", FincaID: "fin-2", TecnicoID: "tecnico1",
		Fecha: "2025-11-21", HoraInicio: "10:00", Estado: models.EstadoPendiente,
		Notas:            "Verificar estado de almendros tras última lluvia",
		DuracionEstimada: 60, FechaCreacion: "2025-11-13",
	},
	{
		ID: "vis-3", ClienteID: "cli-3", FincaID: "fin-3", TecnicoID: "tecnico1",
		Fecha: "2025-11-15", HoraInicio: "11:30", HoraFin: "13:00", Estado: models.EstadoRealizada,
		Notas:            "Inspección completa realizada. Todo correcto.",
		DuracionEstimada: 90, FechaCreacion: "2025-11-10",
	},
}

// Actividades are the demo actividades
var Actividades = []models.Actividad{
	{
		ID: "act-1", FincaID: "fin-1", Tipo: "Poda", Descripcion: "Poda de formación en olivos",
		Fecha: "2025-10-15", CostoTotal: 450, CostoPorHa: 36, Responsable: "Técnico Agrónomo",
		Estado: models.ActividadCompletada, FechaCreacion: "2025-10-15",
	},
	{
		ID: "act-2", FincaID: "fin-1", Tipo: "Pulverización", Descripcion: "Tratamiento fitosanitario preventivo",
		Fecha: "2025-11-05", CostoTotal: 280, CostoPorHa: 22.4, Responsable: "María López",
		Productos: []models.ProductoAplicado{
			{Nombre: "Cobre", Dosis: "200", Unidad: "gr/hl", PlazoSeguridad: 21, Tipo: "Fitosanitario"},
		},
		Estado: models.ActividadCompletada, FechaCreacion: "2025-11-05",
	},
	{
		ID: "act-3", FincaID: "fin-2", Tipo: "Riego", Descripcion: "Riego de apoyo",
		Fecha: "2025-11-10", CostoTotal: 120, CostoPorHa: 14.5,
		Estado: models.ActividadCompletada, FechaCreacion: "2025-11-10",
	},
}

func toRecords[T any](items []T) ([]database.Record, error) {
	ret := make([]database.Record, 0, len(items))
	for _, it := range items {
		r, err := database.ToRecord(it)
		if err != nil {
			return nil, err
		}
		ret = append(ret, r)
	}

	return ret, nil
}

func demoData() (map[string][]database.Record, error) {
	ret := map[string][]database.Record{}

	var err error
	if ret[database.CollectionClientes], err = toRecords(Clientes); err != nil {
		return nil, errors.Wrap(err, "clientes")
	}
	if ret[database.CollectionFincas], err = toRecords(Fincas); err != nil {
		return nil, errors.Wrap(err, "fincas")
	}
	if ret[database.CollectionVisitas], err = toRecords(Visitas); err != nil {
		return nil, errors.Wrap(err, "visitas")
	}
	if ret[database.CollectionActividades], err = toRecords(Actividades); err != nil {
		return nil, errors.Wrap(err, "actividades")
	}

	return ret, nil
}

// Run writes the demo records into the store once. Later runs do nothing
// unless forced, so that deleted demo records are not brought back. Demo
// records are not queued for sync.
func Run(ctx context.Context, store *database.Store, opts Options) (Result, error) {
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}

	var seededAt string
	if err := store.GetSystem(ctx, consts.SystemSeeded, &seededAt); err != nil {
		return Result{}, errors.Wrap(err, "reading the seed marker")
	}
	if seededAt != "" && !opts.Force {
		log.Debug("seed: already seeded at %s\n", seededAt)
		return Result{Skipped: true, SeededAt: seededAt}, nil
	}

	data, err := demoData()
	if err != nil {
		return Result{}, errors.Wrap(err, "preparing demo data")
	}

	res := Result{Counts: map[string]int{}}
	for _, coll := range database.Collections {
		for _, rec := range data[coll] {
			if err := store.Put(ctx, coll, rec); err != nil {
				return res, errors.Wrapf(err, "seeding %s", coll)
			}
		}
		res.Counts[coll] = len(data[coll])
	}

	res.SeededAt = c.Now().Format(time.RFC3339)
	if err := store.UpdateSystem(ctx, consts.SystemSeeded, res.SeededAt); err != nil {
		return res, errors.Wrap(err, "writing the seed marker")
	}

	return res, nil
}
