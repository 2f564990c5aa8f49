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

package ls

import (
	"time"

	"github.com/kropland/kropland/pkg/cli/collections"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * List clientes
 kropland ls clientes

 * Search clientes in a provincia
 kropland ls clientes --search ana --provincia Jaén

 * List the fincas of a cliente
 kropland ls fincas --cliente cli-1

 * List the visitas of the next week
 kropland ls visitas --proximas 7

 * List the actividades of a finca in a range and their costs
 kropland ls actividades --finca fin-1 --desde 2024-01-01 --hasta 2024-06-30 --costos`

// Filters holds the flags narrowing the listing
type Filters struct {
	Search    string
	Provincia string
	Tecnico   string
	Cultivo   string
	Cliente   string
	Finca     string
	Estado    string
	Desde     string
	Hasta     string
	Proximas  int
	Costos    bool
}

var filters Filters

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new ls command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls <collection>",
		Aliases: []string{"l", "list"},
		Short:   "List records",
		Example: example,
		PreRunE: preRun,
		RunE:    NewRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&filters.Search, "search", "", "text to search for")
	f.StringVar(&filters.Provincia, "provincia", "", "clientes in the provincia")
	f.StringVar(&filters.Tecnico, "tecnico", "", "records assigned to the tecnico")
	f.StringVar(&filters.Cultivo, "cultivo", "", "fincas with the cultivo")
	f.StringVar(&filters.Cliente, "cliente", "", "records of the cliente id")
	f.StringVar(&filters.Finca, "finca", "", "records of the finca id")
	f.StringVar(&filters.Estado, "estado", "", "visitas in the estado")
	f.StringVar(&filters.Desde, "desde", "", "records dated on or after YYYY-MM-DD")
	f.StringVar(&filters.Hasta, "hasta", "", "records dated on or before YYYY-MM-DD")
	f.IntVar(&filters.Proximas, "proximas", 0, "visitas scheduled within the number of days")
	f.BoolVar(&filters.Costos, "costos", false, "print the costs of the actividades of --finca")

	return cmd
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

// Select returns the records of the collection matching the filters
func Select(set *collections.Set, coll string, f Filters, now time.Time) ([]database.Record, error) {
	switch coll {
	case database.CollectionClientes:
		return toRecords(set.Clientes.Filter(models.FiltrosCliente{
			Busqueda:  f.Search,
			Provincia: f.Provincia,
			Tecnico:   f.Tecnico,
		}))
	case database.CollectionFincas:
		ff := models.FiltrosFinca{Busqueda: f.Search, Cultivo: f.Cultivo}
		if f.Cliente == "" {
			return toRecords(set.Fincas.Filter(ff))
		}

		ret := []models.Finca{}
		for _, finca := range set.Fincas.ByCliente(f.Cliente) {
			if ff.Match(finca) {
				ret = append(ret, finca)
			}
		}
		return toRecords(ret)
	case database.CollectionVisitas:
		if f.Proximas > 0 {
			return toRecords(set.Visitas.Proximas(now, f.Proximas))
		}
		return toRecords(set.Visitas.Filter(models.FiltrosVisita{
			Busqueda:   f.Search,
			Estado:     f.Estado,
			FechaDesde: f.Desde,
			FechaHasta: f.Hasta,
			Tecnico:    f.Tecnico,
			Cliente:    f.Cliente,
			FincaID:    f.Finca,
		}))
	case database.CollectionActividades:
		if f.Finca == "" {
			return set.Actividades.Records(), nil
		}
		if f.Desde != "" || f.Hasta != "" {
			hasta := f.Hasta
			if hasta == "" {
				hasta = "9999-12-31"
			}
			return toRecords(set.Actividades.Between(f.Finca, f.Desde, hasta))
		}
		return toRecords(set.Actividades.ByFinca(f.Finca))
	}

	return nil, errors.Errorf("unknown collection '%s'", coll)
}

// NewRun returns a new run function for ls
func NewRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		coll := args[0]
		if err := validate.Collection(coll); err != nil {
			return errors.Wrap(err, "invalid collection")
		}

		set := collections.NewSet(ctx.Store, nil, ctx.Clock)
		if err := set.Load(cmd.Context()); err != nil {
			return errors.Wrap(err, "loading records")
		}

		recs, err := Select(set, coll, filters, ctx.Clock.Now())
		if err != nil {
			return errors.Wrap(err, "selecting records")
		}

		output.RecordList(coll, recs)

		if filters.Costos && coll == database.CollectionActividades && filters.Finca != "" {
			c := set.Actividades.Costos(filters.Finca)
			log.Infof("coste total: %.2f €\n", c.Total)
			for tipo, total := range c.PorTipo {
				log.Plainf("  %s: %.2f €\n", tipo, total)
			}
		}

		return nil
	}
}
