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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kropland/kropland/pkg/cli/collections"
	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/syncer"
)

const timeLayout = "Jan 2, 2006 3:04pm (MST)"

func str(rec database.Record, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

// Summary returns a one line description of a record
func Summary(coll string, rec database.Record) string {
	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	switch coll {
	case database.CollectionClientes:
		add(strings.TrimSpace(str(rec, "nombre") + " " + str(rec, "apellidos")))
		add(str(rec, "poblacion"))
	case database.CollectionFincas:
		add(str(rec, "nombre"))
		add(str(rec, "cultivo"))
		if s := str(rec, "superficie"); s != "" {
			add(s + " ha")
		}
	case database.CollectionVisitas:
		add(str(rec, "fecha"))
		add(str(rec, "estado"))
		add(str(rec, "fincaId"))
	case database.CollectionActividades:
		add(str(rec, "fecha"))
		add(str(rec, "tipo"))
		if s := str(rec, "costoTotal"); s != "" {
			add(s + " €")
		}
	}

	return strings.Join(parts, ", ")
}

// RecordList prints one line per record
func RecordList(coll string, recs []database.Record) {
	if len(recs) == 0 {
		log.Infof("no %s\n", coll)
		return
	}

	for _, r := range recs {
		log.Plainf("%s %s\n", log.ColorYellow.Sprintf("(%s)", r.ID()), Summary(coll, r))
	}
}

// RecordInfo prints a record with every field
func RecordInfo(coll string, rec database.Record) {
	log.Infof("collection: %s\n", coll)
	log.Infof("id: %s\n", rec.ID())

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		log.Errorf("encoding the record: %s\n", err)
		return
	}

	fmt.Printf("\n------------------------content------------------------\n")
	fmt.Printf("%s", b)
	fmt.Printf("\n-------------------------------------------------------\n")
}

// RecordJSON prints a record as JSON alone, for use in pipes
func RecordJSON(rec database.Record) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", b)

	return nil
}

// QueueEntries prints the pending mutations in replay order
func QueueEntries(entries []database.QueueEntry) {
	if len(entries) == 0 {
		log.Info("no pending changes\n")
		return
	}

	for _, e := range entries {
		var sent string
		if e.Synced {
			sent = log.ColorGray.Sprint(" (sent)")
		}

		log.Plainf("%s %-6s %-12s %s %s%s\n",
			log.ColorYellow.Sprintf("(%d)", e.Seq),
			e.Action, e.StoreName, e.Data.ID(),
			log.ColorGray.Sprint(e.Timestamp.Local().Format(timeLayout)), sent)
	}
}

// SyncResult prints the outcome of a sync
func SyncResult(res syncer.Result) {
	if res.Skipped {
		log.Warnf("sync skipped: %s\n", res.Reason)
		return
	}

	if res.Replayed > 0 {
		log.Infof("replayed %d queued changes\n", res.Replayed)
	}
	if len(res.Refreshed) > 0 {
		log.Infof("refreshed %s\n", strings.Join(res.Refreshed, ", "))
	}

	if res.Err != nil {
		for _, k := range res.Failed {
			log.Errorf("could not replay %s\n", k)
		}
		return
	}

	log.Success("synced\n")
}

// Status prints the connectivity state and the number of pending changes
func Status(s connectivity.State, pending int) {
	label := s.Label()
	switch {
	case !s.IsOnline:
		label = log.ColorYellow.Sprint(label)
	case s.SyncError != nil:
		label = log.ColorRed.Sprint(label)
	default:
		label = log.ColorGreen.Sprint(label)
	}

	log.Infof("status: %s\n", label)
	log.Infof("pending changes: %d\n", pending)
	if s.LastSync != nil {
		log.Infof("last sync: %s\n", s.LastSync.Local().Format(timeLayout))
	} else {
		log.Info("last sync: never\n")
	}
	if s.SyncError != nil {
		log.Errorf("last error: %s\n", *s.SyncError)
	}
}

// Estadisticas prints the dashboard summary
func Estadisticas(e collections.Estadisticas) {
	log.Infof("clientes: %d\n", e.TotalClientes)
	log.Infof("fincas: %d (%.2f ha)\n", e.TotalFincas, e.SuperficieTotal)
	log.Infof("visitas: %d, %s pendientes, %s hoy\n", e.TotalVisitas,
		log.ColorYellow.Sprint(e.VisitasPendientes), log.ColorYellow.Sprint(e.VisitasHoy))
	log.Infof("actividades: %d, %d este mes\n", e.TotalActividades, e.ActividadesEsteMes)
	log.Infof("gasto este mes: %.2f €\n", e.GastosEsteMes)
}

// Event prints a state change observed while watching
func Event(at time.Time, s connectivity.State) {
	log.Plainf("%s %s\n", log.ColorGray.Sprint(at.Local().Format("15:04:05")), s.Label())
}
