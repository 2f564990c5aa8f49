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

package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ParseFecha parses the date part of a record date. Dates may carry a time
// after the calendar date.
func ParseFecha(s string) (time.Time, bool) {
	if len(s) < len(DateLayout) {
		return time.Time{}, false
	}

	t, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// FiltrosCliente narrows a list of clientes. Zero values match everything.
type FiltrosCliente struct {
	Busqueda  string
	Provincia string
	Tecnico   string
	Activo    *bool
}

// Match reports whether the cliente satisfies every filter
func (f FiltrosCliente) Match(c Cliente) bool {
	if f.Busqueda != "" {
		if !containsFold(c.Nombre, f.Busqueda) &&
			!containsFold(c.Apellidos, f.Busqueda) &&
			!containsFold(c.DNI, f.Busqueda) &&
			!containsFold(c.Email, f.Busqueda) &&
			!strings.Contains(c.Telefono, f.Busqueda) {
			return false
		}
	}
	if f.Provincia != "" && c.Provincia != f.Provincia {
		return false
	}
	if f.Tecnico != "" && c.TecnicoAsignado != f.Tecnico {
		return false
	}
	if f.Activo != nil && c.Activo != *f.Activo {
		return false
	}

	return true
}

// FiltrosFinca narrows a list of fincas. Zero values match everything.
type FiltrosFinca struct {
	Busqueda      string
	Cultivo       string
	TipoRiego     string
	SuperficieMin *float64
	SuperficieMax *float64
}

// Match reports whether the finca satisfies every filter
func (f FiltrosFinca) Match(finca Finca) bool {
	if f.Busqueda != "" {
		if !containsFold(finca.Nombre, f.Busqueda) &&
			!containsFold(finca.Cultivo, f.Busqueda) &&
			!containsFold(finca.Variedad, f.Busqueda) {
			return false
		}
	}
	if f.Cultivo != "" && finca.Cultivo != f.Cultivo {
		return false
	}
	if f.TipoRiego != "" && finca.TipoRiego != f.TipoRiego {
		return false
	}
	if f.SuperficieMin != nil && finca.Superficie < *f.SuperficieMin {
		return false
	}
	if f.SuperficieMax != nil && finca.Superficie > *f.SuperficieMax {
		return false
	}

	return true
}

// FiltrosVisita narrows a list of visitas. Zero values match everything.
// FechaDesde and FechaHasta are inclusive dates in DateLayout.
type FiltrosVisita struct {
	Busqueda   string
	Estado     string
	FechaDesde string
	FechaHasta string
	Tecnico    string
	Cliente    string
	FincaID    string
}

// Match reports whether the visita satisfies every filter
func (f FiltrosVisita) Match(v Visita) bool {
	if f.Busqueda != "" && !containsFold(v.Notas, f.Busqueda) && !containsFold(v.Estado, f.Busqueda) {
		return false
	}
	if f.Cliente != "" && v.ClienteID != f.Cliente {
		return false
	}
	if f.FincaID != "" && v.FincaID != f.FincaID {
		return false
	}
	if f.Tecnico != "" && v.TecnicoID != f.Tecnico {
		return false
	}
	if f.Estado != "" && v.Estado != f.Estado {
		return false
	}

	fecha := v.Fecha
	if len(fecha) > len(DateLayout) {
		fecha = fecha[:len(DateLayout)]
	}
	if f.FechaDesde != "" && fecha < f.FechaDesde {
		return false
	}
	if f.FechaHasta != "" && fecha > f.FechaHasta {
		return false
	}

	return true
}

// Proximas returns the visitas scheduled from the day of now up to the given
// number of days ahead, earliest first
func Proximas(visitas []Visita, now time.Time, dias int) []Visita {
	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	limite := hoy.AddDate(0, 0, dias)

	ret := []Visita{}
	for _, v := range visitas {
		fecha, ok := ParseFecha(v.Fecha)
		if !ok {
			continue
		}
		if fecha.Before(hoy) || fecha.After(limite) {
			continue
		}

		ret = append(ret, v)
	}

	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Fecha < ret[j].Fecha
	})

	return ret
}

// SuperficieTotal sums the surface of the fincas in hectares
func SuperficieTotal(fincas []Finca) float64 {
	var total float64
	for _, f := range fincas {
		total += f.Superficie
	}

	return total
}

// CostoPorHa returns the cost per hectare rounded to cents, or zero for a
// farm without surface
func CostoPorHa(costoTotal, superficie float64) float64 {
	if superficie <= 0 {
		return 0
	}

	return math.Round(costoTotal/superficie*100) / 100
}

// Costos is the cost of a set of actividades, in total and per tipo
type Costos struct {
	Total   float64
	PorTipo map[string]float64
}

// CostosTotales adds up the cost of the actividades
func CostosTotales(actividades []Actividad) Costos {
	ret := Costos{PorTipo: map[string]float64{}}
	for _, a := range actividades {
		ret.Total += a.CostoTotal
		ret.PorTipo[a.Tipo] += a.CostoTotal
	}

	return ret
}
