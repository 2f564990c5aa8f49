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
	"math"
	"time"

	"github.com/kropland/kropland/pkg/cli/models"
)

// Estadisticas is the dashboard summary of the four collections
type Estadisticas struct {
	TotalClientes      int
	TotalFincas        int
	TotalVisitas       int
	TotalActividades   int
	VisitasPendientes  int
	VisitasHoy         int
	SuperficieTotal    float64
	ActividadesEsteMes int
	GastosEsteMes      float64
}

func redondear(v float64) float64 {
	return math.Round(v*100) / 100
}

// Estadisticas computes the summary of the loaded collections as of now.
// Visitas still Pendiente or Confirmada count as pending. Surfaces and
// costs are rounded to cents.
func (s *Set) Estadisticas(now time.Time) Estadisticas {
	fincas := s.Fincas.List()
	visitas := s.Visitas.List()
	actividades := s.Actividades.List()

	ret := Estadisticas{
		TotalClientes:    len(s.Clientes.List()),
		TotalFincas:      len(fincas),
		TotalVisitas:     len(visitas),
		TotalActividades: len(actividades),
		SuperficieTotal:  redondear(models.SuperficieTotal(fincas)),
	}

	hoy := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, v := range visitas {
		if v.Estado == models.EstadoPendiente || v.Estado == models.EstadoConfirmada {
			ret.VisitasPendientes++
		}
		if fecha, ok := models.ParseFecha(v.Fecha); ok && fecha.Equal(hoy) {
			ret.VisitasHoy++
		}
	}

	var gastos float64
	for _, a := range actividades {
		fecha, ok := models.ParseFecha(a.Fecha)
		if !ok || fecha.Year() != now.Year() || fecha.Month() != now.Month() {
			continue
		}

		ret.ActividadesEsteMes++
		gastos += a.CostoTotal
	}
	ret.GastosEsteMes = redondear(gastos)

	return ret
}
