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
	"fmt"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/assert"
)

func boolPtr(b bool) *bool          { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestFiltrosClienteMatch(t *testing.T) {
	c := Cliente{
		Nombre:          "Ana",
		Apellidos:       "García Ruiz",
		DNI:             "12345678Z",
		Email:           "ana@example.com",
		Telefono:        "600111222",
		Provincia:       "Jaén",
		TecnicoAsignado: "t1",
		Activo:          true,
	}

	testCases := []struct {
		filtros  FiltrosCliente
		expected bool
	}{
		{FiltrosCliente{}, true},
		{FiltrosCliente{Busqueda: "garcía"}, true},
		{FiltrosCliente{Busqueda: "678z"}, true},
		{FiltrosCliente{Busqueda: "600111"}, true},
		{FiltrosCliente{Busqueda: "luis"}, false},
		{FiltrosCliente{Provincia: "Jaén"}, true},
		{FiltrosCliente{Provincia: "Córdoba"}, false},
		{FiltrosCliente{Tecnico: "t2"}, false},
		{FiltrosCliente{Activo: boolPtr(true)}, true},
		{FiltrosCliente{Activo: boolPtr(false)}, false},
	}

	for idx, tc := range testCases {
		assert.Equal(t, tc.filtros.Match(c), tc.expected, fmt.Sprintf("result mismatch for test case %d", idx))
	}
}

func TestFiltrosFincaMatch(t *testing.T) {
	f := Finca{Nombre: "Los Olivos", Cultivo: "Olivo", Variedad: "Picual", TipoRiego: RiegoRegadio, Superficie: 12.5}

	testCases := []struct {
		filtros  FiltrosFinca
		expected bool
	}{
		{FiltrosFinca{}, true},
		{FiltrosFinca{Busqueda: "picual"}, true},
		{FiltrosFinca{Busqueda: "viña"}, false},
		{FiltrosFinca{Cultivo: "Olivo", TipoRiego: RiegoRegadio}, true},
		{FiltrosFinca{TipoRiego: RiegoSecano}, false},
		{FiltrosFinca{SuperficieMin: floatPtr(12.5)}, true},
		{FiltrosFinca{SuperficieMin: floatPtr(13)}, false},
		{FiltrosFinca{SuperficieMax: floatPtr(10)}, false},
	}

	for idx, tc := range testCases {
		assert.Equal(t, tc.filtros.Match(f), tc.expected, fmt.Sprintf("result mismatch for test case %d", idx))
	}
}

func TestFiltrosVisitaMatch(t *testing.T) {
	v := Visita{ClienteID: "c1", FincaID: "f1", TecnicoID: "t1", Fecha: "2024-03-10T10:00:00Z", Estado: EstadoPendiente, Notas: "Revisar goteo"}

	testCases := []struct {
		filtros  FiltrosVisita
		expected bool
	}{
		{FiltrosVisita{}, true},
		{FiltrosVisita{Busqueda: "goteo"}, true},
		{FiltrosVisita{Busqueda: "pendiente"}, true},
		{FiltrosVisita{Cliente: "c2"}, false},
		{FiltrosVisita{FincaID: "f1", Tecnico: "t1"}, true},
		{FiltrosVisita{Estado: EstadoRealizada}, false},
		{FiltrosVisita{FechaDesde: "2024-03-10", FechaHasta: "2024-03-10"}, true},
		{FiltrosVisita{FechaDesde: "2024-03-11"}, false},
		{FiltrosVisita{FechaHasta: "2024-03-09"}, false},
	}

	for idx, tc := range testCases {
		assert.Equal(t, tc.filtros.Match(v), tc.expected, fmt.Sprintf("result mismatch for test case %d", idx))
	}
}

func TestProximas(t *testing.T) {
	now := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)
	visitas := []Visita{
		{ID: "late", Fecha: "2024-04-10"},
		{ID: "second", Fecha: "2024-03-20"},
		{ID: "past", Fecha: "2024-03-03"},
		{ID: "today", Fecha: "2024-03-04"},
		{ID: "invalid", Fecha: "pronto"},
	}

	got := Proximas(visitas, now, 30)

	ids := []string{}
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.DeepEqual(t, ids, []string{"today", "second"}, "ids mismatch")
}

func TestCostos(t *testing.T) {
	actividades := []Actividad{
		{Tipo: "Poda", CostoTotal: 450},
		{Tipo: "Riego", CostoTotal: 120},
		{Tipo: "Poda", CostoTotal: 50},
	}

	got := CostosTotales(actividades)

	assert.Equal(t, got.Total, 620.0, "total mismatch")
	assert.DeepEqual(t, got.PorTipo, map[string]float64{"Poda": 500, "Riego": 120}, "por tipo mismatch")
	assert.Equal(t, CostoPorHa(280, 12.5), 22.4, "costo por ha mismatch")
	assert.Equal(t, CostoPorHa(280, 0), 0.0, "costo por ha without surface mismatch")
	assert.Equal(t, SuperficieTotal([]Finca{{Superficie: 12.5}, {Superficie: 7.5}}), 20.0, "superficie mismatch")
}
