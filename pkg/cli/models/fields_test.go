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

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/cli/database"
)

func TestIsStringField(t *testing.T) {
	testCases := []struct {
		coll     string
		field    string
		expected bool
	}{
		{database.CollectionClientes, "telefono", true},
		{database.CollectionClientes, "codigoPostal", true},
		{database.CollectionClientes, "activo", false},
		{database.CollectionFincas, "superficie", false},
		{database.CollectionFincas, "añoPlantacion", false},
		{database.CollectionFincas, "ubicacion", false},
		{database.CollectionVisitas, "estado", true},
		{database.CollectionActividades, "costoTotal", false},
		{database.CollectionActividades, "unknown", false},
		{"tareas", "nombre", false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s.%s", tc.coll, tc.field), func(t *testing.T) {
			assert.Equal(t, IsStringField(tc.coll, tc.field), tc.expected, "result mismatch")
		})
	}
}
