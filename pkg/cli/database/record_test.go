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

package database

import (
	"testing"

	"github.com/kropland/kropland/pkg/assert"
)

func TestMerge(t *testing.T) {
	old := Record{"id": "c1", "nombre": "Ana", "activo": true}
	changes := Record{"nombre": "Ana María", "telefono": "600111222"}

	got := Merge(old, changes)

	assert.DeepEqual(t, got, Record{"id": "c1", "nombre": "Ana María", "activo": true, "telefono": "600111222"}, "merged mismatch")
	assert.DeepEqual(t, old, Record{"id": "c1", "nombre": "Ana", "activo": true}, "old record should not change")
}

func TestClone(t *testing.T) {
	r := Record{"id": "f1", "ubicacion": map[string]interface{}{"latitud": 37.5}}

	c := r.Clone()
	c["ubicacion"].(map[string]interface{})["latitud"] = 38.0

	assert.Equal(t, r["ubicacion"].(map[string]interface{})["latitud"], 37.5, "original should not change")
}

func TestValidCollection(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"clientes", true},
		{"fincas", true},
		{"visitas", true},
		{"actividades", true},
		{"sync_queue", false},
		{"", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, ValidCollection(tc.name), tc.expected, tc.name)
	}
}

func TestReplaceID(t *testing.T) {
	testCases := []struct {
		name     string
		rec      Record
		expected Record
		changed  bool
	}{
		{
			name:     "own id",
			rec:      Record{"id": "u1", "nombre": "Ana"},
			expected: Record{"id": "r1", "nombre": "Ana"},
			changed:  true,
		},
		{
			name:     "nested reference",
			rec:      Record{"id": "v1", "cambios": map[string]interface{}{"clienteId": "u1"}},
			expected: Record{"id": "v1", "cambios": map[string]interface{}{"clienteId": "r1"}},
			changed:  true,
		},
		{
			name:     "reference in a list",
			rec:      Record{"id": "a1", "fincas": []interface{}{"f1", "u1"}},
			expected: Record{"id": "a1", "fincas": []interface{}{"f1", "r1"}},
			changed:  true,
		},
		{
			name:     "no reference",
			rec:      Record{"id": "c2", "notas": "u1 y u2"},
			expected: Record{"id": "c2", "notas": "u1 y u2"},
			changed:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orig := tc.rec.Clone()

			got, changed := ReplaceID(tc.rec, "u1", "r1")

			assert.Equal(t, changed, tc.changed, "changed mismatch")
			assert.DeepEqual(t, got, tc.expected, "result mismatch")
			assert.DeepEqual(t, tc.rec, orig, "input should not change")
		})
	}
}
