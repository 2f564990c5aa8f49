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

package utils

import (
	"testing"

	"github.com/kropland/kropland/pkg/assert"
)

func TestParseAssignments(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected map[string]interface{}
	}{
		{
			name:     "strings",
			input:    []string{"nombre=Ana", "poblacion=Jaén"},
			expected: map[string]interface{}{"nombre": "Ana", "poblacion": "Jaén"},
		},
		{
			name:     "typed values",
			input:    []string{"superficie=12.5", "activa=true", "notas=null"},
			expected: map[string]interface{}{"superficie": 12.5, "activa": true, "notas": nil},
		},
		{
			name:     "value with equal sign",
			input:    []string{"notas=a=b"},
			expected: map[string]interface{}{"notas": "a=b"},
		},
		{
			name:     "empty value",
			input:    []string{"notas="},
			expected: map[string]interface{}{"notas": ""},
		},
		{
			name:     "phone number keeps leading zero",
			input:    []string{"codigoPostal=06001"},
			expected: map[string]interface{}{"codigoPostal": "06001"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAssignments(tc.input, nil)
			if err != nil {
				t.Fatal(err)
			}

			assert.DeepEqual(t, got, tc.expected, "result mismatch")
		})
	}
}

func TestParseAssignmentsStringKeys(t *testing.T) {
	isString := func(key string) bool { return key == "telefono" }

	got, err := ParseAssignments([]string{"telefono=600111222", "superficie=12"}, isString)
	if err != nil {
		t.Fatal(err)
	}

	assert.DeepEqual(t, got, map[string]interface{}{"telefono": "600111222", "superficie": 12.0}, "result mismatch")
}

func TestParseAssignmentsInvalid(t *testing.T) {
	for _, input := range []string{"nombre", "=Ana"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAssignments([]string{input}, nil)
			assert.NotEqual(t, err, nil, "error should not be nil")
		})
	}
}

func TestParseJSONObject(t *testing.T) {
	got, err := ParseJSONObject(` {"nombre": "Ana", "superficie": 3} `)
	if err != nil {
		t.Fatal(err)
	}
	assert.DeepEqual(t, got, map[string]interface{}{"nombre": "Ana", "superficie": 3.0}, "result mismatch")

	for _, input := range []string{"", "[1,2]", "null", "nombre=Ana"} {
		_, err := ParseJSONObject(input)
		assert.NotEqual(t, err, nil, "error should not be nil for "+input)
	}
}
