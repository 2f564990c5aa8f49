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

package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kropland/kropland/pkg/assert"
)

func TestGenUUID(t *testing.T) {
	a, err := GenUUID()
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenUUID()
	if err != nil {
		t.Fatal(err)
	}

	_, err = uuid.Parse(a)
	assert.Equal(t, err, nil, "should be a valid uuid")
	assert.NotEqual(t, a, b, "uuids should differ")
}

func TestValidID(t *testing.T) {
	testCases := []struct {
		id       string
		expected bool
	}{
		{id: "8f7c2a9e-0f1b-4d7e-9a63-3f0e2f6b9c11", expected: true},
		{id: "k3j9x0a1b", expected: true},
		{id: "c1", expected: true},
		{id: "", expected: false},
		{id: "../etc", expected: false},
		{id: "a b", expected: false},
		{id: "0123456789012345678901234567890123456789012345678901234567890123456789", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			assert.Equal(t, ValidID(tc.id), tc.expected, "result mismatch")
		})
	}
}
