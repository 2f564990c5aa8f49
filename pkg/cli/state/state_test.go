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

package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/pkg/errors"
)

func TestLastSyncMissingFile(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "state.yml"))

	got, err := f.LastSync()
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading last sync"))
	}

	assert.Equal(t, got == nil, true, "last sync should be nil")
}

func TestSetLastSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yml")
	f := New(path)
	ts := time.Date(2024, 3, 4, 9, 30, 15, 0, time.UTC)

	if err := f.SetLastSync(ts); err != nil {
		t.Fatal(errors.Wrap(err, "setting last sync"))
	}

	// a new handle sees the persisted value
	got, err := New(path).LastSync()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, got.Equal(ts), true, "last sync mismatch")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, string(b), "lastSync: \"2024-03-04T09:30:15Z\"\n", "file content mismatch")
}

func TestLastSyncCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yml")
	if err := os.WriteFile(path, []byte("lastSync: yesterday\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(path).LastSync()
	assert.NotEqual(t, err, nil, "error should not be nil")
}
