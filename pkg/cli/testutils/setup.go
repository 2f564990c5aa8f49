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

package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/cli/config"
	"github.com/kropland/kropland/pkg/cli/consts"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/dirs"
	"github.com/pkg/errors"
)

// WriteQuietConfig writes a config for the given config and data homes
// whose simulated remote answers at once and never fails
func WriteQuietConfig(t *testing.T, configHome, dataHome string) config.Config {
	cf := config.Default(filepath.Join(dataHome, dirs.AppDirName))
	cf.Latency = 0
	cf.FailureRate = 0
	cf.InitialSyncDelay = 10 * time.Millisecond

	path := config.GetPath(configHome)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(errors.Wrap(err, "creating the config dir"))
	}
	if err := config.Write(path, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing the config"))
	}

	return cf
}

// SetOffline creates or removes the offline flag file under the data home
func SetOffline(t *testing.T, dataHome string, offline bool) {
	p := filepath.Join(dataHome, dirs.AppDirName, consts.OfflineFlagFilename)

	if !offline {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			t.Fatal(errors.Wrap(err, "removing the offline flag"))
		}
		return
	}

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(errors.Wrap(err, "creating the data dir"))
	}
	if err := os.WriteFile(p, nil, 0644); err != nil {
		t.Fatal(errors.Wrap(err, "writing the offline flag"))
	}
}

// Setup1 sets up a kropland env #1 with a cliente and a finca
func Setup1(t *testing.T, s *database.Store) {
	database.MustPut(t, s, database.CollectionClientes, database.Record{
		"id": "c1", "nombre": "Ana", "apellidos": "Ruiz", "provincia": "Jaén", "activo": true,
	})
	database.MustPut(t, s, database.CollectionFincas, database.Record{
		"id": "f1", "clienteId": "c1", "nombre": "El Olivar", "cultivo": "Olivo", "superficie": 12.5,
	})
}
