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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/server/database"
	"github.com/pkg/errors"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		config      Config
		expectedErr error
	}{
		{
			config: Config{
				Port:     "3000",
				DBDriver: database.DriverSQLite,
				DBDSN:    "test.db",
				LogLevel: "info",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				Port:     "3000",
				DBDriver: database.DriverPostgres,
				DBDSN:    "host=localhost dbname=kropland",
				LogLevel: "debug",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				Port:     "3000",
				DBDriver: database.DriverSQLite,
				DBDSN:    "",
				LogLevel: "info",
			},
			expectedErr: ErrDBMissingDSN,
		},
		{
			config: Config{
				Port:     "3000",
				DBDriver: "mysql",
				DBDSN:    "test.db",
				LogLevel: "info",
			},
			expectedErr: ErrDBDriverInvalid,
		},
		{
			config: Config{
				DBDriver: database.DriverSQLite,
				DBDSN:    "test.db",
				LogLevel: "info",
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				Port:     "http",
				DBDriver: database.DriverSQLite,
				DBDSN:    "test.db",
				LogLevel: "info",
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				Port:     "3000",
				DBDriver: database.DriverSQLite,
				DBDSN:    "test.db",
				LogLevel: "loud",
			},
			expectedErr: ErrLogLevelInvalid,
		},
	}

	for idx, tc := range testCases {
		t.Run(fmt.Sprintf("test case %d", idx), func(t *testing.T) {
			err := validate(tc.config)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
		})
	}
}

func TestNewPrecedence(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("DB_DRIVER", database.DriverPostgres)
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")

	c, err := New(Params{Port: "5000"})
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, c.Port, "5000", "params should win over the environment")
	assert.Equal(t, c.DBDriver, database.DriverPostgres, "driver mismatch")
	assert.Equal(t, c.DBDSN, "host=db", "dsn mismatch")
	assert.Equal(t, c.LogLevel, "info", "log level should default")
	assert.Equal(t, c.IsProd(), true, "app env should default to production")
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := New(Params{Port: "3000", DBDriver: database.DriverPostgres})

	assert.Equal(t, errors.Cause(err), ErrDBMissingDSN, "error mismatch")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "PORT=4321\nDB_DSN=/tmp/from-dotenv.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("DB_DSN", "/tmp/already-set.db")

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, os.Getenv("PORT"), "4321", "unset variable should be loaded")
	assert.Equal(t, os.Getenv("DB_DSN"), "/tmp/already-set.db", "set variable should be kept")

	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatal(errors.Wrap(err, "a missing file should not be an error"))
	}
}
