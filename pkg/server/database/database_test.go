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
	"path/filepath"
	"testing"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm/logger"
)

func TestGetDBLogLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expected logger.LogLevel
	}{
		{
			name:     "debug level maps to Info",
			level:    log.LevelDebug,
			expected: logger.Info,
		},
		{
			name:     "info level maps to Silent",
			level:    log.LevelInfo,
			expected: logger.Silent,
		},
		{
			name:     "warn level maps to Warn",
			level:    log.LevelWarn,
			expected: logger.Warn,
		},
		{
			name:     "error level maps to Error",
			level:    log.LevelError,
			expected: logger.Error,
		},
		{
			name:     "unknown level maps to Silent",
			level:    "unknown",
			expected: logger.Silent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := getDBLogLevel(tc.level)
			assert.Equal(t, result, tc.expected, "log level mismatch")
		})
	}
}

func TestOpenSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "server.db")

	db, err := Open(DriverSQLite, dsn)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening"))
	}
	defer Close(db)

	if err := InitSchema(db); err != nil {
		t.Fatal(errors.Wrap(err, "initializing the schema"))
	}

	doc := Document{Collection: CollectionFincas, ID: "f1", Data: `{"id":"f1"}`}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}

	var count int64
	if err := db.Model(&Document{}).Where("collection = ?", CollectionFincas).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, count, int64(1), "count mismatch")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "root@/kropland")

	assert.Equal(t, errors.Is(err, ErrDriverUnknown), true, "error mismatch")
}

func TestValidCollection(t *testing.T) {
	for _, c := range Collections {
		assert.Equal(t, ValidCollection(c), true, c)
	}
	assert.Equal(t, ValidCollection("tractores"), false, "tractores")
	assert.Equal(t, ValidCollection(""), false, "empty")
}
