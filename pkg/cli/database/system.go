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
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// GetSystem scans the value of the given system key into dest. dest is left
// untouched if the key does not exist.
func GetSystem(ctx context.Context, db *DB, key string, dest interface{}) error {
	err := db.QueryRow(ctx, "SELECT value FROM system WHERE key = ?", key).Scan(dest)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "finding system configuration record %s", key)
	}

	return nil
}

// UpdateSystem sets the value of the given system key, inserting it if absent
func UpdateSystem(ctx context.Context, db *DB, key string, val interface{}) error {
	_, err := db.Exec(ctx, `INSERT INTO system (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, val)
	if err != nil {
		return errors.Wrapf(err, "updating system config for %s", key)
	}

	return nil
}

// DeleteSystem removes the given system key
func DeleteSystem(ctx context.Context, db *DB, key string) error {
	if _, err := db.Exec(ctx, "DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting system config for %s", key)
	}

	return nil
}
