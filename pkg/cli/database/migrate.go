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
	"embed"

	"github.com/kropland/kropland/pkg/cli/consts"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var migrationSource = &migrate.EmbedFileSystemMigrationSource{
	FileSystem: migrationFiles,
	Root:       "migrations",
}

const (
	migrationDialect = "sqlite3"
	migrationTable   = "migrations"
)

var migrationSet = migrate.MigrationSet{TableName: migrationTable}

// Migrate applies every pending migration and records the resulting schema
// version in the system table. Migrations only ever add tables and indexes,
// so running it against an older database never discards records.
func Migrate(ctx context.Context, db *DB) (int, error) {
	n, err := migrationSet.ExecContext(ctx, db.Conn, migrationDialect, migrationSource, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "running migrations")
	}

	version, err := appliedVersion(db)
	if err != nil {
		return n, err
	}
	if err := UpdateSystem(ctx, db, consts.SystemSchema, version); err != nil {
		return n, errors.Wrap(err, "recording the schema version")
	}

	return n, nil
}

func appliedVersion(db *DB) (int, error) {
	records, err := migrationSet.GetMigrationRecords(db.Conn, migrationDialect)
	if err != nil {
		return 0, errors.Wrap(err, "reading migration records")
	}

	return len(records), nil
}

// LatestSchemaVersion returns the schema version a fully migrated database has
func LatestSchemaVersion() (int, error) {
	migrations, err := migrationSource.FindMigrations()
	if err != nil {
		return 0, errors.Wrap(err, "finding migrations")
	}

	return len(migrations), nil
}
