/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of Dnote.
 *
 * Dnote is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Dnote is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with Dnote.  If not, see <https://www.gnu.org/licenses/>.
 */

package database

import (
	"os"
	"path/filepath"

	"github.com/kropland/kropland/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite opens the database with the SQLite driver
	DriverSQLite = "sqlite"
	// DriverPostgres opens the database with the PostgreSQL driver
	DriverPostgres = "postgres"
)

// ErrDriverUnknown is returned when opening a database with an unsupported driver
var ErrDriverUnknown = errors.New("unknown database driver")

// InitSchema migrates database schema to reflect the latest model definition
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Document{},
	); err != nil {
		return errors.Wrap(err, "migrating the schema")
	}

	return nil
}

// getDBLogLevel maps the server log level to the level of the gorm logger.
// Queries are only logged at the debug level.
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" && filepath.Ext(dsn) != "" {
			// Create directory if it doesn't exist
			dir := filepath.Dir(dsn)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrapf(err, "creating database directory at %s", dir)
			}
		}

		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}

	return nil, errors.Wrapf(ErrDriverUnknown, "'%s'", driver)
}

// Open initializes the database connection
func Open(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(log.Level())),
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database conection")
	}

	log.WithFields(log.Fields{
		"driver": driver,
	}).Info("Database opened.")

	return db, nil
}

// Close closes the connection pool behind the given database
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting the connection pool")
	}

	return sqlDB.Close()
}
