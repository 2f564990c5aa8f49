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
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/kropland/kropland/pkg/dirs"
	"github.com/kropland/kropland/pkg/server/database"
	"github.com/kropland/kropland/pkg/server/log"
	"github.com/pkg/errors"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests
	AppEnvTest string = "TEST"

	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "server.db"
	// DefaultEnvFile is the dotenv file read on start when present
	DefaultEnvFile = ".env"
)

var (
	// ErrDBMissingDSN is an error for an incomplete configuration missing the database source
	ErrDBMissingDSN = errors.New("DB DSN is empty")
	// ErrDBDriverInvalid is an error for an unsupported database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrLogLevelInvalid is an error for an unknown log level
	ErrLogLevelInvalid = errors.New("Invalid log level")
)

// DefaultDBPath returns the default path to the SQLite database file
func DefaultDBPath() string {
	return filepath.Join(dirs.DataDir(), DefaultDBFilename)
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// LoadEnvFile sets the variables of the dotenv file at the given path in the
// environment. Variables already set are kept, and a missing file is not an
// error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	log.WithFields(log.Fields{
		"path": path,
	}).Debug("Loaded environment file.")

	return nil
}

// Config is an application configuration
type Config struct {
	AppEnv   string
	Port     string
	DBDriver string
	DBDSN    string
	LogLevel string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv   string
	Port     string
	DBDriver string
	DBDSN    string
	LogLevel string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	c := Config{
		AppEnv:   getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:     getOrEnv(p.Port, "PORT", "3001"),
		DBDriver: getOrEnv(p.DBDriver, "DB_DRIVER", database.DriverSQLite),
		LogLevel: getOrEnv(p.LogLevel, "LOG_LEVEL", log.LevelInfo),
	}

	defaultDSN := ""
	if c.DBDriver == database.DriverSQLite {
		defaultDSN = DefaultDBPath()
	}
	c.DBDSN = getOrEnv(p.DBDSN, "DB_DSN", defaultDSN)

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// IsTest checks if the app environment is configured to be test.
func (c Config) IsTest() bool {
	return c.AppEnv == AppEnvTest
}

func validate(c Config) error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	if c.DBDriver != database.DriverSQLite && c.DBDriver != database.DriverPostgres {
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}
	if c.DBDSN == "" {
		return ErrDBMissingDSN
	}

	if !log.ValidLevel(c.LogLevel) {
		return errors.Wrapf(ErrLogLevelInvalid, "'%s'", c.LogLevel)
	}

	return nil
}
