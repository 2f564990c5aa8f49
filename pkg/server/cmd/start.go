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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kropland/kropland/pkg/server/buildinfo"
	"github.com/kropland/kropland/pkg/server/config"
	"github.com/kropland/kropland/pkg/server/controllers"
	"github.com/kropland/kropland/pkg/server/database"
	"github.com/kropland/kropland/pkg/server/log"
)

// shutdownTimeout bounds the wait for in-flight requests on shutdown
const shutdownTimeout = 10 * time.Second

func startCmd(args []string) {
	fs := setupFlagSet("start", "kropland-server start")

	envFile := fs.String("envFile", config.DefaultEnvFile, "Path to a dotenv file read before the environment")
	appEnv := fs.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbDriver := fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)")
	dbDSN := fs.String("dbDSN", "", "Database file for sqlite or connection string for postgres (env: DB_DSN, default: $XDG_DATA_HOME/kropland/server.db)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	fs.Parse(args)

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Printf("Error: %s\n\n", err)
		os.Exit(1)
	}

	cfg, err := config.New(config.Params{
		AppEnv:   *appEnv,
		Port:     *port,
		DBDriver: *dbDriver,
		DBDSN:    *dbDSN,
		LogLevel: *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	// Set log level
	log.SetLevel(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	a, err := initApp(cfg)
	if err != nil {
		return err
	}
	defer database.Close(a.DB)

	r, err := controllers.NewRouter(&a, controllers.New(&a))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"version": buildinfo.Version,
			"port":    cfg.Port,
			"driver":  cfg.DBDriver,
		}).Info("Kropland server starting")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Kropland server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
