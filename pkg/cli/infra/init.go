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

// Package infra sets up the local environment of the field client and
// builds the services its commands use
package infra

import (
	"context"
	"path/filepath"

	"github.com/kropland/kropland/pkg/cli/config"
	"github.com/kropland/kropland/pkg/cli/consts"
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/state"
	"github.com/kropland/kropland/pkg/cli/ui"
	"github.com/kropland/kropland/pkg/clock"
	"github.com/kropland/kropland/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RunEFunc is a function type of kropland commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return filepath.Join(paths.DataDir(), consts.DBFileName)
}

// initFiles creates, if necessary, the kropland directories and the config file
func initFiles(paths Paths, configPath string) error {
	if err := InitDirs(paths); err != nil {
		return errors.Wrap(err, "creating the kropland dirs")
	}
	if err := config.Init(configPath, paths.DataDir()); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}

// Init prepares the directories, the config file and the database, and
// returns the context for the commands. dbPath overrides the default
// database location when not empty.
func Init(ctx context.Context, versionTag, dbPath string) (*Ctx, error) {
	paths := Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
	}
	configPath := config.GetPath(paths.Config)

	if err := initFiles(paths, configPath); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	cf, err := config.Read(configPath, paths.DataDir())
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	c := clock.New()
	store := database.NewStore(getDBPath(paths, dbPath))
	store.Clock = c
	if err := store.Initialize(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing the database")
	}

	api, err := newAPI(ctx, versionTag, cf, store, c)
	if err != nil {
		store.Close()
		return nil, errors.Wrap(err, "setting up the remote")
	}

	ret := &Ctx{
		Paths:      paths,
		Version:    versionTag,
		ConfigPath: configPath,
		Config:     cf,
		Store:      store,
		State:      state.New(filepath.Join(paths.DataDir(), consts.StateFilename)),
		API:        api,
		Clock:      c,
		Editor:     cf.Editor,
	}
	if ret.Editor == "" {
		ret.Editor = ui.GetEditorCommand()
	}

	log.Debug("context: remote %s, database %s\n", cf.Remote, store.Path)

	return ret, nil
}
