/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of Dnote.
 *
 * Dnote is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Dnote is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with Dnote.  If not, see <https://www.gnu.org/licenses/>.
 */

package main

import (
	"context"
	"os"
	"strings"

	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/pkg/errors"

	// commands
	"github.com/kropland/kropland/pkg/cli/cmd/add"
	"github.com/kropland/kropland/pkg/cli/cmd/edit"
	"github.com/kropland/kropland/pkg/cli/cmd/ls"
	"github.com/kropland/kropland/pkg/cli/cmd/queue"
	"github.com/kropland/kropland/pkg/cli/cmd/remove"
	"github.com/kropland/kropland/pkg/cli/cmd/root"
	"github.com/kropland/kropland/pkg/cli/cmd/seed"
	"github.com/kropland/kropland/pkg/cli/cmd/stats"
	"github.com/kropland/kropland/pkg/cli/cmd/status"
	"github.com/kropland/kropland/pkg/cli/cmd/sync"
	"github.com/kropland/kropland/pkg/cli/cmd/version"
	"github.com/kropland/kropland/pkg/cli/cmd/view"
	"github.com/kropland/kropland/pkg/cli/cmd/watch"
)

// versionTag is populated during link time
var versionTag = "master"

// parseDBPath extracts --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		// Handle --dbPath=value
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		// Handle --dbPath value
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func main() {
	// The database is opened before cobra parses the flags, and --dbPath may
	// appear after the subcommand (e.g. "kropland sync --dbPath=./custom.db")
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(context.Background(), versionTag, dbPath)
	if err != nil {
		log.Errorf("%s\n", errors.Wrap(err, "initializing context").Error())
		os.Exit(1)
	}

	root.Register(add.NewCmd(ctx))
	root.Register(ls.NewCmd(ctx))
	root.Register(view.NewCmd(ctx))
	root.Register(edit.NewCmd(ctx))
	root.Register(remove.NewCmd(ctx))
	root.Register(sync.NewCmd(ctx))
	root.Register(status.NewCmd(ctx))
	root.Register(stats.NewCmd(ctx))
	root.Register(queue.NewCmd(ctx))
	root.Register(seed.NewCmd(ctx))
	root.Register(watch.NewCmd(ctx))
	root.Register(version.NewCmd(ctx))

	err = root.Execute()
	ctx.Close()

	if err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
