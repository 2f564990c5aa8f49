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

package sync

import (
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/syncer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  kropland sync

  * Sync with a kropland server instead of the configured remote
  kropland sync --apiEndpoint http://localhost:3001`

var apiEndpointFlag string

// ErrOffline is returned when the remote cannot be reached
var ErrOffline = errors.New("cannot sync while offline")

// NewCmd returns a new sync command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Replay queued changes and refresh the local records from the remote",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.UseEndpoint(apiEndpointFlag)
		}

		tr := ctx.StartTracker(cmd.Context())
		defer tr.Close()

		pending, err := ctx.Store.QueueLength(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "counting queued changes")
		}
		log.Debug("sync: %d queued changes, remote %s\n", pending, ctx.Config.Remote)

		res := ctx.NewEngine(tr).Sync(cmd.Context())
		output.SyncResult(res)

		if res.Skipped && res.Reason == syncer.ReasonOffline {
			return ErrOffline
		}
		if res.Err != nil {
			return errors.Wrap(res.Err, "syncing")
		}

		return nil
	}
}
