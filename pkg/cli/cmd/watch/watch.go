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

package watch

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kropland/kropland/pkg/cli/connectivity"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/syncer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var intervalFlag time.Duration

var example = `
  * Keep syncing until interrupted
  kropland watch

  * Sync every minute while online
  kropland watch --interval 1m

  * Go offline and back from another terminal
  touch ~/.local/share/kropland/offline
  rm ~/.local/share/kropland/offline`

// NewCmd returns a new watch command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Follow connectivity and sync automatically until interrupted",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.DurationVar(&intervalFlag, "interval", 0, "period of the automatic sync (defaults to value in config)")

	return cmd
}

func printResult(trigger syncer.Trigger, res syncer.Result) {
	log.Infof("%s sync\n", trigger)
	output.SyncResult(res)
	if res.Err != nil {
		log.Errorf("%s\n", res.Err)
	}
}

// Run follows the tracker and runs the scheduler until the context is done
func Run(c context.Context, ctx *infra.Ctx) error {
	tr := ctx.StartTracker(c)
	defer tr.Close()

	unsubscribe := tr.Subscribe(func(s connectivity.State) {
		output.Event(ctx.Clock.Now(), s)
	})
	defer unsubscribe()

	sched := ctx.NewScheduler(ctx.NewEngine(tr), printResult)
	if err := sched.Start(c); err != nil {
		return errors.Wrap(err, "starting the scheduler")
	}
	defer sched.Stop()

	<-c.Done()

	return nil
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if intervalFlag > 0 {
			ctx.Config.AutoSyncInterval = intervalFlag
		}

		c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Infof("watching (remote %s, offline flag %s). Press Ctrl+C to stop\n", ctx.Config.Remote, ctx.Config.OfflineFlag)

		return Run(c, ctx)
	}
}
