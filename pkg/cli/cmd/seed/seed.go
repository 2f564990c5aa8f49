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

package seed

import (
	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/seed"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var forceFlag bool

var example = `
  * Load the demo records once
  kropland seed

  * Load them again, overwriting edited demo records
  kropland seed --force`

// NewCmd returns a new seed command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Load demo records into the local store",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&forceFlag, "force", "f", false, "seed even if demo records were loaded before")

	return cmd
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		res, err := seed.Run(cmd.Context(), ctx.Store, seed.Options{Force: forceFlag, Clock: ctx.Clock})
		if err != nil {
			return errors.Wrap(err, "seeding")
		}

		if res.Skipped {
			log.Warnf("already seeded at %s. Use --force to seed again\n", res.SeededAt)
			return nil
		}

		for _, coll := range database.Collections {
			log.Infof("%s: %d\n", coll, res.Counts[coll])
		}
		log.Success("seeded\n")

		return nil
	}
}
