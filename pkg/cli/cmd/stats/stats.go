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

package stats

import (
	"github.com/kropland/kropland/pkg/cli/collections"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new stats command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"estadisticas"},
		Short:   "Print totals, pending visitas and this month's spending",
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		set := collections.NewSet(ctx.Store, nil, ctx.Clock)
		if err := set.Load(cmd.Context()); err != nil {
			return errors.Wrap(err, "loading records")
		}

		output.Estadisticas(set.Estadisticas(ctx.Clock.Now()))

		return nil
	}
}
