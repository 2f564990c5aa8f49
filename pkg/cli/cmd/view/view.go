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

package view

import (
	"github.com/kropland/kropland/pkg/cli/collections"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * View a cliente
 kropland view clientes cli-1

 * Print the record as JSON only
 kropland view fincas fin-2 --json`

var jsonOnly bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new view command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <collection> <id>",
		Aliases: []string{"v", "cat"},
		Short:   "View a record",
		Example: example,
		RunE:    newRun(ctx),
		PreRunE: preRun,
	}

	f := cmd.Flags()
	f.BoolVarP(&jsonOnly, "json", "", false, "print the record as JSON only")

	return cmd
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		coll, id := args[0], args[1]
		if err := validate.Collection(coll); err != nil {
			return errors.Wrap(err, "invalid collection")
		}

		rec, err := ctx.Store.GetOne(cmd.Context(), coll, id)
		if err != nil {
			return errors.Wrap(err, "reading the record")
		}
		if rec == nil {
			return errors.Wrapf(collections.ErrNotFound, "%s '%s'", coll, id)
		}

		if jsonOnly {
			return output.RecordJSON(rec)
		}

		output.RecordInfo(coll, rec)

		return nil
	}
}
