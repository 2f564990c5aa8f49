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

package remove

import (
	"fmt"

	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/ui"
	"github.com/kropland/kropland/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var yesFlag bool

var example = `
  * Remove a visita
  kropland remove visitas vis-3

  * Skip the confirmation
  kropland remove visitas vis-3 -y`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <collection> <id>",
		Short:   "Remove a record",
		Aliases: []string{"rm", "d"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "remove without confirmation")

	return cmd
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		coll, id := args[0], args[1]
		if err := validate.Collection(coll); err != nil {
			return errors.Wrap(err, "invalid collection")
		}

		set, tr, err := ctx.Session(cmd.Context())
		if err != nil {
			return err
		}
		defer tr.Close()

		m, _ := set.ByName(coll)
		rec, ok := m.Record(id)
		if !ok {
			return errors.Errorf("%s '%s' not found", coll, id)
		}

		if !yesFlag {
			output.RecordInfo(coll, rec)

			ok, err := ui.Confirm(fmt.Sprintf("remove %s '%s'?", coll, id), false)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := m.Delete(cmd.Context(), id); err != nil {
			return errors.Wrap(err, "removing the record")
		}

		log.Successf("removed %s '%s'\n", coll, id)

		if !tr.GetState().IsOnline {
			log.Warnf("offline: the change is queued until the next sync\n")
		}

		return nil
	}
}
