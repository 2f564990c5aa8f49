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

package edit

import (
	"encoding/json"
	"reflect"

	"github.com/kropland/kropland/pkg/cli/cmd/add"
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var setFlags []string

var example = `
  * Edit a record in the editor
  kropland edit clientes cli-1

  * Edit a record without launching an editor
  kropland edit visitas vis-3 --set estado=Realizada --set notas="Poda terminada"`

// NewCmd returns a new edit command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <collection> <id>",
		Short:   "Edit a record",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringArrayVarP(&setFlags, "set", "s", nil, "a field to change as key=value")

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// diff returns the fields of edited that differ from or are absent in
// original. Removed fields are not reported since a merge cannot remove them.
func diff(original, edited map[string]interface{}) map[string]interface{} {
	ret := map[string]interface{}{}
	for k, v := range edited {
		if old, ok := original[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}

		ret[k] = v
	}

	return ret
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
		original, ok := m.Record(id)
		if !ok {
			return errors.Errorf("%s '%s' not found", coll, id)
		}

		var changes map[string]interface{}
		if len(setFlags) > 0 {
			changes, err = add.GetFields(ctx, coll, setFlags, "")
		} else {
			b, mErr := json.MarshalIndent(original, "", "  ")
			if mErr != nil {
				return errors.Wrap(mErr, "encoding the record")
			}

			var edited map[string]interface{}
			edited, err = add.GetFields(ctx, coll, nil, string(b)+"\n")
			if err == nil {
				if edited["id"] != id {
					return validate.ErrIDChange
				}
				delete(edited, "id")
				changes = diff(original, edited)
			}
		}
		if err != nil {
			return errors.Wrap(err, "getting changes")
		}

		if len(changes) == 0 {
			log.Info("nothing changed\n")
			return nil
		}
		if err := validate.Changes(coll, changes); err != nil {
			return errors.Wrap(err, "invalid changes")
		}

		rec, err := m.UpdateRecord(cmd.Context(), id, changes)
		if err != nil {
			return errors.Wrap(err, "updating the record")
		}

		log.Successf("edited %s '%s'\n", coll, id)
		output.RecordInfo(coll, rec)

		if !tr.GetState().IsOnline {
			log.Warnf("offline: the change is queued until the next sync\n")
		}

		return nil
	}
}
