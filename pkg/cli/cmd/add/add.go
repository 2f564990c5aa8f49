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

package add

import (
	"github.com/kropland/kropland/pkg/cli/infra"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/kropland/kropland/pkg/cli/output"
	"github.com/kropland/kropland/pkg/cli/ui"
	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/kropland/kropland/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var setFlags []string

var example = `
 * Open an editor to write the record as JSON
 kropland add clientes

 * Skip the editor by providing fields directly
 kropland add fincas --set nombre="El Olivar" --set clienteId=cli-1 --set superficie=12.5

 * Send a JSON record through stdin
 echo '{"nombre": "Ana", "poblacion": "Jaén"}' | kropland add clientes`

const editorTemplate = "{\n  \n}\n"

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new add command
func NewCmd(ctx *infra.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <collection>",
		Short:   "Add a new record",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringArrayVarP(&setFlags, "set", "s", nil, "a field of the record as key=value")

	return cmd
}

// GetFields returns the fields given as flags, piped through stdin, or
// written in the editor, in that order of preference
func GetFields(ctx *infra.Ctx, coll string, assignments []string, template string) (map[string]interface{}, error) {
	if len(assignments) > 0 {
		return utils.ParseAssignments(assignments, func(key string) bool {
			return models.IsStringField(coll, key)
		})
	}

	var content string
	if ui.IsPiped() {
		c, err := ui.ReadStdInput()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to get piped input")
		}
		content = c
	} else {
		fpath, err := ui.GetTmpContentPath(ctx.Paths.DataDir())
		if err != nil {
			return nil, errors.Wrap(err, "getting temporarily content file path")
		}

		c, err := ui.GetEditorInput(ctx.Editor, fpath, template)
		if err != nil {
			return nil, errors.Wrap(err, "Failed to get editor input")
		}
		content = c
	}

	return utils.ParseJSONObject(content)
}

func newRun(ctx *infra.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		coll := args[0]
		if err := validate.Collection(coll); err != nil {
			return errors.Wrap(err, "invalid collection")
		}

		fields, err := GetFields(ctx, coll, setFlags, editorTemplate)
		if err != nil {
			return errors.Wrap(err, "getting fields")
		}
		if err := validate.Record(coll, fields); err != nil {
			return errors.Wrap(err, "invalid record")
		}

		set, tr, err := ctx.Session(cmd.Context())
		if err != nil {
			return err
		}
		defer tr.Close()

		m, _ := set.ByName(coll)
		rec, err := m.CreateRecord(cmd.Context(), fields)
		if err != nil {
			return errors.Wrap(err, "Failed to write record")
		}

		log.Successf("added to %s\n", coll)
		output.RecordInfo(coll, rec)

		if !tr.GetState().IsOnline {
			log.Warnf("offline: the change is queued until the next sync\n")
		}

		return nil
	}
}
