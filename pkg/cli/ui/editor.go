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

// Package ui provides the user interface for the program
package ui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/pkg/errors"
)

// TmpContentFileBase is the base name of the temporary files holding
// records being edited
const TmpContentFileBase = "KROPLAND_TMPCONTENT"

// GetTmpContentPath returns a path in dir, free of other editing sessions,
// to the temporary file holding the record being edited
func GetTmpContentPath(dir string) (string, error) {
	for i := 0; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d.json", TmpContentFileBase, i))

		ok, err := utils.FileExists(candidate)
		if err != nil {
			return "", errors.Wrapf(err, "checking if file exists at %s", candidate)
		}
		if !ok {
			return candidate, nil
		}
	}
}

// GetEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func GetEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -w"
	case "mate":
		ret = "mate -w"
	case "vim", "nano", "emacs", "nvim", "hx":
		ret = editor
	default:
		ret = "vi"
	}

	return ret
}

func newEditorCmd(editor, fpath string) (*exec.Cmd, error) {
	args := strings.Fields(editor)
	if len(args) == 0 {
		return nil, errors.New("no editor command")
	}
	args = append(args, fpath)

	return exec.Command(args[0], args[1:]...), nil
}

// GetEditorInput writes the initial content to fpath, launches the editor on
// it and returns the content once the editor exits. The file is removed.
func GetEditorInput(editor, fpath, initial string) (string, error) {
	if err := os.WriteFile(fpath, []byte(initial), 0600); err != nil {
		return "", errors.Wrap(err, "creating a temporary content file")
	}
	defer os.Remove(fpath)

	cmd, err := newEditorCmd(editor, fpath)
	if err != nil {
		return "", errors.Wrap(err, "creating an editor command")
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return "", errors.Wrapf(err, "launching an editor")
	}
	if err := cmd.Wait(); err != nil {
		return "", errors.Wrap(err, "waiting for the editor")
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		return "", errors.Wrap(err, "reading the temporary content file")
	}

	return string(b), nil
}
