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

package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/pkg/errors"
)

func TestGetTmpContentPath(t *testing.T) {
	testCases := []struct {
		name     string
		existing []string
		expected string
	}{
		{
			name:     "no collision",
			existing: nil,
			expected: "KROPLAND_TMPCONTENT_0.json",
		},
		{
			name:     "one existing session",
			existing: []string{"KROPLAND_TMPCONTENT_0.json"},
			expected: "KROPLAND_TMPCONTENT_1.json",
		},
		{
			name:     "two existing sessions",
			existing: []string{"KROPLAND_TMPCONTENT_0.json", "KROPLAND_TMPCONTENT_1.json"},
			expected: "KROPLAND_TMPCONTENT_2.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tc.existing {
				if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
					t.Fatal(errors.Wrap(err, "preparing the conflicting file"))
				}
			}

			res, err := GetTmpContentPath(dir)
			if err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			assert.Equal(t, res, filepath.Join(dir, tc.expected), "filename did not match")
		})
	}
}

func TestGetEditorCommand(t *testing.T) {
	testCases := []struct {
		env      string
		expected string
	}{
		{env: "", expected: "vi"},
		{env: "vim", expected: "vim"},
		{env: "subl", expected: "subl -n -w"},
		{env: "code", expected: "code -w"},
		{env: "unknown-editor", expected: "vi"},
	}

	for _, tc := range testCases {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv("EDITOR", tc.env)

			assert.Equal(t, GetEditorCommand(), tc.expected, "command mismatch")
		})
	}
}

func TestGetEditorInput(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "KROPLAND_TMPCONTENT_0.json")

	// "true" leaves the file as it was written
	got, err := GetEditorInput("true", fpath, `{"nombre":"Ana"}`)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, got, `{"nombre":"Ana"}`, "content mismatch")
	_, err = os.Stat(fpath)
	assert.Equal(t, os.IsNotExist(err), true, "temporary file should be removed")
}
