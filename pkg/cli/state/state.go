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

// Package state persists values that must be readable before the database
// is opened
package state

import (
	"os"
	"sync"
	"time"

	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// State is the content of the state file
type State struct {
	LastSync string `yaml:"lastSync,omitempty"`
}

// File is a YAML state file
type File struct {
	Path string

	mu sync.Mutex
}

// New returns a state file at the given path
func New(path string) *File {
	return &File{Path: path}
}

func (f *File) load() (State, error) {
	var ret State

	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return ret, nil
	}
	if err != nil {
		return ret, errors.Wrap(err, "reading the state file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling the state file")
	}

	return ret, nil
}

// Load reads the state file. A missing file yields an empty state.
func (f *File) Load() (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load()
}

// LastSync returns the time of the last successful sync, or nil if the
// client never synced
func (f *File) LastSync() (*time.Time, error) {
	s, err := f.Load()
	if err != nil {
		return nil, err
	}
	if s.LastSync == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339Nano, s.LastSync)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing last sync '%s'", s.LastSync)
	}

	return &t, nil
}

// SetLastSync records the time of a successful sync
func (f *File) SetLastSync(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return err
	}
	s.LastSync = t.UTC().Format(time.RFC3339Nano)

	b, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "marshalling the state")
	}
	if err := utils.WriteFileAtomic(f.Path, b, 0644); err != nil {
		return errors.Wrap(err, "writing the state file")
	}

	return nil
}
