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

// Package config reads and writes the field client configuration file
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kropland/kropland/pkg/cli/consts"
	"github.com/kropland/kropland/pkg/cli/utils"
	"github.com/kropland/kropland/pkg/dirs"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Remote kinds
const (
	// RemoteSimulated is the in-process simulated service
	RemoteSimulated = "simulated"
	// RemoteHTTP is the kropland server reached over HTTP
	RemoteHTTP = "http"
)

// Defaults
const (
	DefaultAPIEndpoint      = "http://localhost:3001"
	DefaultPollInterval     = 3 * time.Second
	DefaultAutoSyncInterval = 5 * time.Minute
	DefaultInitialSyncDelay = time.Second
	DefaultRequestTimeout   = 15 * time.Second
	DefaultLatency          = 300 * time.Millisecond
	DefaultFailureRate      = 0.05
)

// Config holds the field client configuration
type Config struct {
	Remote           string        `yaml:"remote"`
	APIEndpoint      string        `yaml:"apiEndpoint"`
	PollInterval     time.Duration `yaml:"pollInterval"`
	AutoSyncInterval time.Duration `yaml:"autoSyncInterval"`
	InitialSyncDelay time.Duration `yaml:"initialSyncDelay"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
	Latency          time.Duration `yaml:"latency"`
	FailureRate      float64       `yaml:"failureRate"`
	OfflineFlag      string        `yaml:"offlineFlag"`
	// Editor is the command opening records for editing. $EDITOR is used if empty.
	Editor string `yaml:"editor,omitempty"`
}

// Default returns the configuration written on first run. The offline flag
// file lives in the given data directory.
func Default(dataDir string) Config {
	return Config{
		Remote:           RemoteSimulated,
		APIEndpoint:      DefaultAPIEndpoint,
		PollInterval:     DefaultPollInterval,
		AutoSyncInterval: DefaultAutoSyncInterval,
		InitialSyncDelay: DefaultInitialSyncDelay,
		RequestTimeout:   DefaultRequestTimeout,
		Latency:          DefaultLatency,
		FailureRate:      DefaultFailureRate,
		OfflineFlag:      filepath.Join(dataDir, consts.OfflineFlagFilename),
	}
}

// fillDefaults sets every unset duration and string. FailureRate is kept as
// is since zero is a meaningful value.
func (c Config) fillDefaults(dataDir string) Config {
	d := Default(dataDir)

	if c.Remote == "" {
		c.Remote = d.Remote
	}
	if c.APIEndpoint == "" {
		c.APIEndpoint = d.APIEndpoint
	}
	if c.PollInterval == 0 {
		c.PollInterval = d.PollInterval
	}
	if c.AutoSyncInterval == 0 {
		c.AutoSyncInterval = d.AutoSyncInterval
	}
	if c.InitialSyncDelay == 0 {
		c.InitialSyncDelay = d.InitialSyncDelay
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.OfflineFlag == "" {
		c.OfflineFlag = d.OfflineFlag
	}

	return c
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if c.Remote != RemoteSimulated && c.Remote != RemoteHTTP {
		return errors.Errorf("unknown remote '%s'", c.Remote)
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return errors.Errorf("failureRate must be between 0 and 1, got %v", c.FailureRate)
	}
	if c.PollInterval < 0 || c.AutoSyncInterval < 0 || c.RequestTimeout < 0 || c.Latency < 0 {
		return errors.New("intervals must not be negative")
	}

	return nil
}

// GetPath returns the path to the config file under the given config home
func GetPath(configHome string) string {
	return filepath.Join(configHome, dirs.AppDirName, consts.ConfigFilename)
}

// Read reads the config file and fills unset values with defaults
func Read(path, dataDir string) (Config, error) {
	var ret Config

	b, err := os.ReadFile(path)
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(b, &ret)
	if err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	ret = ret.fillDefaults(dataDir)
	if err := ret.Validate(); err != nil {
		return ret, errors.Wrap(err, "invalid config")
	}

	return ret, nil
}

// Write writes the config to the config file
func Write(path string, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	err = utils.WriteFileAtomic(path, b, 0644)
	if err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// Init writes the default config at the path unless a file already exists
func Init(path, dataDir string) error {
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	if err := Write(path, Default(dataDir)); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}
