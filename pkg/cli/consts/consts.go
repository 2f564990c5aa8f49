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

// Package consts provides definitions of constants
package consts

var (
	// DBFileName is a filename for the on-device SQLite database
	DBFileName = "kropland.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "krop.yml"
	// StateFilename is the name of the file holding values that must be
	// readable before the database is opened
	StateFilename = "state.yml"
	// OfflineFlagFilename is the default name of the file whose presence
	// forces the client offline
	OfflineFlagFilename = "offline"

	// SystemSchema is the key for the schema version in the system table
	SystemSchema = "schema"
	// SystemSeeded is the key recording when demo data was seeded
	SystemSeeded = "seeded_at"

	// DebugEnvName is the environment variable that enables debug output
	DebugEnvName = "KROPLAND_DEBUG"
)
