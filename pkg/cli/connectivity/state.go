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

package connectivity

import (
	"time"
)

// State is the connectivity and synchronization status of the client
type State struct {
	IsOnline  bool
	IsSyncing bool
	LastSync  *time.Time
	SyncError *string
}

// clone returns a copy that shares no pointers with s
func (s State) clone() State {
	ret := s
	if s.LastSync != nil {
		t := *s.LastSync
		ret.LastSync = &t
	}
	if s.SyncError != nil {
		e := *s.SyncError
		ret.SyncError = &e
	}

	return ret
}

func (s State) equal(o State) bool {
	if s.IsOnline != o.IsOnline || s.IsSyncing != o.IsSyncing {
		return false
	}

	if (s.LastSync == nil) != (o.LastSync == nil) {
		return false
	}
	if s.LastSync != nil && !s.LastSync.Equal(*o.LastSync) {
		return false
	}

	if (s.SyncError == nil) != (o.SyncError == nil) {
		return false
	}
	if s.SyncError != nil && *s.SyncError != *o.SyncError {
		return false
	}

	return true
}

// Label is a short human readable description of the state
func (s State) Label() string {
	switch {
	case !s.IsOnline:
		return "offline"
	case s.IsSyncing:
		return "syncing"
	case s.SyncError != nil:
		return "online (last sync failed)"
	default:
		return "online"
	}
}
