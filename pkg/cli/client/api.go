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

// Package client talks to the remote service the field client synchronizes with
package client

import (
	"context"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when the target record does not exist remotely
	ErrNotFound = errors.New("not found")
	// ErrRemoteUnavailable is returned when the remote service could not be reached
	ErrRemoteUnavailable = errors.New("remote unavailable")
)

// API is the remote service. Every call may fail and callers must not assume
// success.
type API interface {
	List(ctx context.Context, coll string) ([]database.Record, error)
	Get(ctx context.Context, coll, id string) (database.Record, error)
	Create(ctx context.Context, coll string, data database.Record) (database.Record, error)
	Update(ctx context.Context, coll, id string, partial database.Record) (database.Record, error)
	Delete(ctx context.Context, coll, id string) error
}
