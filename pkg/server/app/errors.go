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

package app

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a record does not exist in the collection
	ErrNotFound = errors.New("not found")
	// ErrUnknownCollection is returned for a collection the server does not serve
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrInvalidID is returned for an id that cannot identify a record
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidData is returned when a payload is not a JSON object
	ErrInvalidData = errors.New("invalid data")
)
