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

package utils

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ParseAssignments turns key=value arguments into record fields. A value
// that is valid JSON keeps its type, anything else is taken as a string.
// Values of the keys for which isString reports true are always strings.
func ParseAssignments(args []string, isString func(key string) bool) (map[string]interface{}, error) {
	ret := map[string]interface{}{}

	for _, arg := range args {
		idx := strings.Index(arg, "=")
		if idx <= 0 {
			return nil, errors.Errorf("invalid assignment '%s' (expected key=value)", arg)
		}

		key := strings.TrimSpace(arg[:idx])
		raw := arg[idx+1:]

		var v interface{}
		if isString != nil && isString(key) {
			v = raw
		} else if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}

		ret[key] = v
	}

	return ret, nil
}

// ParseJSONObject decodes a JSON object into record fields
func ParseJSONObject(s string) (map[string]interface{}, error) {
	var ret map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &ret); err != nil {
		return nil, errors.Wrap(err, "decoding a JSON object")
	}
	if ret == nil {
		return nil, errors.New("expected a JSON object")
	}

	return ret, nil
}
