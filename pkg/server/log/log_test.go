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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kropland/kropland/pkg/assert"
)

func TestSetLevel(t *testing.T) {
	// Reset to default after test
	defer SetLevel(LevelInfo)

	SetLevel(LevelDebug)
	assert.Equal(t, Level(), LevelDebug, "level mismatch")

	SetLevel(LevelError)
	assert.Equal(t, Level(), LevelError, "level mismatch")
}

func TestShouldLog(t *testing.T) {
	defer SetLevel(LevelInfo)

	testCases := []struct {
		currentLevel string
		logLevel     string
		expected     bool
	}{
		{LevelDebug, LevelDebug, true},
		{LevelDebug, LevelError, true},
		{LevelInfo, LevelDebug, false},
		{LevelInfo, LevelInfo, true},
		{LevelInfo, LevelWarn, true},
		{LevelWarn, LevelInfo, false},
		{LevelWarn, LevelError, true},
		{LevelError, LevelWarn, false},
		{LevelError, LevelError, true},
		// unknown levels behave like info
		{"verbose", LevelDebug, false},
		{"verbose", LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.currentLevel+"/"+tc.logLevel, func(t *testing.T) {
			SetLevel(tc.currentLevel)
			assert.Equal(t, shouldLog(tc.logLevel), tc.expected, "result mismatch")
		})
	}
}

func TestValidLevel(t *testing.T) {
	assert.Equal(t, ValidLevel(LevelWarn), true, "warn should be valid")
	assert.Equal(t, ValidLevel(""), false, "empty should be invalid")
	assert.Equal(t, ValidLevel("trace"), false, "trace should be invalid")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)

	WithFields(Fields{
		"collection": "fincas",
		"err":        errors.New("boom"),
	}).Warn("request failed")
	Debug("dropped at the info level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 1, "line count mismatch")

	var got map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, got["level"], LevelWarn, "level mismatch")
	assert.Equal(t, got["msg"], "request failed", "msg mismatch")
	assert.Equal(t, got["collection"], "fincas", "collection mismatch")
	assert.Equal(t, got["err"], "boom", "error should be serialized as its message")
}
