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

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kropland/kropland/pkg/assert"
	"github.com/kropland/kropland/pkg/server/log"
)

func TestGlobalRecovers(t *testing.T) {
	var buf bytes.Buffer
	prev := log.SetOutput(&buf)
	defer log.SetOutput(prev)

	h := Global(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/api/v1/fincas", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusInternalServerError, "status mismatch")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 2, "the panic and the failed request should be logged")

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, entry["path"], "/api/v1/fincas", "path mismatch")
	assert.Equal(t, entry["status"], float64(http.StatusInternalServerError), "status mismatch")
}

func TestApplyLimitDisabled(t *testing.T) {
	h := ApplyLimit(okHandler, false)

	for range serverRateLimitBurst + 5 {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.168.1.9:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, w.Code, http.StatusOK, "requests should not be limited")
	}
}
