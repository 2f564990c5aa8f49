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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kropland/kropland/pkg/assert"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestLimit(t *testing.T) {
	limiter := NewRateLimiter(serverRateLimitPerSecond, serverRateLimitBurst)
	middleware := limiter.Limit(http.HandlerFunc(okHandler))

	// Make burst + 5 requests from same IP
	numRequests := serverRateLimitBurst + 5
	blockedCount := 0

	for range numRequests {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Code == http.StatusTooManyRequests {
			blockedCount++
		}
	}

	// At least some requests after burst should be blocked
	if blockedCount == 0 {
		t.Error("Expected some requests to be rate limited after burst")
	}
}

func TestLimit_DifferentIPs(t *testing.T) {
	limiter := NewRateLimiter(serverRateLimitPerSecond, serverRateLimitBurst)
	middleware := limiter.Limit(http.HandlerFunc(okHandler))

	// Exhaust rate limit for first IP
	for range serverRateLimitBurst + 5 {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()
		middleware.ServeHTTP(w, req)
	}

	// Request from different IP should still succeed
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.2:5678"
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusOK, "request from a different IP should succeed")
}

func TestCleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	limiter.getVisitor("10.0.0.1", now)
	limiter.getVisitor("10.0.0.2", now.Add(2*time.Minute))

	limiter.cleanup(now.Add(4*time.Minute), visitorTTL)

	_, first := limiter.visitors["10.0.0.1"]
	_, second := limiter.visitors["10.0.0.2"]
	assert.Equal(t, first, false, "idle visitor should be removed")
	assert.Equal(t, second, true, "recent visitor should be kept")
}

func TestLookupIP(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{
			name:     "remote address",
			remote:   "10.1.1.1:5555",
			expected: "10.1.1.1",
		},
		{
			name:     "real ip",
			headers:  map[string]string{"X-Real-IP": "10.2.2.2"},
			remote:   "10.1.1.1:5555",
			expected: "10.2.2.2",
		},
		{
			name:     "forwarded for wins",
			headers:  map[string]string{"X-Real-IP": "10.2.2.2", "X-Forwarded-For": "10.3.3.3, 10.4.4.4"},
			remote:   "10.1.1.1:5555",
			expected: "10.3.3.3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, lookupIP(req), tc.expected, "ip mismatch")
		})
	}
}
