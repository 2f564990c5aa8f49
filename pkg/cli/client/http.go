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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrContentTypeMismatch is returned when the server responds with an unexpected content type
var ErrContentTypeMismatch = errors.New("content type mismatch")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// Unwrap maps the status code to the sentinel errors of the package, so that
// errors.Is(err, ErrNotFound) holds for a 404
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return ErrRemoteUnavailable
	}

	return nil
}

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100

	apiPrefix = "/api/v1"
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Wait for rate limiter to allow the request
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	// Calculate interval from rate: 1 second / requests per second
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// HTTP is the API served by the kropland server
type HTTP struct {
	Endpoint   string
	Version    string
	HTTPClient *http.Client
}

// NewHTTP returns a client for the server at the given endpoint
func NewHTTP(endpoint, version string) *HTTP {
	return &HTTP{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Version:    version,
		HTTPClient: NewRateLimitedHTTPClient(),
	}
}

func collectionPath(coll string, id string) string {
	p := fmt.Sprintf("%s/%s", apiPrefix, url.PathEscape(coll))
	if id != "" {
		p = fmt.Sprintf("%s/%s", p, url.PathEscape(id))
	}

	return p
}

func (c *HTTP) getReq(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshalling payload")
		}
		r = bytes.NewReader(b)
	}

	endpoint := fmt.Sprintf("%s%s", c.Endpoint, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.Version)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeApplicationJSON)
	}

	return req, nil
}

// checkRespErr returns an HTTPError if the response indicates an error
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	bodyStr := string(body)
	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(bodyStr, "\n"),
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")
	if !strings.HasPrefix(got, contentTypeApplicationJSON) {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint and
// decodes the JSON response into dest, unless dest is nil
func (c *HTTP) doReq(ctx context.Context, method, path string, body, dest interface{}) error {
	req, err := c.getReq(ctx, method, path, body)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	res, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(ErrRemoteUnavailable, err.Error())
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}
	if dest == nil {
		return nil
	}

	if err = checkContentType(res); err != nil {
		return errors.Wrap(err, "unexpected Content-Type")
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decoding the response body")
	}

	return nil
}

// List implements API
func (c *HTTP) List(ctx context.Context, coll string) ([]database.Record, error) {
	var ret []database.Record
	if err := c.doReq(ctx, http.MethodGet, collectionPath(coll, ""), nil, &ret); err != nil {
		return nil, errors.Wrapf(err, "listing %s", coll)
	}
	if ret == nil {
		ret = []database.Record{}
	}

	return ret, nil
}

// Get implements API
func (c *HTTP) Get(ctx context.Context, coll, id string) (database.Record, error) {
	var ret database.Record
	if err := c.doReq(ctx, http.MethodGet, collectionPath(coll, id), nil, &ret); err != nil {
		return nil, errors.Wrapf(err, "getting %s %s", coll, id)
	}

	return ret, nil
}

// Create implements API
func (c *HTTP) Create(ctx context.Context, coll string, data database.Record) (database.Record, error) {
	var ret database.Record
	if err := c.doReq(ctx, http.MethodPost, collectionPath(coll, ""), data, &ret); err != nil {
		return nil, errors.Wrapf(err, "creating in %s", coll)
	}

	return ret, nil
}

// Update implements API
func (c *HTTP) Update(ctx context.Context, coll, id string, partial database.Record) (database.Record, error) {
	var ret database.Record
	if err := c.doReq(ctx, http.MethodPatch, collectionPath(coll, id), partial, &ret); err != nil {
		return nil, errors.Wrapf(err, "updating %s %s", coll, id)
	}

	return ret, nil
}

// Delete implements API
func (c *HTTP) Delete(ctx context.Context, coll, id string) error {
	if err := c.doReq(ctx, http.MethodDelete, collectionPath(coll, id), nil, nil); err != nil {
		return errors.Wrapf(err, "deleting %s %s", coll, id)
	}

	return nil
}
