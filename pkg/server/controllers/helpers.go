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

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/kropland/kropland/pkg/server/app"
	"github.com/kropland/kropland/pkg/server/log"
	"github.com/pkg/errors"
)

const (
	// maxBodyBytes bounds the size of a request payload
	maxBodyBytes = 1 << 20
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// errorResponse is the body of a failed API request
type errorResponse struct {
	Error string `json:"error"`
}

// parseQuery decodes the query string of the request into dst
func parseQuery(r *http.Request, dst interface{}) error {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return errors.Wrap(app.ErrInvalidData, err.Error())
	}

	return nil
}

// parseRequestData decodes the JSON body of the request into a record
func parseRequestData(w http.ResponseWriter, r *http.Request) (app.Record, error) {
	var ret app.Record

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&ret); err != nil {
		return nil, errors.Wrap(app.ErrInvalidData, err.Error())
	}
	if ret == nil {
		return nil, errors.Wrap(app.ErrInvalidData, "the payload must be a JSON object")
	}

	return ret, nil
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// getStatusCode maps the error to the status code of the response
func getStatusCode(err error) int {
	switch errors.Cause(err) {
	case app.ErrNotFound, app.ErrUnknownCollection:
		return http.StatusNotFound
	case app.ErrInvalidID, app.ErrInvalidData:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// handleJSONError logs the error and responds with its message
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := getStatusCode(err)

	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"err": err,
		}).Error(msg)

		message = http.StatusText(statusCode)
	}

	respondJSON(w, statusCode, errorResponse{Error: message})
}
