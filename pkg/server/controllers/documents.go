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
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kropland/kropland/pkg/server/app"
)

// NewDocuments creates a new Documents controller
func NewDocuments(app *app.App) *Documents {
	return &Documents{app: app}
}

// Documents serves the records of every collection
type Documents struct {
	app *app.App
}

func routeParams(r *http.Request) (string, string) {
	vars := mux.Vars(r)

	return vars["collection"], vars["id"]
}

// Index handles GET /api/v1/{collection}
func (d *Documents) Index(w http.ResponseWriter, r *http.Request) {
	coll, _ := routeParams(r)

	var params app.ListParams
	if err := parseQuery(r, &params); err != nil {
		handleJSONError(w, err, "parsing the query")
		return
	}

	records, err := d.app.List(coll, params)
	if err != nil {
		handleJSONError(w, err, fmt.Sprintf("listing %s", coll))
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Show handles GET /api/v1/{collection}/{id}
func (d *Documents) Show(w http.ResponseWriter, r *http.Request) {
	coll, id := routeParams(r)

	record, err := d.app.Get(coll, id)
	if err != nil {
		handleJSONError(w, err, fmt.Sprintf("getting %s %s", coll, id))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Create handles POST /api/v1/{collection}
func (d *Documents) Create(w http.ResponseWriter, r *http.Request) {
	coll, _ := routeParams(r)

	data, err := parseRequestData(w, r)
	if err != nil {
		handleJSONError(w, err, "parsing the payload")
		return
	}

	record, err := d.app.Create(coll, data)
	if err != nil {
		handleJSONError(w, err, fmt.Sprintf("creating in %s", coll))
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// Update handles PATCH /api/v1/{collection}/{id}
func (d *Documents) Update(w http.ResponseWriter, r *http.Request) {
	coll, id := routeParams(r)

	partial, err := parseRequestData(w, r)
	if err != nil {
		handleJSONError(w, err, "parsing the payload")
		return
	}

	record, err := d.app.Update(coll, id, partial)
	if err != nil {
		handleJSONError(w, err, fmt.Sprintf("updating %s %s", coll, id))
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/{collection}/{id}
func (d *Documents) Delete(w http.ResponseWriter, r *http.Request) {
	coll, id := routeParams(r)

	if err := d.app.Delete(coll, id); err != nil {
		handleJSONError(w, err, fmt.Sprintf("deleting %s %s", coll, id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
