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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kropland/kropland/pkg/server/app"
	mw "github.com/kropland/kropland/pkg/server/middleware"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// NewAPIRoutes returns the routes served under /api
func NewAPIRoutes(c *Controllers) []Route {
	return []Route{
		{"GET", "/v1/{collection}", c.Documents.Index, true},
		{"POST", "/v1/{collection}", c.Documents.Create, true},
		{"GET", "/v1/{collection}/{id}", c.Documents.Show, true},
		{"PATCH", "/v1/{collection}/{id}", c.Documents.Update, true},
		{"DELETE", "/v1/{collection}/{id}", c.Documents.Delete, true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app.RateLimit && route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, c *Controllers) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/health", c.Health.Index).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.NotFoundHandler = router.NotFoundHandler
	apiRouter.MethodNotAllowedHandler = router.MethodNotAllowedHandler
	registerRoutes(apiRouter, mw.APIMw, app, NewAPIRoutes(c))

	return mw.Global(router), nil
}
