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

// Package validate checks user input before it reaches the store
package validate

import (
	"strings"

	"github.com/kropland/kropland/pkg/cli/database"
	"github.com/kropland/kropland/pkg/cli/models"
	"github.com/pkg/errors"
)

var (
	// ErrCollectionUnknown is an error for a collection name the client does not hold
	ErrCollectionUnknown = errors.New("unknown collection")
	// ErrFieldRequired is an error for a missing required field
	ErrFieldRequired = errors.New("field is required")
	// ErrIDChange is an error for changes trying to set the id
	ErrIDChange = errors.New("the id cannot be changed")
	// ErrEmailInvalid is an error for a malformed email address
	ErrEmailInvalid = errors.New("invalid email")
	// ErrDateInvalid is an error for a date not in YYYY-MM-DD form
	ErrDateInvalid = errors.New("invalid date")
	// ErrNumberInvalid is an error for a negative or non numeric amount
	ErrNumberInvalid = errors.New("must be a non-negative number")
	// ErrEstadoInvalid is an error for an unknown estado
	ErrEstadoInvalid = errors.New("invalid estado")
	// ErrEmptyChanges is an error for an update without changes
	ErrEmptyChanges = errors.New("no changes")
)

var required = map[string][]string{
	database.CollectionClientes:    {"nombre"},
	database.CollectionFincas:      {"nombre", "clienteId"},
	database.CollectionVisitas:     {"clienteId", "fincaId", "fecha"},
	database.CollectionActividades: {"fincaId", "tipo", "fecha"},
}

var dateFields = []string{"fecha", "fechaAlta", "fechaCreacion"}

var numberFields = []string{"superficie", "costoTotal", "volumenCaldoPorHa", "duracionEstimada"}

var estados = map[string][]string{
	database.CollectionVisitas: {
		models.EstadoPendiente, models.EstadoConfirmada, models.EstadoRealizada, models.EstadoCancelada,
	},
	database.CollectionActividades: {
		models.ActividadPlanificada, models.ActividadEnProceso, models.ActividadCompletada, models.ActividadCancelada,
	},
}

// Collection validates a collection name
func Collection(name string) error {
	if !database.ValidCollection(name) {
		return errors.Wrapf(ErrCollectionUnknown, "'%s' (expected one of %s)", name, strings.Join(database.Collections, ", "))
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

// fields validates the fields present in rec
func fields(coll string, rec map[string]interface{}) error {
	if v, ok := rec["email"]; ok {
		s, isStr := v.(string)
		if !isStr || (s != "" && (!strings.Contains(s, "@") || strings.ContainsAny(s, " \n"))) {
			return errors.Wrapf(ErrEmailInvalid, "'%v'", v)
		}
	}

	for _, f := range dateFields {
		v, ok := rec[f]
		if !ok {
			continue
		}
		s, isStr := v.(string)
		if _, valid := models.ParseFecha(s); !isStr || !valid {
			return errors.Wrapf(ErrDateInvalid, "%s '%v'", f, v)
		}
	}

	for _, f := range numberFields {
		v, ok := rec[f]
		if !ok {
			continue
		}
		n, isNum := v.(float64)
		if !isNum || n < 0 {
			return errors.Wrapf(ErrNumberInvalid, "%s '%v'", f, v)
		}
	}

	if v, ok := rec["estado"]; ok && estados[coll] != nil {
		s, _ := v.(string)
		if !contains(estados[coll], s) {
			return errors.Wrapf(ErrEstadoInvalid, "'%v' (expected one of %s)", v, strings.Join(estados[coll], ", "))
		}
	}

	return nil
}

// Record validates a new record of the collection
func Record(coll string, rec map[string]interface{}) error {
	if err := Collection(coll); err != nil {
		return err
	}

	for _, f := range required[coll] {
		v, ok := rec[f]
		if s, isStr := v.(string); !ok || (isStr && strings.TrimSpace(s) == "") {
			return errors.Wrapf(ErrFieldRequired, "'%s'", f)
		}
	}

	return fields(coll, rec)
}

// Changes validates the changes to a record of the collection
func Changes(coll string, changes map[string]interface{}) error {
	if err := Collection(coll); err != nil {
		return err
	}
	if len(changes) == 0 {
		return ErrEmptyChanges
	}
	if _, ok := changes["id"]; ok {
		return ErrIDChange
	}

	for _, f := range required[coll] {
		v, ok := changes[f]
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return errors.Wrapf(ErrFieldRequired, "'%s'", f)
		}
	}

	return fields(coll, changes)
}
