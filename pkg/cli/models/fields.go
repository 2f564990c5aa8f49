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

package models

import (
	"reflect"
	"strings"

	"github.com/kropland/kropland/pkg/cli/database"
)

var entityTypes = map[string]reflect.Type{
	database.CollectionClientes:    reflect.TypeOf(Cliente{}),
	database.CollectionFincas:      reflect.TypeOf(Finca{}),
	database.CollectionVisitas:     reflect.TypeOf(Visita{}),
	database.CollectionActividades: reflect.TypeOf(Actividad{}),
}

// IsStringField reports whether the top level JSON field of the records in
// the collection holds a string
func IsStringField(coll, field string) bool {
	t, ok := entityTypes[coll]
	if !ok {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == field {
			return f.Type.Kind() == reflect.String
		}
	}

	return false
}
