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

package database

import (
	"time"
)

const (
	// CollectionClientes holds the farmers served by the technicians
	CollectionClientes = "clientes"
	// CollectionFincas holds the farms of the clientes
	CollectionFincas = "fincas"
	// CollectionVisitas holds the technical visits to the fincas
	CollectionVisitas = "visitas"
	// CollectionActividades holds the field works done on the fincas
	CollectionActividades = "actividades"
)

// Collections are the collections the server accepts
var Collections = []string{
	CollectionClientes,
	CollectionFincas,
	CollectionVisitas,
	CollectionActividades,
}

// ValidCollection reports whether the name is one of Collections
func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}

	return false
}

// Document is a record of a collection. Data is the JSON object of the
// record, including its id.
type Document struct {
	Collection string    `gorm:"primaryKey;type:varchar(32)"`
	ID         string    `gorm:"primaryKey;type:varchar(64)"`
	Data       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}
