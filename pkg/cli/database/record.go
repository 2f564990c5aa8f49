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
	"encoding/json"

	"github.com/pkg/errors"
)

// Collection names
const (
	CollectionClientes    = "clientes"
	CollectionFincas      = "fincas"
	CollectionVisitas     = "visitas"
	CollectionActividades = "actividades"
)

// Collections lists every record collection held by the store
var Collections = []string{
	CollectionClientes,
	CollectionFincas,
	CollectionVisitas,
	CollectionActividades,
}

// ValidCollection reports whether the name is one of the record collections
func ValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}

	return false
}

// Record is a JSON document identified by its "id" field
type Record map[string]interface{}

// ID returns the id of the record, or an empty string if it has none
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	b, err := json.Marshal(r)
	if err != nil {
		// unmarshalable values cannot reach the store; fall back to a shallow copy
		ret := make(Record, len(r))
		for k, v := range r {
			ret[k] = v
		}
		return ret
	}

	var ret Record
	if err := json.Unmarshal(b, &ret); err != nil {
		return nil
	}

	return ret
}

// Merge returns a new record holding the fields of old overwritten by the
// fields of changes. Neither argument is modified.
func Merge(old, changes Record) Record {
	ret := make(Record, len(old)+len(changes))
	for k, v := range old {
		ret[k] = v
	}
	for k, v := range changes {
		ret[k] = v
	}

	return ret
}

// ReplaceID returns the record with every string value equal to oldID,
// however deeply nested, replaced by newID. The record is not modified; the
// boolean reports whether a value was replaced.
func ReplaceID(r Record, oldID, newID string) (Record, bool) {
	if oldID == "" || r == nil {
		return r, false
	}

	v, changed := replaceString(map[string]interface{}(r), oldID, newID)
	if !changed {
		return r, false
	}

	return Record(v.(map[string]interface{})), true
}

func replaceString(v interface{}, oldID, newID string) (interface{}, bool) {
	switch t := v.(type) {
	case string:
		if t == oldID {
			return newID, true
		}
	case Record:
		return replaceString(map[string]interface{}(t), oldID, newID)
	case map[string]interface{}:
		var ret map[string]interface{}
		for k, val := range t {
			nv, ok := replaceString(val, oldID, newID)
			if !ok {
				continue
			}
			if ret == nil {
				ret = make(map[string]interface{}, len(t))
				for kk, vv := range t {
					ret[kk] = vv
				}
			}
			ret[k] = nv
		}
		if ret != nil {
			return ret, true
		}
	case []interface{}:
		var ret []interface{}
		for i, val := range t {
			nv, ok := replaceString(val, oldID, newID)
			if !ok {
				continue
			}
			if ret == nil {
				ret = append([]interface{}{}, t...)
			}
			ret[i] = nv
		}
		if ret != nil {
			return ret, true
		}
	}

	return v, false
}

// ToRecord converts a value into a record through its JSON encoding
func ToRecord(v interface{}) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling")
	}

	var ret Record
	if err := json.Unmarshal(b, &ret); err != nil {
		return nil, errors.Wrap(err, "unmarshalling into a record")
	}

	return ret, nil
}

// FromRecord decodes the record into the value pointed to by dest
func FromRecord(r Record, dest interface{}) error {
	b, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshalling the record")
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return errors.Wrap(err, "unmarshalling the record")
	}

	return nil
}
