/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of Dnote.
 *
 * Dnote is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * Dnote is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with Dnote.  If not, see <https://www.gnu.org/licenses/>.
 */

package app

import (
	"encoding/json"

	"github.com/kropland/kropland/pkg/server/database"
	"github.com/kropland/kropland/pkg/server/helpers"
	"github.com/pkg/errors"
)

func checkCollection(coll string) error {
	if !database.ValidCollection(coll) {
		return errors.Wrapf(ErrUnknownCollection, "'%s'", coll)
	}

	return nil
}

func checkID(id string) error {
	if !helpers.ValidID(id) {
		return errors.Wrapf(ErrInvalidID, "'%s'", id)
	}

	return nil
}

func decodeDocument(doc database.Document) (Record, error) {
	var ret Record
	if err := json.Unmarshal([]byte(doc.Data), &ret); err != nil {
		return nil, errors.Wrapf(err, "decoding %s %s", doc.Collection, doc.ID)
	}
	if ret == nil {
		ret = Record{}
	}
	ret[fieldID] = doc.ID

	return ret, nil
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "encoding the record")
	}

	return string(b), nil
}

// merge returns a copy of base with the top level fields of partial applied
func merge(base, partial Record) Record {
	ret := make(Record, len(base)+len(partial))
	for k, v := range base {
		ret[k] = v
	}
	for k, v := range partial {
		ret[k] = v
	}

	return ret
}
