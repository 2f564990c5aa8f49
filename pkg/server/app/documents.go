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

package app

import (
	"time"

	"github.com/kropland/kropland/pkg/server/database"
	"github.com/kropland/kropland/pkg/server/helpers"
	"github.com/kropland/kropland/pkg/server/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	fieldID        = "id"
	fieldCreatedAt = "createdAt"
	fieldClienteID = "clienteId"
	fieldFincaID   = "fincaId"
)

// Record is a JSON object stored in a collection
type Record map[string]interface{}

// ListParams narrows the records of a list. Zero values match everything.
type ListParams struct {
	ClienteID string `schema:"clienteId"`
	FincaID   string `schema:"fincaId"`
}

func fieldEquals(r Record, field, value string) bool {
	s, ok := r[field].(string)
	return ok && s == value
}

// Match reports whether the record satisfies every parameter
func (p ListParams) Match(r Record) bool {
	if p.ClienteID != "" && !fieldEquals(r, fieldClienteID, p.ClienteID) {
		return false
	}
	if p.FincaID != "" && !fieldEquals(r, fieldFincaID, p.FincaID) {
		return false
	}

	return true
}

func (a *App) findDocument(tx *gorm.DB, coll, id string) (database.Document, error) {
	var doc database.Document

	err := tx.Where("collection = ? AND id = ?", coll, id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, errors.Wrapf(ErrNotFound, "%s %s", coll, id)
	}
	if err != nil {
		return doc, errors.Wrapf(err, "finding %s %s", coll, id)
	}

	return doc, nil
}

// List returns the records of the collection in creation order
func (a *App) List(coll string, p ListParams) ([]Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}

	var docs []database.Document
	if err := a.DB.Where("collection = ?", coll).Order("created_at ASC, id ASC").Find(&docs).Error; err != nil {
		return nil, errors.Wrapf(err, "listing %s", coll)
	}

	ret := []Record{}
	for _, doc := range docs {
		r, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		if !p.Match(r) {
			continue
		}

		ret = append(ret, r)
	}

	return ret, nil
}

// Get returns a record of the collection
func (a *App) Get(coll, id string) (Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	doc, err := a.findDocument(a.DB, coll, id)
	if err != nil {
		return nil, err
	}

	return decodeDocument(doc)
}

// Create stores a new record. The server assigns the id and the creation
// time, replacing any value sent by the client.
func (a *App) Create(coll string, data Record) (Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.Wrap(ErrInvalidData, "empty payload")
	}

	id, err := helpers.GenUUID()
	if err != nil {
		return nil, err
	}
	now := a.Clock.Now().UTC()

	r := merge(data, Record{
		fieldID:        id,
		fieldCreatedAt: now.Format(time.RFC3339Nano),
	})
	encoded, err := encodeRecord(r)
	if err != nil {
		return nil, err
	}

	doc := database.Document{
		Collection: coll,
		ID:         id,
		Data:       encoded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.DB.Create(&doc).Error; err != nil {
		return nil, errors.Wrapf(err, "inserting into %s", coll)
	}

	log.WithFields(log.Fields{
		"collection": coll,
		"id":         id,
	}).Debug("Record created.")

	return r, nil
}

// Update merges the partial record into the stored one. The id cannot change.
func (a *App) Update(coll, id string, partial Record) (Record, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	var ret Record
	err := a.DB.Transaction(func(tx *gorm.DB) error {
		doc, err := a.findDocument(tx, coll, id)
		if err != nil {
			return err
		}
		existing, err := decodeDocument(doc)
		if err != nil {
			return err
		}

		r := merge(existing, partial)
		r[fieldID] = id

		encoded, err := encodeRecord(r)
		if err != nil {
			return err
		}
		if err := tx.Model(&doc).Updates(map[string]interface{}{
			"data":       encoded,
			"updated_at": a.Clock.Now().UTC(),
		}).Error; err != nil {
			return errors.Wrapf(err, "updating %s %s", coll, id)
		}

		ret = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ret, nil
}

// Delete removes a record of the collection
func (a *App) Delete(coll, id string) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}

	res := a.DB.Where("collection = ? AND id = ?", coll, id).Delete(&database.Document{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "deleting %s %s", coll, id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "%s %s", coll, id)
	}

	log.WithFields(log.Fields{
		"collection": coll,
		"id":         id,
	}).Debug("Record deleted.")

	return nil
}
