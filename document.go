// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package couchdb3

import (
	"encoding/json"
	"net/http"

	"github.com/go-couchdb3/couchdb3/internal"
)

// Document is a CouchDB document, decoded as a generic map. The _id and _rev
// members are accessible through the ID and Rev methods. No schema is
// imposed; any JSON-serializable value may be stored under any other key.
type Document map[string]interface{}

// ID returns the document's _id, or "" if unset.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Rev returns the document's _rev, or "" if unset.
func (d Document) Rev() string {
	rev, _ := d["_rev"].(string)
	return rev
}

// SetID sets the document's _id.
func (d Document) SetID(id string) {
	d["_id"] = id
}

// SetRev sets the document's _rev.
func (d Document) SetRev(rev string) {
	d["_rev"] = rev
}

// docMeta extracts the _id and _rev from an arbitrary document. Maps are
// read directly; any other type goes through a JSON round-trip, so structs
// with _id/_rev JSON tags work as well.
func docMeta(doc interface{}) (id, rev string, err error) {
	switch t := doc.(type) {
	case Document:
		return t.ID(), t.Rev(), nil
	case map[string]interface{}:
		id, _ := t["_id"].(string)
		rev, _ := t["_rev"].(string)
		return id, rev, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", "", &internal.Error{Status: http.StatusBadRequest, Err: err}
	}
	var meta struct {
		ID  string `json:"_id"`
		Rev string `json:"_rev"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", "", &internal.Error{Status: http.StatusBadRequest, Err: err}
	}
	return meta.ID, meta.Rev, nil
}
