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
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestDocumentAccessors(t *testing.T) {
	doc := Document{"cow": "moo"}
	if doc.ID() != "" || doc.Rev() != "" {
		t.Error("expected empty meta for fresh document")
	}
	doc.SetID("cow")
	doc.SetRev("1-xxx")
	if id := doc.ID(); id != "cow" {
		t.Errorf("Unexpected id: %s", id)
	}
	if rev := doc.Rev(); rev != "1-xxx" {
		t.Errorf("Unexpected rev: %s", rev)
	}
	// Non-string values are treated as unset.
	doc["_id"] = 1234
	if id := doc.ID(); id != "" {
		t.Errorf("Unexpected id: %s", id)
	}
}

func TestDocMeta(t *testing.T) {
	type test struct {
		doc    interface{}
		id     string
		rev    string
		status int
		err    string
	}
	tests := testy.NewTable()
	tests.Add("Document", test{
		doc: Document{"_id": "cow", "_rev": "1-xxx"},
		id:  "cow",
		rev: "1-xxx",
	})
	tests.Add("map", test{
		doc: map[string]interface{}{"_id": "cow"},
		id:  "cow",
	})
	tests.Add("struct with tags", test{
		doc: struct {
			ID  string `json:"_id"`
			Rev string `json:"_rev,omitempty"`
			Moo string `json:"moo"`
		}{ID: "cow", Rev: "2-yyy", Moo: "moo"},
		id:  "cow",
		rev: "2-yyy",
	})
	tests.Add("struct without meta", test{
		doc: struct {
			Moo string `json:"moo"`
		}{Moo: "moo"},
	})
	tests.Add("unmarshalable", test{
		doc:    make(chan int),
		status: http.StatusBadRequest,
		err:    "json: unsupported type: chan int",
	})

	tests.Run(t, func(t *testing.T, test test) {
		id, rev, err := docMeta(test.doc)
		testy.StatusError(t, test.err, test.status, err)
		if id != test.id {
			t.Errorf("Unexpected id: %s", id)
		}
		if rev != test.rev {
			t.Errorf("Unexpected rev: %s", rev)
		}
	})
}
