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
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-couchdb3/couchdb3/chttp"
)

const pathIndex = "_index"

// Index is a Mango index definition, as returned by [DB.GetIndexes].
type Index struct {
	DesignDoc  string      `json:"ddoc,omitempty"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Definition interface{} `json:"def"`
}

// CreateIndex creates a Mango index. The ddoc and name may be empty, in
// which case they are assigned by the server. The index may be a string,
// []byte, or json.RawMessage of raw JSON, or any JSON-marshalable value, in
// the format documented for the [_index endpoint].
//
// [_index endpoint]: https://docs.couchdb.org/en/stable/api/database/find.html#db-index
func (d *DB) CreateIndex(ctx context.Context, ddoc, name string, index interface{}, options ...Option) error {
	reqPath := partPath(pathIndex)
	multiOptions(options).Apply(reqPath)
	indexObj, err := deJSONify(index)
	if err != nil {
		return err
	}
	parameters := struct {
		Index interface{} `json:"index"`
		Ddoc  string      `json:"ddoc,omitempty"`
		Name  string      `json:"name,omitempty"`
	}{
		Index: indexObj,
		Ddoc:  ddoc,
		Name:  name,
	}
	chttpOpts := &chttp.Options{
		Body: chttp.EncodeBody(parameters),
	}
	_, err = d.client.DoError(ctx, http.MethodPost, d.path(reqPath.String()), chttpOpts)
	return err
}

// GetIndexes returns the indexes defined on the database.
func (d *DB) GetIndexes(ctx context.Context, options ...Option) ([]Index, error) {
	reqPath := partPath(pathIndex)
	multiOptions(options).Apply(reqPath)
	var result struct {
		Indexes []Index `json:"indexes"`
	}
	err := d.client.DoJSON(ctx, http.MethodGet, d.path(reqPath.String()), nil, &result)
	return result.Indexes, err
}

// DeleteIndex deletes the named index.
func (d *DB) DeleteIndex(ctx context.Context, ddoc, name string, options ...Option) error {
	if ddoc == "" {
		return missingArg("ddoc")
	}
	if name == "" {
		return missingArg("name")
	}
	reqPath := partPath(pathIndex)
	multiOptions(options).Apply(reqPath)
	path := fmt.Sprintf("%s/%s/json/%s", reqPath, ddoc, name)
	_, err := d.client.DoError(ctx, http.MethodDelete, d.path(path), nil)
	return err
}

// FindResult is the result of a Mango query.
type FindResult struct {
	// Docs are the matching documents.
	Docs []json.RawMessage `json:"docs"`
	// Bookmark is an opaque token for fetching the next page of results.
	Bookmark string `json:"bookmark"`
	// Warning is the server's advice, such as a suggestion to add an
	// index.
	Warning string `json:"warning,omitempty"`
	// ExecutionStats are populated when execution_stats=true is passed.
	ExecutionStats *ExecutionStats `json:"execution_stats,omitempty"`
}

// ExecutionStats reports the work done by a Mango query.
type ExecutionStats struct {
	TotalKeysExamined       int64   `json:"total_keys_examined"`
	TotalDocsExamined       int64   `json:"total_docs_examined"`
	TotalQuorumDocsExamined int64   `json:"total_quorum_docs_examined"`
	ResultsReturned         int64   `json:"results_returned"`
	ExecutionTimeMS         float64 `json:"execution_time_ms"`
}

// Find executes a Mango query against the database. The query may be a
// string, []byte, or json.RawMessage of raw JSON, or any JSON-marshalable
// value, in the format documented for the [_find endpoint].
//
// [_find endpoint]: https://docs.couchdb.org/en/stable/api/database/find.html
func (d *DB) Find(ctx context.Context, query interface{}, options ...Option) (*FindResult, error) {
	reqPath := partPath("_find")
	multiOptions(options).Apply(reqPath)
	chttpOpts := &chttp.Options{
		GetBody: chttp.BodyEncoder(query),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	result := new(FindResult)
	if err := d.client.DoJSON(ctx, http.MethodPost, d.path(reqPath.String()), chttpOpts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// QueryPlan is the query execution plan for a Mango query, as returned by
// [DB.Explain].
type QueryPlan struct {
	DBName   string                 `json:"dbname"`
	Index    map[string]interface{} `json:"index"`
	Selector map[string]interface{} `json:"selector"`
	Options  map[string]interface{} `json:"opts"`
	Limit    int64                  `json:"limit"`
	Skip     int64                  `json:"skip"`

	// Fields is the list of fields to be returned. An empty list signifies
	// all fields.
	Fields []interface{}          `json:"fields"`
	Range  map[string]interface{} `json:"range"`
}

type queryPlan struct {
	QueryPlan
	Fields fields `json:"fields"`
}

type fields []interface{}

func (f *fields) UnmarshalJSON(data []byte) error {
	if string(data) == `"all_fields"` {
		return nil
	}
	var i []interface{}
	if err := json.Unmarshal(data, &i); err != nil {
		return err
	}
	newFields := make([]interface{}, len(i))
	copy(newFields, i)
	*f = newFields
	return nil
}

// Explain returns the query plan the server would use for a Mango query,
// without executing it.
func (d *DB) Explain(ctx context.Context, query interface{}, options ...Option) (*QueryPlan, error) {
	reqPath := partPath("_explain")
	multiOptions(options).Apply(reqPath)
	chttpOpts := &chttp.Options{
		GetBody: chttp.BodyEncoder(query),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	var plan queryPlan
	if err := d.client.DoJSON(ctx, http.MethodPost, d.path(reqPath.String()), chttpOpts, &plan); err != nil {
		return nil, err
	}
	result := plan.QueryPlan
	result.Fields = plan.Fields
	return &result, nil
}
