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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"

	"github.com/go-couchdb3/couchdb3/chttp"
)

// ViewRow is a single row of a view result.
type ViewRow struct {
	// ID is the document ID. It is empty for reduced views.
	ID string `json:"id"`
	// Key is the row key, as raw JSON.
	Key json.RawMessage `json:"key"`
	// Value is the row value, as raw JSON.
	Value json.RawMessage `json:"value"`
	// Doc is the document body, as raw JSON, when include_docs was
	// requested.
	Doc json.RawMessage `json:"doc,omitempty"`
	// Error is the error kind reported for this row, such as "not_found"
	// for a missing key in a keys request.
	Error string `json:"error,omitempty"`
}

// ViewResult is a fully-materialized view response.
type ViewResult struct {
	// Offset is the offset of the first row in the result.
	Offset int64 `json:"offset"`
	// TotalRows is the total number of rows in the view, which may be
	// larger than the number returned.
	TotalRows int64 `json:"total_rows"`
	// UpdateSeq is the update sequence the view reflects, when requested
	// with update_seq=true.
	UpdateSeq string `json:"-"`
	// Rows are the rows of the result.
	Rows []ViewRow `json:"rows"`
}

// UnmarshalJSON satisfies the [encoding/json.Unmarshaler] interface. The
// update_seq member may arrive as a string or a number, depending on the
// server version, so it is captured raw.
func (r *ViewResult) UnmarshalJSON(p []byte) error {
	type clone ViewResult
	c := struct {
		clone
		UpdateSeq json.RawMessage `json:"update_seq"`
	}{}
	if err := json.Unmarshal(p, &c); err != nil {
		return err
	}
	*r = ViewResult(c.clone)
	r.UpdateSeq = string(bytes.Trim(c.UpdateSeq, `"`))
	return nil
}

// viewQuery performs a query against a view-shaped endpoint. Most options
// pass through as query parameters; keys moves to a POST body, as it can
// exceed any practical URL length.
func (d *DB) viewQuery(ctx context.Context, reqPath string, options []Option) (*ViewResult, error) {
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	payload := make(map[string]interface{})
	if keys := opts["keys"]; keys != nil {
		delete(opts, "keys")
		payload["keys"] = keys
	}
	resp, err := d.queryReq(ctx, reqPath, opts, payload)
	if err != nil {
		return nil, err
	}
	result := new(ViewResult)
	if err := chttp.DecodeJSON(resp, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *DB) queryReq(ctx context.Context, reqPath string, opts, payload map[string]interface{}) (*http.Response, error) {
	query, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	chttpOpts := &chttp.Options{Query: query}
	method := http.MethodGet
	if len(payload) > 0 {
		method = http.MethodPost
		chttpOpts.GetBody = chttp.BodyEncoder(payload)
		chttpOpts.Header = http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		}
	}
	resp, err := d.client.DoReq(ctx, method, d.path(reqPath), chttpOpts)
	if err != nil {
		return nil, err
	}
	return resp, chttp.ResponseError(resp)
}

// AllDocs returns all of the documents in the database, or in one partition
// of it when [OptionPartition] is given.
func (d *DB) AllDocs(ctx context.Context, options ...Option) (*ViewResult, error) {
	reqPath := partPath("_all_docs")
	multiOptions(options).Apply(reqPath)
	return d.viewQuery(ctx, reqPath.String(), options)
}

// DesignDocs returns all of the design documents in the database.
func (d *DB) DesignDocs(ctx context.Context, options ...Option) (*ViewResult, error) {
	return d.viewQuery(ctx, "_design_docs", options)
}

// LocalDocs returns all of the local (non-replicating) documents in the
// database.
func (d *DB) LocalDocs(ctx context.Context, options ...Option) (*ViewResult, error) {
	return d.viewQuery(ctx, "_local_docs", options)
}

// Query queries a view.
func (d *DB) Query(ctx context.Context, ddoc, view string, options ...Option) (*ViewResult, error) {
	if ddoc == "" {
		return nil, missingArg("ddoc")
	}
	if view == "" {
		return nil, missingArg("view")
	}
	reqPath := partPath(fmt.Sprintf("_design/%s/_view/%s", chttp.EncodeDocID(ddoc), chttp.EncodeDocID(view)))
	multiOptions(options).Apply(reqPath)
	return d.viewQuery(ctx, reqPath.String(), options)
}

// MultiQuery runs several queries against the same view in a single
// request, and returns one result per query, in order. Each entry of
// queries is a set of regular view parameters.
func (d *DB) MultiQuery(ctx context.Context, ddoc, view string, queries []interface{}, options ...Option) ([]ViewResult, error) {
	if ddoc == "" {
		return nil, missingArg("ddoc")
	}
	if view == "" {
		return nil, missingArg("view")
	}
	if len(queries) == 0 {
		return nil, missingArg("queries")
	}
	reqPath := partPath(path.Join(fmt.Sprintf("_design/%s/_view/%s", chttp.EncodeDocID(ddoc), chttp.EncodeDocID(view)), "queries"))
	multiOptions(options).Apply(reqPath)

	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	payload := map[string]interface{}{"queries": queries}
	resp, err := d.queryReq(ctx, reqPath.String(), opts, payload)
	if err != nil {
		return nil, err
	}
	var result struct {
		Results []ViewResult `json:"results"`
	}
	if err := chttp.DecodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}
