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
	"errors"
	"fmt"
	"net/http"

	"github.com/go-couchdb3/couchdb3/chttp"
	"github.com/go-couchdb3/couchdb3/internal"
)

// BulkResult is the result of an update to a single document, as part of a
// [DB.BulkDocs] call.
type BulkResult struct {
	ID  string `json:"id"`
	Rev string `json:"rev"`
	// Error is nil on success. Failed updates carry the error for the
	// individual document; a conflict is reported with a 409 status.
	Error error
}

// UnmarshalJSON satisfies the [encoding/json.Unmarshaler] interface.
func (r *BulkResult) UnmarshalJSON(p []byte) error {
	target := struct {
		*BulkResult
		Error         string `json:"error"`
		Reason        string `json:"reason"`
		UnmarshalJSON struct{}
	}{
		BulkResult: r,
	}
	if err := json.Unmarshal(p, &target); err != nil {
		return err
	}
	switch target.Error {
	case "":
		// No error
	case "conflict":
		r.Error = &internal.Error{Status: http.StatusConflict, Err: errors.New(target.Reason)}
	default:
		r.Error = &internal.Error{Status: http.StatusInternalServerError, Err: errors.New(target.Reason)}
	}
	return nil
}

// BulkDocs creates, updates, or deletes the given documents in a single
// request. Per-document failures do not fail the whole call; they are
// reported in the corresponding [BulkResult]. The new_edits=false option is
// supported via [Params].
func (d *DB) BulkDocs(ctx context.Context, docs []interface{}, options ...Option) ([]BulkResult, error) {
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	query, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	chttpOpts := chttp.NewOptions(options...)
	chttpOpts.Query = query
	chttpOpts.GetBody = chttp.BodyEncoder(map[string]interface{}{"docs": docs})
	chttpOpts.Header = http.Header{
		chttp.HeaderIdempotencyKey: []string{},
	}

	resp, err := d.client.DoReq(ctx, http.MethodPost, d.path("/_bulk_docs"), chttpOpts)
	if err != nil {
		return nil, err
	}
	defer chttp.CloseBody(resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated:
		// Nothing to do
	case http.StatusExpectationFailed:
		err = &chttp.HTTPError{
			Response: resp,
			Reason:   "one or more document was rejected",
		}
	default:
		// All other errors can consume the response body and return
		// immediately
		if e := chttp.ResponseError(resp); e != nil {
			return nil, e
		}
	}
	var results []BulkResult
	if e := chttp.DecodeJSON(resp, &results); e != nil {
		return nil, e
	}
	return results, err
}

// BulkGetReference identifies one document, and optionally one revision, to
// fetch as part of a [DB.BulkGet] call.
type BulkGetReference struct {
	ID        string `json:"id"`
	Rev       string `json:"rev,omitempty"`
	AttsSince string `json:"atts_since,omitempty"`
}

// BulkGetResult is the result for a single requested document.
type BulkGetResult struct {
	// ID is the requested document ID.
	ID string
	// Doc is the document body. It is nil when Error is set.
	Doc json.RawMessage
	// Error is nil on success.
	Error error
}

type bulkGetError struct {
	ID     string `json:"id"`
	Rev    string `json:"rev"`
	Err    string `json:"error"`
	Reason string `json:"reason"`
}

var _ error = &bulkGetError{}

func (e *bulkGetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

type bulkGetResultDoc struct {
	Doc   json.RawMessage `json:"ok,omitempty"`
	Error *bulkGetError   `json:"error,omitempty"`
}

type bulkGetResult struct {
	ID   string             `json:"id"`
	Docs []bulkGetResultDoc `json:"docs"`
}

// BulkGet fetches several documents, optionally at specific revisions, in a
// single request. One result is returned per requested document/revision
// pair, in order. The revs and latest options are supported via [Params].
func (d *DB) BulkGet(ctx context.Context, refs []BulkGetReference, options ...Option) ([]BulkGetResult, error) {
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	query, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	chttpOpts := &chttp.Options{
		Query:   query,
		GetBody: chttp.BodyEncoder(map[string]interface{}{"docs": refs}),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	var response struct {
		Results []bulkGetResult `json:"results"`
	}
	if err := d.client.DoJSON(ctx, http.MethodPost, d.path("_bulk_get"), chttpOpts, &response); err != nil {
		return nil, err
	}
	results := make([]BulkGetResult, 0, len(response.Results))
	for _, r := range response.Results {
		for _, doc := range r.Docs {
			result := BulkGetResult{
				ID:  r.ID,
				Doc: doc.Doc,
			}
			if doc.Error != nil {
				result.Error = &internal.Error{Status: http.StatusNotFound, Err: doc.Error}
				result.Doc = nil
			}
			results = append(results, result)
		}
	}
	return results, nil
}
