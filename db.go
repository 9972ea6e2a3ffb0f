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
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-couchdb3/couchdb3/chttp"
	"github.com/go-couchdb3/couchdb3/internal"
)

// DB is a handle to a single database. It issues no requests of its own at
// construction; obtain one from [Client.DB] or [Client.CreateDB].
type DB struct {
	client *Client
	dbName string
}

// Name returns the database name, as passed to [Client.DB].
func (d *DB) Name() string {
	name, _ := url.PathUnescape(d.dbName)
	return name
}

// Client returns the client used by this database handle.
func (d *DB) Client() *Client {
	return d.client
}

func (d *DB) path(path string) string {
	url, err := url.Parse(d.dbName + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		panic("THIS IS A BUG: d.path failed: " + err.Error())
	}
	return url.String()
}

func optionsToParams(opts ...map[string]interface{}) (url.Values, error) {
	params := url.Values{}
	for _, optsSet := range opts {
		if err := encodeKeys(optsSet); err != nil {
			return nil, err
		}
		for key, i := range optsSet {
			var values []string
			switch v := i.(type) {
			case string:
				values = []string{v}
			case []string:
				values = v
			case bool:
				values = []string{fmt.Sprintf("%t", v)}
			case int, uint, uint8, uint16, uint32, uint64, int8, int16, int32, int64:
				values = []string{fmt.Sprintf("%d", v)}
			default:
				return nil, &internal.Error{Status: http.StatusBadRequest, Err: fmt.Errorf("couchdb3: invalid type %T for options", i)}
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
	}
	return params, nil
}

// Exists returns true if the document exists. A 404 response is not
// considered an error.
func (d *DB) Exists(ctx context.Context, docID string, options ...Option) (bool, error) {
	if docID == "" {
		return false, missingArg("docID")
	}
	resp, err := d.fetch(ctx, http.MethodHead, docID, options)
	if err != nil {
		if HTTPStatus(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	_ = resp.Body.Close()
	return true, nil
}

// Get fetches the requested document, decoded into a [Document]. The
// supported options include rev, revs, revs_info, attachments, conflicts,
// and the other document GET parameters.
func (d *DB) Get(ctx context.Context, docID string, options ...Option) (Document, error) {
	resp, err := d.fetch(ctx, http.MethodGet, docID, options)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := chttp.DecodeJSON(resp, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetRev returns the current revision of the requested document, fetched
// with a HEAD request.
func (d *DB) GetRev(ctx context.Context, docID string, options ...Option) (string, error) {
	resp, err := d.fetch(ctx, http.MethodHead, docID, options)
	if err != nil {
		return "", err
	}
	_ = resp.Body.Close()
	return chttp.GetRev(resp)
}

func (d *DB) fetch(ctx context.Context, method, docID string, options []Option) (*http.Response, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	var err error
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.DoReq(ctx, method, d.path(chttp.EncodeDocID(docID)), chttpOpts)
	if err != nil {
		return nil, err
	}
	return resp, chttp.ResponseError(resp)
}

// Save stores the document under its own _id, creating it if it does not
// exist, and updating it otherwise. A document without an _id is a
// bad-request error; use [DB.CreateDoc] to have the server assign one. When
// the document carries a _rev, it is passed along, so a stale revision is
// the server's 409 (conflict).
func (d *DB) Save(ctx context.Context, doc interface{}, options ...Option) (id, rev string, err error) {
	docID, docRev, err := docMeta(doc)
	if err != nil {
		return "", "", err
	}
	if docID == "" {
		return "", "", missingArg("doc._id")
	}
	if docRev != "" {
		options = append(options, Param("rev", docRev))
	}
	rev, err = d.Put(ctx, docID, doc, options...)
	return docID, rev, err
}

// Put stores the document under docID, ignoring any _id it may carry.
func (d *DB) Put(ctx context.Context, docID string, doc interface{}, options ...Option) (rev string, err error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return "", err
	}
	chttpOpts.Body = chttp.EncodeBody(doc)

	var result struct {
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}
	err = d.client.DoJSON(ctx, http.MethodPut, d.path(chttp.EncodeDocID(docID)), chttpOpts, &result)
	if err != nil {
		return "", err
	}
	return result.Rev, nil
}

// CreateDoc stores the document with a server-assigned document ID. The
// batch=ok option is supported via [Params].
func (d *DB) CreateDoc(ctx context.Context, doc interface{}, options ...Option) (docID, rev string, err error) {
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	path := d.dbName
	if len(opts) > 0 {
		params, e := optionsToParams(opts)
		if e != nil {
			return "", "", e
		}
		path += "?" + params.Encode()
	}
	chttpOpts.Body = chttp.EncodeBody(doc)

	result := struct {
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}{}
	err = d.client.DoJSON(ctx, http.MethodPost, path, chttpOpts, &result)
	return result.ID, result.Rev, err
}

// Delete marks the document revision as deleted. The revision is required;
// a missing or stale revision is a 409 (conflict) from the server, but an
// empty rev never leaves the client. The new (tombstone) revision is
// returned.
func (d *DB) Delete(ctx context.Context, docID, rev string, options ...Option) (string, error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if rev == "" {
		return "", missingArg("rev")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	opts["rev"] = rev

	chttpOpts := chttp.NewOptions(options...)
	var err error
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return "", err
	}
	resp, err := d.client.DoReq(ctx, http.MethodDelete, d.path(chttp.EncodeDocID(docID)), chttpOpts)
	if err != nil {
		return "", err
	}
	defer chttp.CloseBody(resp.Body)
	if err := chttp.ResponseError(resp); err != nil {
		return "", err
	}
	return chttp.GetRev(resp)
}

// Copy copies the source document to targetID on the server, using the COPY
// method, and returns the new document's revision. To overwrite an existing
// target, include its revision in targetID as "id?rev=n-xxx".
func (d *DB) Copy(ctx context.Context, targetID, sourceID string, options ...Option) (targetRev string, err error) {
	if sourceID == "" {
		return "", missingArg("sourceID")
	}
	if targetID == "" {
		return "", missingArg("targetID")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return "", err
	}
	chttpOpts.Header = http.Header{
		chttp.HeaderDestination: []string{targetID},
	}

	resp, err := d.client.DoReq(ctx, "COPY", d.path(chttp.EncodeDocID(sourceID)), chttpOpts)
	if err != nil {
		return "", err
	}
	defer chttp.CloseBody(resp.Body)
	if err := chttp.ResponseError(resp); err != nil {
		return "", err
	}
	return chttp.GetRev(resp)
}

// Flush instructs the server to commit any uncommitted data to disk for
// this database.
func (d *DB) Flush(ctx context.Context) error {
	opts := &chttp.Options{
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	_, err := d.client.DoError(ctx, http.MethodPost, d.path("/_ensure_full_commit"), opts)
	return err
}

// Compact triggers compaction of the database. The server responds
// immediately; compaction proceeds in the background, and may be observed
// with [Client.ActiveTasks].
func (d *DB) Compact(ctx context.Context) error {
	opts := &chttp.Options{
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	res, err := d.client.DoReq(ctx, http.MethodPost, d.path("/_compact"), opts)
	if err != nil {
		return err
	}
	defer chttp.CloseBody(res.Body)
	return chttp.ResponseError(res)
}

// CompactView triggers compaction of the named design document's view
// indexes.
func (d *DB) CompactView(ctx context.Context, ddocID string) error {
	if ddocID == "" {
		return missingArg("ddocID")
	}
	opts := &chttp.Options{
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	res, err := d.client.DoReq(ctx, http.MethodPost, d.path("/_compact/"+ddocID), opts)
	if err != nil {
		return err
	}
	defer chttp.CloseBody(res.Body)
	return chttp.ResponseError(res)
}

// ViewCleanup removes view index files no longer referenced by any design
// document.
func (d *DB) ViewCleanup(ctx context.Context) error {
	opts := &chttp.Options{
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	res, err := d.client.DoReq(ctx, http.MethodPost, d.path("/_view_cleanup"), opts)
	if err != nil {
		return err
	}
	defer chttp.CloseBody(res.Body)
	return chttp.ResponseError(res)
}

// PurgeResult is the result of a [DB.Purge] request.
type PurgeResult struct {
	// Seq is the purge sequence number.
	Seq int64 `json:"purge_seq"`
	// Purged is a map of document IDs to the purged revisions.
	Purged map[string][]string `json:"purged"`
}

// Purge permanently removes the given revisions of the given documents.
// Unlike deletion, purging leaves no tombstone behind.
func (d *DB) Purge(ctx context.Context, docRevMap map[string][]string) (*PurgeResult, error) {
	result := &PurgeResult{}
	options := &chttp.Options{
		GetBody: chttp.BodyEncoder(docRevMap),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	err := d.client.DoJSON(ctx, http.MethodPost, d.path("_purge"), options, &result)
	return result, err
}
