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

	"github.com/go-couchdb3/couchdb3/chttp"
	"github.com/go-couchdb3/couchdb3/internal"
)

// ReplicationResult is the result of scheduling a replication via
// [Client.Replicate].
type ReplicationResult struct {
	// OK is true if the replication document was accepted.
	OK bool `json:"ok"`
	// ID is the ID of the replication document in the _replicator
	// database.
	ID string `json:"id"`
	// Rev is the revision of the replication document.
	Rev string `json:"rev"`
}

// Replicate schedules a replication from sourceDSN to targetDSN, by storing
// a document in the _replicator database. Replication parameters such as
// continuous, create_target, doc_ids, filter, and selector are passed via
// [Params], and become members of the replication document. The doc_ids,
// filter, and selector parameters are mutually exclusive, and proxy URLs
// must use the http, https, or socks5 scheme; both are validated
// client-side.
func (c *Client) Replicate(ctx context.Context, targetDSN, sourceDSN string, options ...Option) (*ReplicationResult, error) {
	if targetDSN == "" {
		return nil, missingArg("targetDSN")
	}
	if sourceDSN == "" {
		return nil, missingArg("sourceDSN")
	}
	body := map[string]interface{}{}
	multiOptions(options).Apply(body)
	if err := validateReplication(body); err != nil {
		return nil, err
	}
	body["source"] = sourceDSN
	body["target"] = targetDSN

	opts := &chttp.Options{
		GetBody: chttp.BodyEncoder(body),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	result := new(ReplicationResult)
	if err := c.DoJSON(ctx, http.MethodPost, "/_replicator", opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

func validateReplication(body map[string]interface{}) error {
	var exclusive int
	for _, key := range []string{"doc_ids", "filter", "selector"} {
		if _, ok := body[key]; ok {
			exclusive++
		}
	}
	if exclusive > 1 {
		return &internal.Error{Status: http.StatusBadRequest, Message: "couchdb3: doc_ids, filter, and selector are mutually exclusive"}
	}
	for _, key := range []string{"source_proxy", "target_proxy"} {
		proxy, ok := body[key].(string)
		if !ok || proxy == "" {
			continue
		}
		u, err := url.Parse(proxy)
		if err != nil {
			return &internal.Error{Status: http.StatusBadRequest, Err: err}
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return &internal.Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("couchdb3: unsupported %s scheme %q", key, u.Scheme)}
		}
	}
	return nil
}
