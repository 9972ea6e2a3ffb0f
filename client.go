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
	"net/http"
	"net/url"
	"strings"

	"github.com/go-couchdb3/couchdb3/chttp"
)

// Up queries the /_up endpoint, and returns true if the server is up and
// ready to handle requests, or if a 400 (Bad Request) is returned and the
// Server: header indicates a server version prior to 2.x, which predates
// the endpoint. Any other failure, including an unreachable server, reports
// false without an error; only context cancellation is returned to the
// caller.
func (c *Client) Up(ctx context.Context) (bool, error) {
	resp, err := c.DoError(ctx, http.MethodHead, "/_up", nil)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return false, err
	case HTTPStatus(err) == http.StatusBadRequest:
		return strings.HasPrefix(resp.Header.Get("Server"), "CouchDB/1."), nil
	default:
		return false, nil
	}
}

// ServerVersion is the information returned by the server's root endpoint.
type ServerVersion struct {
	// Version is the version number of the server.
	Version string
	// Vendor is the server's vendor string.
	Vendor string
	// Features is a list of enabled, optional features.
	Features []string
	// RawResponse is the raw response body, for access to any other fields.
	RawResponse json.RawMessage
}

type info struct {
	Data     json.RawMessage
	Version  string   `json:"version"`
	Features []string `json:"features"`
	Vendor   struct {
		Name string `json:"name"`
	} `json:"vendor"`
}

func (i *info) UnmarshalJSON(data []byte) error {
	type alias info
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	i.Data = data
	i.Version = a.Version
	i.Vendor = a.Vendor
	i.Features = a.Features
	return nil
}

// Version returns the server's version info.
func (c *Client) Version(ctx context.Context) (*ServerVersion, error) {
	i := &info{}
	if err := c.DoJSON(ctx, http.MethodGet, "/", nil, i); err != nil {
		return nil, err
	}
	return &ServerVersion{
		Version:     i.Version,
		Vendor:      i.Vendor.Name,
		Features:    i.Features,
		RawResponse: i.Data,
	}, nil
}

// AllDBs returns a list of all databases on the server. The supported
// options are descending, startkey, endkey, limit, and skip.
func (c *Client) AllDBs(ctx context.Context, options ...Option) ([]string, error) {
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	query, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	var allDBs []string
	err = c.DoJSON(ctx, http.MethodGet, "/_all_dbs", &chttp.Options{Query: query}, &allDBs)
	return allDBs, err
}

// DBExists returns true if the named database exists.
func (c *Client) DBExists(ctx context.Context, dbName string) (bool, error) {
	if dbName == "" {
		return false, missingArg("dbName")
	}
	_, err := c.DoError(ctx, http.MethodHead, url.PathEscape(dbName), nil)
	if HTTPStatus(err) == http.StatusNotFound {
		return false, nil
	}
	return err == nil, err
}

// CreateDB creates the named database, then returns a handle to it. The
// supported options are q (shard count), n (replica count), and partitioned.
// Creating a database which already exists is a 412 (precondition failed)
// error.
func (c *Client) CreateDB(ctx context.Context, dbName string, options ...Option) (*DB, error) {
	if err := validateDBName(dbName); err != nil {
		return nil, err
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	query, err := optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	if _, err := c.DoError(ctx, http.MethodPut, url.PathEscape(dbName), &chttp.Options{Query: query}); err != nil {
		return nil, err
	}
	return c.DB(dbName)
}

// DestroyDB deletes the named database, and all documents in it.
func (c *Client) DestroyDB(ctx context.Context, dbName string) error {
	if dbName == "" {
		return missingArg("dbName")
	}
	_, err := c.DoError(ctx, http.MethodDelete, url.PathEscape(dbName), nil)
	return err
}

type dbsInfoRequest struct {
	Keys []string `json:"keys"`
}

type dbsInfoResponse struct {
	Key    string `json:"key"`
	Info   dbInfo `json:"info"`
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// DBsInfo returns the information for the named databases. Databases which
// do not exist are returned as nil entries, in the same order as the
// requested keys.
func (c *Client) DBsInfo(ctx context.Context, dbNames []string) ([]*DBInfo, error) {
	opts := &chttp.Options{
		GetBody: chttp.BodyEncoder(dbsInfoRequest{Keys: dbNames}),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	result := []dbsInfoResponse{}
	if err := c.DoJSON(ctx, http.MethodPost, "/_dbs_info", opts, &result); err != nil {
		return nil, err
	}
	stats := make([]*DBInfo, len(result))
	for i := range result {
		if result[i].Error == "" {
			stats[i] = result[i].Info.dbInfo()
		}
	}
	return stats, nil
}

// ActiveTask describes one running background task, as reported by the
// /_active_tasks endpoint. Which fields are populated depends on the task
// type.
type ActiveTask struct {
	Type                  string          `json:"type"`
	Database              string          `json:"database"`
	Node                  string          `json:"node"`
	PID                   string          `json:"pid"`
	Progress              int             `json:"progress"`
	StartedOn             int64           `json:"started_on"`
	UpdatedOn             int64           `json:"updated_on"`
	ChangesDone           int64           `json:"changes_done"`
	TotalChanges          int64           `json:"total_changes"`
	DocsRead              int64           `json:"docs_read"`
	DocsWritten           int64           `json:"docs_written"`
	DocWriteFailures      int64           `json:"doc_write_failures"`
	DesignDocument        string          `json:"design_document"`
	Phase                 string          `json:"phase"`
	SourceSeq             json.RawMessage `json:"source_seq,omitempty"`
	CheckpointedSourceSeq json.RawMessage `json:"checkpointed_source_seq,omitempty"`
}

// ActiveTasks returns the list of currently running background tasks,
// including compactions, view indexing, and replications.
func (c *Client) ActiveTasks(ctx context.Context) ([]ActiveTask, error) {
	var tasks []ActiveTask
	err := c.DoJSON(ctx, http.MethodGet, "/_active_tasks", nil, &tasks)
	return tasks, err
}

// ClusterMembership describes the nodes known to, and participating in, the
// cluster.
type ClusterMembership struct {
	AllNodes     []string `json:"all_nodes"`
	ClusterNodes []string `json:"cluster_nodes"`
}

// Membership returns the cluster node list.
func (c *Client) Membership(ctx context.Context) (*ClusterMembership, error) {
	result := new(ClusterMembership)
	err := c.DoJSON(ctx, http.MethodGet, "/_membership", nil, result)
	return result, err
}
