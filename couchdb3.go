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
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-couchdb3/couchdb3/chttp"
	"github.com/go-couchdb3/couchdb3/internal"
)

// Client is a connection to a CouchDB server. It embeds a [chttp.Client],
// whose request methods may be used directly for endpoints not covered
// here. All fields are set at construction, so a Client is safe for
// concurrent use.
type Client struct {
	*chttp.Client
}

// New returns a new client, connected to the CouchDB server identified by
// dsn. If credentials are embedded in the dsn, they are used for Cookie
// authentication; pass one of the authentication options to select another
// mechanism. No request is sent until the client is first used, except when
// an authentication option requires one.
func New(dsn string, options ...Option) (*Client, error) {
	httpClient := &http.Client{}
	for _, opt := range options {
		if opt != nil {
			opt.Apply(httpClient)
		}
	}
	chttpClient, err := chttp.New(httpClient, dsn, options...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: chttpClient}, nil
}

// DB returns a handle to the named database. The database name is validated
// client-side, but no request is sent, so the existence of the database is
// not checked. See [Client.DBExists] for that.
func (c *Client) DB(dbName string) (*DB, error) {
	if err := validateDBName(dbName); err != nil {
		return nil, err
	}
	return &DB{
		client: c,
		dbName: url.PathEscape(dbName),
	}, nil
}

// validDBName matches the database names accepted by CouchDB: it must begin
// with a lowercase letter, followed by lowercase letters, digits, or any of
// _$()+/-.
var validDBName = regexp.MustCompile(`^[a-z][a-z0-9_$()+/-]*$`)

func validateDBName(dbName string) error {
	if dbName == "" {
		return missingArg("dbName")
	}
	switch dbName {
	case UsersDatabase, ReplicatorDatabase, GlobalChangesDatabase:
		return nil
	}
	if !validDBName.MatchString(dbName) {
		return &internal.Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("couchdb3: invalid database name %q", dbName)}
	}
	return nil
}
