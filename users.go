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
	"net/http"
	"strings"

	"github.com/go-couchdb3/couchdb3/chttp"
)

// UserRecord describes a user to be stored in the _users database by
// [Client.SaveUser].
type UserRecord struct {
	// Password is set, or changed, when non-empty.
	Password string
	// Roles are the roles granted to the user.
	Roles []string
}

// SaveUser creates or updates the record for the named user in the _users
// database. The document ID is derived from the name by prepending
// [UserPrefix] if not already present. An existing record is updated in
// place: on conflict, the current revision is fetched and the write retried
// once.
func (c *Client) SaveUser(ctx context.Context, name string, user *UserRecord) (id, rev string, err error) {
	if name == "" {
		return "", "", missingArg("name")
	}
	if user == nil {
		return "", "", missingArg("user")
	}
	username := strings.TrimPrefix(name, UserPrefix)
	docID := UserPrefix + username

	doc := Document{
		"_id":   docID,
		"name":  username,
		"type":  "user",
		"roles": user.Roles,
	}
	if user.Roles == nil {
		doc["roles"] = []string{}
	}
	if user.Password != "" {
		doc["password"] = user.Password
	}

	usersDB, err := c.DB(UsersDatabase)
	if err != nil {
		return "", "", err
	}
	rev, err = usersDB.Put(ctx, docID, doc)
	if HTTPStatus(err) == http.StatusConflict {
		var curRev string
		curRev, err = usersDB.GetRev(ctx, docID)
		if err != nil {
			return "", "", err
		}
		rev, err = usersDB.Put(ctx, docID, doc, Param("rev", curRev))
	}
	if err != nil {
		return "", "", err
	}
	return docID, rev, nil
}

// CheckUser verifies the named user's password by posting the credentials
// to the /_session endpoint. Rejected credentials return false without an
// error; any other failure is returned as-is.
func (c *Client) CheckUser(ctx context.Context, name, password string) (bool, error) {
	if name == "" {
		return false, missingArg("name")
	}
	body := struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}{
		Name:     strings.TrimPrefix(name, UserPrefix),
		Password: password,
	}
	opts := &chttp.Options{
		GetBody: chttp.BodyEncoder(body),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	_, err := c.DoError(ctx, http.MethodPost, "/_session", opts)
	if HTTPStatus(err) == http.StatusUnauthorized {
		return false, nil
	}
	return err == nil, err
}
