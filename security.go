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

	"github.com/go-couchdb3/couchdb3/chttp"
)

// Members represents one security class, either admins or members, of a
// database's security object.
type Members struct {
	Names []string `json:"names,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Security is a database security object.
type Security struct {
	Admins  Members `json:"admins,omitempty"`
	Members Members `json:"members,omitempty"`
}

// Security returns the database's security object.
func (d *DB) Security(ctx context.Context) (*Security, error) {
	var sec *Security
	err := d.client.DoJSON(ctx, http.MethodGet, d.path("/_security"), nil, &sec)
	if sec == nil && err == nil {
		sec = &Security{}
	}
	return sec, err
}

// SetSecurity replaces the database's security object.
func (d *DB) SetSecurity(ctx context.Context, security *Security) error {
	if security == nil {
		return missingArg("security")
	}
	opts := &chttp.Options{
		GetBody: chttp.BodyEncoder(security),
		Header: http.Header{
			chttp.HeaderIdempotencyKey: []string{},
		},
	}
	res, err := d.client.DoReq(ctx, http.MethodPut, d.path("/_security"), opts)
	if err != nil {
		return err
	}
	defer chttp.CloseBody(res.Body)
	return chttp.ResponseError(res)
}
