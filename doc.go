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

// Package couchdb3 is a thin client for the CouchDB 3.x HTTP API.
//
// It exposes the server as three small layers: [Client] speaks to the
// server itself, [DB] to a single database, and [Partition] to one
// partition of a partitioned database. All request plumbing (DSN
// handling, authentication, JSON codec, error translation) lives in the
// chttp subpackage, which may also be used directly for endpoints this
// package does not cover.
//
// General usage:
//
//	client, err := couchdb3.New("http://localhost:5984/",
//	    couchdb3.BasicAuth("admin", "abc123"))
//	if err != nil {
//	    panic(err)
//	}
//	db, err := client.DB("animals")
//	if err != nil {
//	    panic(err)
//	}
//	doc, err := db.Get(context.TODO(), "cow")
//
// Every error returned by this package carries an HTTP status code,
// either the server's own, or a synthesized one for client-side and
// network failures. Use [HTTPStatus] or the Is* predicates to branch on
// it.
package couchdb3
