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

	"github.com/go-couchdb3/couchdb3/internal"
)

// HTTPStatus returns the HTTP status code embedded in the error, or 500
// (internal server error) if there was no embedded status code, or 0 for a
// nil error.
func HTTPStatus(err error) int {
	return internal.HTTPStatus(err)
}

// IsNotFound returns true if the error represents a 404 (not found) response,
// such as a request for a document or database which does not exist.
func IsNotFound(err error) bool {
	return internal.HTTPStatus(err) == http.StatusNotFound
}

// IsConflict returns true if the error represents a 409 (conflict) response,
// such as an attempted update without the document's current revision.
func IsConflict(err error) bool {
	return internal.HTTPStatus(err) == http.StatusConflict
}

// IsUnauthorized returns true if the error represents a 401 (unauthorized)
// response.
func IsUnauthorized(err error) bool {
	return internal.HTTPStatus(err) == http.StatusUnauthorized
}

// IsForbidden returns true if the error represents a 403 (forbidden)
// response.
func IsForbidden(err error) bool {
	return internal.HTTPStatus(err) == http.StatusForbidden
}

// IsBadRequest returns true if the error represents a 400 (bad request)
// response, which includes client-side validation failures.
func IsBadRequest(err error) bool {
	return internal.HTTPStatus(err) == http.StatusBadRequest
}

// IsPreconditionFailed returns true if the error represents a 412
// (precondition failed) response, such as creating a database which already
// exists.
func IsPreconditionFailed(err error) bool {
	return internal.HTTPStatus(err) == http.StatusPreconditionFailed
}

// IsServerError returns true for 5xx-class errors, including the 502 (bad
// gateway) status synthesized for network failures.
func IsServerError(err error) bool {
	return internal.HTTPStatus(err) >= http.StatusInternalServerError
}

func missingArg(arg string) error {
	return &internal.Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("couchdb3: %s required", arg)}
}
