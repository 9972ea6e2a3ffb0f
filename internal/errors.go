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

// Package internal provides the status-carrying error type shared by the
// couchdb3 and chttp packages.
package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents an error returned by the library. Its Status field carries
// the HTTP status code of the failed operation, or the client-side equivalent
// (400 for invalid arguments, 502 for transport failures).
type Error struct {
	// Status is the HTTP status code associated with this error.
	Status int

	// Message is the error message.
	Message string

	// Err is the originating error, if any.
	Err error
}

var (
	_ error         = (*Error)(nil)
	_ statusCoder   = (*Error)(nil)
	_ fmt.Formatter = (*Error)(nil)
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.msg()
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// HTTPStatus returns the HTTP status code embedded in the error.
func (e *Error) HTTPStatus() int { return e.Status }

// Unwrap satisfies the errors wrapper interface.
func (e *Error) Unwrap() error { return e.Err }

func (e *Error) msg() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return e.Message
}

// Format satisfies the fmt.Formatter interface. The %+v verb includes the
// embedded status code in the output.
func (e *Error) Format(f fmt.State, c rune) {
	parts := make([]string, 0, 3)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if f.Flag('+') && e.Status > 0 {
		parts = append(parts, fmt.Sprintf("%d / %s", e.Status, http.StatusText(e.Status)))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	_, _ = fmt.Fprint(f, strings.Join(parts, ": "))
}

type statusCoder interface {
	HTTPStatus() int
}

// HTTPStatus returns the HTTP status code embedded in the error, or 500
// (internal server error) if there was no specified status code. If err is
// nil, 0 is returned.
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var coder statusCoder
	if errors.As(err, &coder) {
		return coder.HTTPStatus()
	}
	return http.StatusInternalServerError
}
