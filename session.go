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
	"net/http"
)

// Session is the server's response to a GET /_session request, describing
// the authenticated user, if any.
type Session struct {
	// Name is the authenticated username, or "" for the unauthenticated
	// (admin party or anonymous) case.
	Name string
	// Roles are the roles granted to the user.
	Roles []string
	// AuthenticationMethod is the method by which this session was
	// authenticated, such as "cookie" or "default".
	AuthenticationMethod string
	// AuthenticationDB is the database against which authentication was
	// performed.
	AuthenticationDB string
	// AuthenticationHandlers are the methods the server supports.
	AuthenticationHandlers []string
	// RawResponse is the raw response body, for access to any other fields.
	RawResponse json.RawMessage
}

type session struct {
	Data    json.RawMessage
	Info    authInfo    `json:"info"`
	UserCtx userContext `json:"userCtx"`
}

type authInfo struct {
	AuthenticationMethod   string   `json:"authenticated"`
	AuthenticationDB       string   `json:"authentication_db"`
	AuthenticationHandlers []string `json:"authentication_handlers"`
}

type userContext struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (s *session) UnmarshalJSON(data []byte) error {
	type alias session
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = session(a)
	s.Data = data
	return nil
}

// Session returns the current session information.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	s := &session{}
	if err := c.DoJSON(ctx, http.MethodGet, "/_session", nil, s); err != nil {
		return nil, err
	}
	return &Session{
		RawResponse:            s.Data,
		Name:                   s.UserCtx.Name,
		Roles:                  s.UserCtx.Roles,
		AuthenticationMethod:   s.Info.AuthenticationMethod,
		AuthenticationDB:       s.Info.AuthenticationDB,
		AuthenticationHandlers: s.Info.AuthenticationHandlers,
	}, nil
}
