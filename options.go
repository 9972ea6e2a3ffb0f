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
	"path"
	"strings"

	"github.com/go-couchdb3/couchdb3/chttp"
)

// Option is a client, database, or query option. Most methods accept a
// variadic list of options, applied in order.
type Option = chttp.Option

type multiOptions []Option

var _ Option = (multiOptions)(nil)

func (o multiOptions) Apply(t interface{}) {
	for _, opt := range o {
		if opt != nil {
			opt.Apply(t)
		}
	}
}

func (o multiOptions) String() string {
	parts := make([]string, 0, len(o))
	for _, opt := range o {
		if part := fmt.Sprintf("%s", opt); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ",")
}

type params map[string]interface{}

func (o params) Apply(target interface{}) {
	if opts, ok := target.(map[string]interface{}); ok {
		for k, v := range o {
			opts[k] = v
		}
	}
}

func (o params) String() string { return fmt.Sprintf("%v", map[string]interface{}(o)) }

// Params allows passing a collection of key/value pairs as query options.
// Values are rendered as request parameters: strings and []strings pass
// through, bools and integers are stringified, and the key-like options
// (key, keys, startkey, endkey, ...) are JSON-encoded. Any other value type
// is a bad-request error.
func Params(p map[string]interface{}) Option {
	return params(p)
}

// Param sets a single key/value pair as a query option.
func Param(key string, value interface{}) Option {
	return params{key: value}
}

type optionHTTPClient struct {
	*http.Client
}

func (c optionHTTPClient) Apply(target interface{}) {
	if client, ok := target.(*http.Client); ok {
		*client = *c.Client
	}
}

func (optionHTTPClient) String() string { return "custom *http.Client" }

// OptionHTTPClient may be passed as an option when creating a client, to
// specify a custom [net/http.Client] to be used when making all API calls.
// Only honored by [New].
func OptionHTTPClient(client *http.Client) Option {
	return optionHTTPClient{Client: client}
}

// OptionNoRequestCompression instructs the client not to use gzip compression
// for request bodies sent to the server. Only honored by [New].
func OptionNoRequestCompression() Option {
	return chttp.OptionNoRequestCompression()
}

// OptionUserAgent may be passed as an option when creating a client object,
// to append to the default User-Agent header sent on all requests.
func OptionUserAgent(ua string) Option {
	return chttp.OptionUserAgent(ua)
}

// OptionFullCommit is the option key used to set the `X-Couch-Full-Commit`
// header in the request when set to true.
func OptionFullCommit() Option {
	return chttp.OptionFullCommit()
}

// OptionIfNoneMatch is an option key to set the `If-None-Match` header on
// the request.
func OptionIfNoneMatch(value string) Option {
	return chttp.OptionIfNoneMatch(value)
}

// BasicAuth provides HTTP Basic Auth for a client. Pass this option to [New]
// to use Basic Authentication.
func BasicAuth(username, password string) Option {
	return chttp.BasicAuth(username, password)
}

// CookieAuth provides CouchDB [Cookie auth]. Cookie Auth is the default
// authentication method if credentials are included in the connection URL
// passed to [New]. You may also pass this option to the same function, if
// you need to provide your auth credentials outside of the URL.
//
// [Cookie auth]: https://docs.couchdb.org/en/stable/api/server/authn.html#cookie-authentication
func CookieAuth(username, password string) Option {
	return chttp.CookieAuth(username, password)
}

// JWTAuth provides JWT based auth for a client. Pass this option to [New] to
// use JWT authentication.
func JWTAuth(token string) Option {
	return chttp.JWTAuth(token)
}

// ProxyAuth provides [proxy based authentication] for a client.
//
// [proxy based authentication]: https://docs.couchdb.org/en/stable/api/server/authn.html#proxy-authentication
func ProxyAuth(username, secret string, roles []string, headers http.Header) Option {
	return chttp.ProxyAuth(username, secret, roles, headers)
}

type partitionedPath struct {
	path string
	part string
}

func partPath(path string) *partitionedPath {
	return &partitionedPath{
		path: path,
	}
}

func (pp partitionedPath) String() string {
	if pp.part == "" {
		return pp.path
	}
	return path.Join("_partition", pp.part, pp.path)
}

type optionPartition string

func (o optionPartition) Apply(target interface{}) {
	if ppath, ok := target.(*partitionedPath); ok {
		ppath.part = string(o)
	}
}

func (o optionPartition) String() string {
	return fmt.Sprintf("[partition:%s]", string(o))
}

// OptionPartition instructs supporting methods to limit the query to the
// specified partition. Supported methods are: Query, AllDocs, Find, and
// Explain. Only supported by CouchDB 3.0.0 and newer.
//
// See the [CouchDB documentation].
//
// [CouchDB documentation]: https://docs.couchdb.org/en/stable/api/partitioned-dbs.html
func OptionPartition(partition string) Option {
	return optionPartition(partition)
}
