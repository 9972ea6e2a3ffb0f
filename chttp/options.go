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

package chttp

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Option is a client or request option. Options are self-applying: each
// implementation examines the target, and mutates it only when it is of a
// supported type. Unsupported targets are silently ignored, so a single
// option may be applied to several layers of the client.
type Option interface {
	// Apply applies the option to target, if target is of the expected type.
	Apply(target interface{})
}

// Options are optional parameters which may be sent with a request.
type Options struct {
	// Accept sets the request's Accept header. Default is "application/json".
	// To specify any, use "*/*".
	Accept string

	// ContentType sets the request's Content-Type header. Default is
	// "application/json".
	ContentType string

	// ContentLength, if set, sets the ContentLength of the request.
	ContentLength int64

	// Body sets the body of the request.
	Body io.ReadCloser

	// GetBody is a function to set the body, and can be used on retries. If
	// set, Body is ignored.
	GetBody func() (io.ReadCloser, error)

	// FullCommit adds the X-Couch-Full-Commit: true header to the request.
	FullCommit bool

	// IfNoneMatch adds the If-None-Match header. The value will be quoted if
	// it is not already.
	IfNoneMatch string

	// Query is appended to the exiting url, if present. If the passed url
	// already contains query parameters, the values in Query are appended.
	// No merging takes place.
	Query url.Values

	// Header is a list of default headers to be set on the request.
	Header http.Header

	// NoGzip disables gzip compression of the request body.
	NoGzip bool
}

// NewOptions converts a collection of options into a request's *Options.
func NewOptions(options ...Option) *Options {
	opts := &Options{}
	for _, opt := range options {
		if opt != nil {
			opt.Apply(opts)
		}
	}
	return opts
}

type optionNoRequestCompression struct{}

func (optionNoRequestCompression) Apply(target interface{}) {
	if client, ok := target.(*Client); ok {
		client.noGzip = true
	}
}

func (optionNoRequestCompression) String() string { return "[NoRequestCompression]" }

// OptionNoRequestCompression instructs the client not to use gzip compression
// for request bodies sent to the server. Only honored when passed to [New].
func OptionNoRequestCompression() Option {
	return optionNoRequestCompression{}
}

type optionUserAgent string

func (a optionUserAgent) Apply(target interface{}) {
	if client, ok := target.(*Client); ok {
		client.UserAgents = append(client.UserAgents, string(a))
	}
}

func (a optionUserAgent) String() string {
	return fmt.Sprintf("[UserAgent:%s]", string(a))
}

// OptionUserAgent may be passed as an option when creating a client object,
// to append to the default User-Agent header sent on all requests.
func OptionUserAgent(ua string) Option {
	return optionUserAgent(ua)
}

type optionFullCommit struct{}

func (optionFullCommit) Apply(target interface{}) {
	if o, ok := target.(*Options); ok {
		o.FullCommit = true
	}
}

func (optionFullCommit) String() string { return "[FullCommit]" }

// OptionFullCommit is the option key used to set the `X-Couch-Full-Commit`
// header in the request when set to true.
func OptionFullCommit() Option {
	return optionFullCommit{}
}

type optionIfNoneMatch string

func (o optionIfNoneMatch) Apply(target interface{}) {
	if opts, ok := target.(*Options); ok {
		opts.IfNoneMatch = string(o)
	}
}

func (o optionIfNoneMatch) String() string {
	return fmt.Sprintf("[If-None-Match: %s]", string(o))
}

// OptionIfNoneMatch is an option key to set the `If-None-Match` header on
// the request.
func OptionIfNoneMatch(value string) Option {
	return optionIfNoneMatch(value)
}
