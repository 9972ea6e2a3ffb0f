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
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestAttContentType(t *testing.T) {
	tests := []struct {
		name     string
		att      *Attachment
		expected string
	}{
		{
			name:     "explicit",
			att:      &Attachment{Filename: "foo.txt", ContentType: "text/html"},
			expected: "text/html",
		},
		{
			name:     "guessed from extension",
			att:      &Attachment{Filename: "foo.json"},
			expected: "application/json",
		},
		{
			name:     "unknown extension",
			att:      &Attachment{Filename: "foo.xyzzy"},
			expected: "application/octet-stream",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctype := attContentType(test.att)
			// mime.TypeByExtension may append a charset.
			if base := strings.SplitN(ctype, ";", 2)[0]; base != test.expected {
				t.Errorf("Unexpected content type: %s", ctype)
			}
		})
	}
}

func TestPutAttachment(t *testing.T) {
	type test struct {
		db       *DB
		docID    string
		att      *Attachment
		options  []Option
		expected string
		status   int
		err      string
	}
	tests := testy.NewTable()
	tests.Add("missing docID", test{
		db:     newTestDB(nil, nil),
		att:    &Attachment{Filename: "foo.txt", Content: Body("moo")},
		status: http.StatusBadRequest,
		err:    "couchdb3: docID required",
	})
	tests.Add("missing attachment", test{
		db:     newTestDB(nil, nil),
		docID:  "cow",
		status: http.StatusBadRequest,
		err:    "couchdb3: att required",
	})
	tests.Add("missing filename", test{
		db:     newTestDB(nil, nil),
		docID:  "cow",
		att:    &Attachment{Content: Body("moo")},
		status: http.StatusBadRequest,
		err:    "couchdb3: att.Filename required",
	})
	tests.Add("missing content", test{
		db:     newTestDB(nil, nil),
		docID:  "cow",
		att:    &Attachment{Filename: "foo.txt"},
		status: http.StatusBadRequest,
		err:    "couchdb3: att.Content required",
	})
	tests.Add("network error", test{
		db:     newTestDB(nil, errors.New("net error")),
		docID:  "cow",
		att:    &Attachment{Filename: "foo.txt", Content: Body("moo")},
		status: http.StatusBadGateway,
		err:    `Put "?http://example.com/testdb/cow/foo.txt"?: net error`,
	})
	tests.Add("success", test{
		db: newCustomDB(func(req *http.Request) (*http.Response, error) {
			if ctype := req.Header.Get("Content-Type"); !strings.HasPrefix(ctype, "text/plain") {
				return nil, errors.New("unexpected Content-Type: " + ctype)
			}
			body, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if !strings.HasPrefix(string(body), "moo") {
				return nil, errors.New("unexpected body: " + string(body))
			}
			if rev := req.URL.Query().Get("rev"); rev != "1-xxx" {
				return nil, errors.New("expected rev param, got: " + rev)
			}
			resp := &http.Response{
				StatusCode: http.StatusCreated,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       Body(`{"ok":true,"id":"cow","rev":"2-yyy"}`),
			}
			resp.Request = req
			return resp, nil
		}),
		docID:    "cow",
		att:      &Attachment{Filename: "foo.txt", Content: Body("moo")},
		options:  []Option{Param("rev", "1-xxx")},
		expected: "2-yyy",
	})

	tests.Run(t, func(t *testing.T, test test) {
		rev, err := test.db.PutAttachment(context.Background(), test.docID, test.att, test.options...)
		statusErrorRE(t, test.err, test.status, err)
		if rev != test.expected {
			t.Errorf("Unexpected rev: %s", rev)
		}
	})
}

func TestGetAttachment(t *testing.T) {
	type test struct {
		db       *DB
		docID    string
		filename string
		content  string
		digest   string
		ctype    string
		status   int
		err      string
	}
	tests := testy.NewTable()
	tests.Add("missing docID", test{
		db:       newTestDB(nil, nil),
		filename: "foo.txt",
		status:   http.StatusBadRequest,
		err:      "couchdb3: docID required",
	})
	tests.Add("missing filename", test{
		db:     newTestDB(nil, nil),
		docID:  "cow",
		status: http.StatusBadRequest,
		err:    "couchdb3: filename required",
	})
	tests.Add("network error", test{
		db:       newTestDB(nil, errors.New("net error")),
		docID:    "cow",
		filename: "foo.txt",
		status:   http.StatusBadGateway,
		err:      `Get "?http://example.com/testdb/cow/foo.txt"?: net error`,
	})
	tests.Add("no ETag", test{
		db: newTestDB(&http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"text/plain"}},
			Body:       Body("moo"),
		}, nil),
		docID:    "cow",
		filename: "foo.txt",
		status:   http.StatusBadGateway,
		err:      "ETag header not found",
	})
	tests.Add("success", test{
		db: newTestDB(&http.Response{
			StatusCode: http.StatusOK,
			Header: http.Header{
				"Content-Type": {"text/plain"},
				"ETag":         {`"md5-deadbeef"`},
			},
			Body: Body("moo"),
		}, nil),
		docID:    "cow",
		filename: "foo.txt",
		content:  "moo\n",
		digest:   "md5-deadbeef",
		ctype:    "text/plain",
	})

	tests.Run(t, func(t *testing.T, test test) {
		att, err := test.db.GetAttachment(context.Background(), test.docID, test.filename)
		statusErrorRE(t, test.err, test.status, err)
		defer att.Content.Close() // nolint: errcheck
		if att.Filename != test.filename || att.ContentType != test.ctype || att.Digest != test.digest {
			t.Errorf("Unexpected attachment: %+v", att)
		}
		content, e := io.ReadAll(att.Content)
		if e != nil {
			t.Fatal(e)
		}
		if string(content) != test.content {
			t.Errorf("Unexpected content: %s", string(content))
		}
	})
}

func TestGetAttachmentMeta(t *testing.T) {
	db := newCustomDB(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodHead {
			return nil, errors.New("expected HEAD, got " + req.Method)
		}
		resp := &http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: 4,
			Header: http.Header{
				"Content-Type": {"text/plain"},
				"ETag":         {`"md5-deadbeef"`},
			},
			Body: Body(""),
		}
		resp.Request = req
		return resp, nil
	})
	att, err := db.GetAttachmentMeta(context.Background(), "cow", "foo.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer att.Content.Close() // nolint: errcheck
	if att.Digest != "md5-deadbeef" || att.Size != 4 || att.ContentType != "text/plain" {
		t.Errorf("Unexpected attachment: %+v", att)
	}
}

func TestDeleteAttachment(t *testing.T) {
	tests := []struct {
		name     string
		db       *DB
		docID    string
		filename string
		options  []Option
		expected string
		status   int
		err      string
	}{
		{
			name:     "missing rev",
			db:       newTestDB(nil, nil),
			docID:    "cow",
			filename: "foo.txt",
			status:   http.StatusBadRequest,
			err:      "couchdb3: rev required",
		},
		{
			name:     "network error",
			db:       newTestDB(nil, errors.New("net error")),
			docID:    "cow",
			filename: "foo.txt",
			options:  []Option{Param("rev", "1-xxx")},
			status:   http.StatusBadGateway,
			err:      `Delete "?http://example.com/testdb/cow/foo.txt\?rev=1-xxx"?: net error`,
		},
		{
			name: "success",
			db: newTestDB(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       Body(`{"ok":true,"id":"cow","rev":"2-yyy"}`),
			}, nil),
			docID:    "cow",
			filename: "foo.txt",
			options:  []Option{Param("rev", "1-xxx")},
			expected: "2-yyy",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rev, err := test.db.DeleteAttachment(context.Background(), test.docID, test.filename, test.options...)
			statusErrorRE(t, test.err, test.status, err)
			if rev != test.expected {
				t.Errorf("Unexpected rev: %s", rev)
			}
		})
	}
}
