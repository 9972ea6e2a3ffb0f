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
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-couchdb3/couchdb3/chttp"
	"github.com/go-couchdb3/couchdb3/internal"
)

// Attachment represents a file attachment to a document.
type Attachment struct {
	// Filename is the name of the attachment within the document.
	Filename string
	// ContentType is the attachment's MIME type. When empty on upload, it
	// is guessed from the filename's extension, falling back to
	// application/octet-stream.
	ContentType string
	// Digest is the content hash, as reported by the server.
	Digest string
	// Size is the attachment size in bytes, when known.
	Size int64
	// Content is the attachment body. The caller is responsible for
	// closing it when the attachment was fetched with [DB.GetAttachment].
	Content io.ReadCloser
}

func attContentType(att *Attachment) string {
	if att.ContentType != "" {
		return att.ContentType
	}
	if ctype := mime.TypeByExtension(filepath.Ext(att.Filename)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// PutAttachment uploads the supplied content as an attachment to the
// specified document. The rev option is required unless the document does
// not yet exist.
func (d *DB) PutAttachment(ctx context.Context, docID string, att *Attachment, options ...Option) (newRev string, err error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if att == nil {
		return "", missingArg("att")
	}
	if att.Filename == "" {
		return "", missingArg("att.Filename")
	}
	if att.Content == nil {
		return "", missingArg("att.Content")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return "", err
	}
	chttpOpts.Body = att.Content
	chttpOpts.ContentType = attContentType(att)

	var response struct {
		Rev string `json:"rev"`
	}
	err = d.client.DoJSON(ctx, http.MethodPut, d.path(chttp.EncodeDocID(docID)+"/"+att.Filename), chttpOpts, &response)
	if err != nil {
		return "", err
	}
	return response.Rev, nil
}

// GetAttachment fetches an attachment. The returned attachment's Content
// must be closed by the caller.
func (d *DB) GetAttachment(ctx context.Context, docID, filename string, options ...Option) (*Attachment, error) {
	resp, err := d.fetchAttachment(ctx, http.MethodGet, docID, filename, options)
	if err != nil {
		return nil, err
	}
	return decodeAttachment(resp, filename)
}

// GetAttachmentMeta fetches the attachment's metadata with a HEAD request.
// The returned attachment's Content is empty.
func (d *DB) GetAttachmentMeta(ctx context.Context, docID, filename string, options ...Option) (*Attachment, error) {
	resp, err := d.fetchAttachment(ctx, http.MethodHead, docID, filename, options)
	if err != nil {
		return nil, err
	}
	return decodeAttachment(resp, filename)
}

func (d *DB) fetchAttachment(ctx context.Context, method, docID, filename string, options []Option) (*http.Response, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	if filename == "" {
		return nil, missingArg("filename")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)

	chttpOpts := chttp.NewOptions(options...)
	var err error
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return nil, err
	}
	chttpOpts.Accept = "*/*"
	resp, err := d.client.DoReq(ctx, method, d.path(chttp.EncodeDocID(docID)+"/"+filename), chttpOpts)
	if err != nil {
		return nil, err
	}
	return resp, chttp.ResponseError(resp)
}

func decodeAttachment(resp *http.Response, filename string) (*Attachment, error) {
	cType, err := getContentType(resp)
	if err != nil {
		return nil, err
	}
	digest, err := getDigest(resp)
	if err != nil {
		return nil, err
	}
	return &Attachment{
		Filename:    filename,
		ContentType: cType,
		Digest:      digest,
		Size:        resp.ContentLength,
		Content:     resp.Body,
	}, nil
}

func getContentType(resp *http.Response) (string, error) {
	ctype := resp.Header.Get("Content-Type")
	if _, ok := resp.Header["Content-Type"]; !ok {
		return "", &internal.Error{Status: http.StatusBadGateway, Err: errors.New("no Content-Type in response")}
	}
	return ctype, nil
}

func getDigest(resp *http.Response) (string, error) {
	etag, ok := chttp.ETag(resp)
	if !ok {
		return "", &internal.Error{Status: http.StatusBadGateway, Err: errors.New("ETag header not found")}
	}
	return etag, nil
}

// DeleteAttachment removes an attachment from a document. The rev option is
// required.
func (d *DB) DeleteAttachment(ctx context.Context, docID, filename string, options ...Option) (newRev string, err error) {
	if docID == "" {
		return "", missingArg("docID")
	}
	if filename == "" {
		return "", missingArg("filename")
	}
	opts := map[string]interface{}{}
	multiOptions(options).Apply(opts)
	if rev, _ := opts["rev"].(string); rev == "" {
		return "", missingArg("rev")
	}

	chttpOpts := chttp.NewOptions(options...)
	chttpOpts.Query, err = optionsToParams(opts)
	if err != nil {
		return "", err
	}
	var response struct {
		Rev string `json:"rev"`
	}
	err = d.client.DoJSON(ctx, http.MethodDelete, d.path(chttp.EncodeDocID(docID)+"/"+filename), chttpOpts, &response)
	if err != nil {
		return "", err
	}
	return response.Rev, nil
}
