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
	"strings"

	"github.com/google/uuid"

	"github.com/go-couchdb3/couchdb3/internal"
)

// Partition is a handle to one partition of a partitioned database. Queries
// are routed through the /{db}/_partition/{id}/ endpoints, and document IDs
// are given the "{id}:" prefix required by the server when not already
// present.
type Partition struct {
	db *DB
	id string
}

// Partition returns a handle to the named partition of this database.
func (d *DB) Partition(id string) *Partition {
	return &Partition{db: d, id: id}
}

// ID returns the partition name.
func (p *Partition) ID() string {
	return p.id
}

// DB returns the underlying database handle.
func (p *Partition) DB() *DB {
	return p.db
}

// docID scopes id to this partition. Empty IDs pass through, so the
// underlying methods report the missing argument.
func (p *Partition) docID(id string) string {
	if id == "" || strings.HasPrefix(id, p.id+":") {
		return id
	}
	return p.id + ":" + id
}

// prefixDoc returns a copy of doc as a Document, with its _id moved into
// this partition. Docs without an _id get a generated one.
func (p *Partition) prefixDoc(doc interface{}) (Document, error) {
	m := Document{}
	switch t := doc.(type) {
	case Document:
		for k, v := range t {
			m[k] = v
		}
	case map[string]interface{}:
		for k, v := range t {
			m[k] = v
		}
	default:
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, &internal.Error{Status: http.StatusBadRequest, Err: err}
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, &internal.Error{Status: http.StatusBadRequest, Err: err}
		}
	}
	id := m.ID()
	if id == "" {
		id = uuid.NewString()
	}
	m.SetID(p.docID(id))
	return m, nil
}

// Exists returns true if the document exists in this partition.
func (p *Partition) Exists(ctx context.Context, docID string, options ...Option) (bool, error) {
	return p.db.Exists(ctx, p.docID(docID), options...)
}

// Get fetches the requested document from this partition.
func (p *Partition) Get(ctx context.Context, docID string, options ...Option) (Document, error) {
	return p.db.Get(ctx, p.docID(docID), options...)
}

// GetRev returns the current revision of the requested document.
func (p *Partition) GetRev(ctx context.Context, docID string, options ...Option) (string, error) {
	return p.db.GetRev(ctx, p.docID(docID), options...)
}

// Save stores the document under its own _id, scoped to this partition. A
// document without an _id is a bad-request error.
func (p *Partition) Save(ctx context.Context, doc interface{}, options ...Option) (id, rev string, err error) {
	docID, _, err := docMeta(doc)
	if err != nil {
		return "", "", err
	}
	if docID == "" {
		return "", "", missingArg("doc._id")
	}
	prefixed, err := p.prefixDoc(doc)
	if err != nil {
		return "", "", err
	}
	return p.db.Save(ctx, prefixed, options...)
}

// CreateDoc stores a new document in this partition. Unlike [DB.CreateDoc],
// the document ID cannot be assigned by the server, as it must carry the
// partition prefix, so documents without an _id get a generated one.
func (p *Partition) CreateDoc(ctx context.Context, doc interface{}, options ...Option) (docID, rev string, err error) {
	prefixed, err := p.prefixDoc(doc)
	if err != nil {
		return "", "", err
	}
	return p.db.Save(ctx, prefixed, options...)
}

// Delete marks the document revision as deleted.
func (p *Partition) Delete(ctx context.Context, docID, rev string, options ...Option) (string, error) {
	return p.db.Delete(ctx, p.docID(docID), rev, options...)
}

// Copy copies the source document to targetID, both scoped to this
// partition.
func (p *Partition) Copy(ctx context.Context, targetID, sourceID string, options ...Option) (string, error) {
	return p.db.Copy(ctx, p.docID(targetID), p.docID(sourceID), options...)
}

// AllDocs returns all of the documents in this partition.
func (p *Partition) AllDocs(ctx context.Context, options ...Option) (*ViewResult, error) {
	return p.db.AllDocs(ctx, append(options, OptionPartition(p.id))...)
}

// Query queries a view, limited to this partition.
func (p *Partition) Query(ctx context.Context, ddoc, view string, options ...Option) (*ViewResult, error) {
	return p.db.Query(ctx, ddoc, view, append(options, OptionPartition(p.id))...)
}

// Find executes a Mango query, limited to this partition.
func (p *Partition) Find(ctx context.Context, query interface{}, options ...Option) (*FindResult, error) {
	return p.db.Find(ctx, query, append(options, OptionPartition(p.id))...)
}

// Explain returns the query plan for a Mango query, limited to this
// partition.
func (p *Partition) Explain(ctx context.Context, query interface{}, options ...Option) (*QueryPlan, error) {
	return p.db.Explain(ctx, query, append(options, OptionPartition(p.id))...)
}

// Stats returns the partition information.
func (p *Partition) Stats(ctx context.Context) (*PartitionInfo, error) {
	return p.db.PartitionStats(ctx, p.id)
}

// PutAttachment uploads the supplied content as an attachment to the
// specified document in this partition.
func (p *Partition) PutAttachment(ctx context.Context, docID string, att *Attachment, options ...Option) (string, error) {
	return p.db.PutAttachment(ctx, p.docID(docID), att, options...)
}

// GetAttachment fetches an attachment from a document in this partition.
func (p *Partition) GetAttachment(ctx context.Context, docID, filename string, options ...Option) (*Attachment, error) {
	return p.db.GetAttachment(ctx, p.docID(docID), filename, options...)
}

// GetAttachmentMeta fetches the attachment's metadata with a HEAD request.
func (p *Partition) GetAttachmentMeta(ctx context.Context, docID, filename string, options ...Option) (*Attachment, error) {
	return p.db.GetAttachmentMeta(ctx, p.docID(docID), filename, options...)
}

// DeleteAttachment removes an attachment from a document in this partition.
func (p *Partition) DeleteAttachment(ctx context.Context, docID, filename string, options ...Option) (string, error) {
	return p.db.DeleteAttachment(ctx, p.docID(docID), filename, options...)
}
