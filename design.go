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
	"strings"
)

func designDocID(ddoc string) string {
	return prefixDesign + strings.TrimPrefix(ddoc, prefixDesign)
}

// GetDesign fetches the named design document. The name may be given with
// or without the _design/ prefix.
func (d *DB) GetDesign(ctx context.Context, ddoc string, options ...Option) (Document, error) {
	if ddoc == "" {
		return nil, missingArg("ddoc")
	}
	return d.Get(ctx, designDocID(ddoc), options...)
}

// PutDesign stores the design document under the given name, overriding any
// _id the document carries. The document's _rev, when present, is passed
// along, so updating an existing design document requires its current
// revision.
func (d *DB) PutDesign(ctx context.Context, ddoc string, doc interface{}, options ...Option) (rev string, err error) {
	if ddoc == "" {
		return "", missingArg("ddoc")
	}
	_, docRev, err := docMeta(doc)
	if err != nil {
		return "", err
	}
	if docRev != "" {
		options = append(options, Param("rev", docRev))
	}
	return d.Put(ctx, designDocID(ddoc), doc, options...)
}
