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
	"errors"
	"net/http"
	"testing"

	"gitlab.com/flimzy/testy"
)

func TestStats(t *testing.T) {
	type test struct {
		db       *DB
		expected *DBInfo
		status   int
		err      string
	}
	tests := testy.NewTable()
	tests.Add("network error", test{
		db:     newTestDB(nil, errors.New("net error")),
		status: http.StatusBadGateway,
		err:    `Get "?http://example.com/testdb"?: net error`,
	})
	tests.Add("not found", test{
		db: newTestDB(&http.Response{
			StatusCode:    http.StatusNotFound,
			Header:        http.Header{"Content-Type": {"application/json"}},
			ContentLength: 76,
			Body:          Body(`{"error":"not_found","reason":"Database does not exist."}`),
		}, nil),
		status: http.StatusNotFound,
		err:    "Not Found: Database does not exist.",
	})
	tests.Add("success", func() interface{} {
		body := `{"db_name":"testdb","compact_running":false,"doc_count":57,"doc_del_count":3,"update_seq":"60-g1AAAA","sizes":{"file":65536,"external":1172,"active":2048},"cluster":{"q":2,"n":1,"r":1,"w":1},"props":{"partitioned":true}}`
		return test{
			db: newTestDB(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       Body(body),
			}, nil),
			expected: &DBInfo{
				Name:         "testdb",
				DocCount:     57,
				DeletedCount: 3,
				UpdateSeq:    "60-g1AAAA",
				DiskSize:     65536,
				ActiveSize:   2048,
				ExternalSize: 1172,
				Cluster:      ClusterConfig{Shards: 2, Replicas: 1, ReadQuorum: 1, WriteQuorum: 1},
				Partitioned:  true,
				RawResponse:  json.RawMessage(body),
			},
		}
	})
	tests.Add("numeric update_seq", test{
		db: newTestDB(&http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       Body(`{"db_name":"testdb","update_seq":60}`),
		}, nil),
		expected: &DBInfo{
			Name:        "testdb",
			UpdateSeq:   "60",
			RawResponse: json.RawMessage(`{"db_name":"testdb","update_seq":60}`),
		},
	})

	tests.Run(t, func(t *testing.T, test test) {
		info, err := test.db.Stats(context.Background())
		statusErrorRE(t, test.err, test.status, err)
		if d := testy.DiffAsJSON(test.expected, info); d != nil {
			t.Error(d)
		}
	})
}

func TestPartitionStats(t *testing.T) {
	type test struct {
		db       *DB
		part     string
		expected *PartitionInfo
		status   int
		err      string
	}
	tests := testy.NewTable()
	tests.Add("missing name", test{
		db:     newTestDB(nil, nil),
		status: http.StatusBadRequest,
		err:    "couchdb3: name required",
	})
	tests.Add("network error", test{
		db:     newTestDB(nil, errors.New("net error")),
		part:   "dairy",
		status: http.StatusBadGateway,
		err:    `Get "?http://example.com/testdb/_partition/dairy"?: net error`,
	})
	tests.Add("success", func() interface{} {
		body := `{"db_name":"testdb","doc_count":4,"doc_del_count":1,"partition":"dairy","sizes":{"active":1024,"external":800}}`
		return test{
			db: newTestDB(&http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": {"application/json"}},
				Body:       Body(body),
			}, nil),
			part: "dairy",
			expected: &PartitionInfo{
				DBName:       "testdb",
				DocCount:     4,
				DeletedCount: 1,
				Partition:    "dairy",
				ActiveSize:   1024,
				ExternalSize: 800,
				RawResponse:  json.RawMessage(body),
			},
		}
	})

	tests.Run(t, func(t *testing.T, test test) {
		info, err := test.db.PartitionStats(context.Background(), test.part)
		statusErrorRE(t, test.err, test.status, err)
		if d := testy.DiffAsJSON(test.expected, info); d != nil {
			t.Error(d)
		}
	})
}
