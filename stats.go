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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// DBInfo is the information returned for a single database by [DB.Stats]
// and [Client.DBsInfo].
type DBInfo struct {
	// Name is the database name.
	Name string
	// CompactRunning is true if the database is currently being compacted.
	CompactRunning bool
	// DocCount is the number of documents in the database.
	DocCount int64
	// DeletedCount is the number of deleted documents.
	DeletedCount int64
	// UpdateSeq is the current update sequence.
	UpdateSeq string
	// DiskSize is the size of the database file on disk, in bytes.
	DiskSize int64
	// ActiveSize is the size of the live data, in bytes.
	ActiveSize int64
	// ExternalSize is the uncompressed size of the database contents, in
	// bytes.
	ExternalSize int64
	// Cluster reports the shard and quorum configuration.
	Cluster ClusterConfig
	// Partitioned is true for partitioned databases.
	Partitioned bool
	// RawResponse is the raw response body, for access to any other fields.
	RawResponse json.RawMessage
}

// ClusterConfig is the shard and quorum configuration of a database.
type ClusterConfig struct {
	Shards      int `json:"q"`
	Replicas    int `json:"n"`
	ReadQuorum  int `json:"r"`
	WriteQuorum int `json:"w"`
}

type dbInfo struct {
	Name           string        `json:"db_name"`
	CompactRunning bool          `json:"compact_running"`
	DocCount       int64         `json:"doc_count"`
	DocDelCount    int64         `json:"doc_del_count"`
	Cluster        ClusterConfig `json:"cluster"`
	Sizes          struct {
		File     int64 `json:"file"`
		External int64 `json:"external"`
		Active   int64 `json:"active"`
	} `json:"sizes"`
	Props struct {
		Partitioned bool `json:"partitioned"`
	} `json:"props"`
	UpdateSeq json.RawMessage `json:"update_seq"`
	rawBody   json.RawMessage
}

func (s *dbInfo) UnmarshalJSON(p []byte) error {
	type dbInfoClone dbInfo
	c := dbInfoClone(*s)
	if err := json.Unmarshal(p, &c); err != nil {
		return err
	}
	*s = dbInfo(c)
	s.rawBody = p
	return nil
}

func (s *dbInfo) dbInfo() *DBInfo {
	return &DBInfo{
		Name:           s.Name,
		CompactRunning: s.CompactRunning,
		DocCount:       s.DocCount,
		DeletedCount:   s.DocDelCount,
		UpdateSeq:      string(bytes.Trim(s.UpdateSeq, `"`)),
		DiskSize:       s.Sizes.File,
		ActiveSize:     s.Sizes.Active,
		ExternalSize:   s.Sizes.External,
		Cluster:        s.Cluster,
		Partitioned:    s.Props.Partitioned,
		RawResponse:    s.rawBody,
	}
}

// Stats returns the database information from GET /{db}.
func (d *DB) Stats(ctx context.Context) (*DBInfo, error) {
	result := dbInfo{}
	if err := d.client.DoJSON(ctx, http.MethodGet, d.dbName, nil, &result); err != nil {
		return nil, err
	}
	return result.dbInfo(), nil
}

// PartitionInfo is the information returned for a single partition of a
// partitioned database.
type PartitionInfo struct {
	// DBName is the database name.
	DBName string
	// DocCount is the number of documents in the partition.
	DocCount int64
	// DeletedCount is the number of deleted documents in the partition.
	DeletedCount int64
	// Partition is the partition name.
	Partition string
	// ActiveSize is the size of the partition's live data, in bytes.
	ActiveSize int64
	// ExternalSize is the uncompressed size of the partition's contents, in
	// bytes.
	ExternalSize int64
	// RawResponse is the raw response body, for access to any other fields.
	RawResponse json.RawMessage
}

type partitionInfo struct {
	DBName      string `json:"db_name"`
	DocCount    int64  `json:"doc_count"`
	DocDelCount int64  `json:"doc_del_count"`
	Partition   string `json:"partition"`
	Sizes       struct {
		Active   int64 `json:"active"`
		External int64 `json:"external"`
	} `json:"sizes"`
	rawBody json.RawMessage
}

func (s *partitionInfo) UnmarshalJSON(p []byte) error {
	c := struct {
		partitionInfo
		UnmarshalJSON struct{}
	}{}
	if err := json.Unmarshal(p, &c); err != nil {
		return err
	}
	*s = c.partitionInfo
	s.rawBody = p
	return nil
}

// PartitionStats returns the information for the named partition, from
// GET /{db}/_partition/{name}.
func (d *DB) PartitionStats(ctx context.Context, name string) (*PartitionInfo, error) {
	if name == "" {
		return nil, missingArg("name")
	}
	result := partitionInfo{}
	if err := d.client.DoJSON(ctx, http.MethodGet, d.path("_partition/"+name), nil, &result); err != nil {
		return nil, err
	}
	return &PartitionInfo{
		DBName:       result.DBName,
		DocCount:     result.DocCount,
		DeletedCount: result.DocDelCount,
		Partition:    result.Partition,
		ActiveSize:   result.Sizes.Active,
		ExternalSize: result.Sizes.External,
		RawResponse:  result.rawBody,
	}, nil
}
