package esclient

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Refresh controls when changes made by a request become visible to search.
type Refresh string

const (
	RefreshTrue    Refresh = "true"
	RefreshFalse   Refresh = "false"
	RefreshWaitFor Refresh = "wait_for"
)

// OpType is the index operation type.
type OpType string

const (
	OpTypeIndex  OpType = "index"
	OpTypeCreate OpType = "create"
)

// VersionType selects how the version parameter is checked.
type VersionType string

const (
	VersionTypeInternal    VersionType = "internal"
	VersionTypeExternal    VersionType = "external"
	VersionTypeExternalGte VersionType = "external_gte"
)

// Shards reports the shard outcome of a write or search.
type Shards struct {
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Skipped    int          `json:"skipped,omitempty"`
	Failed     int          `json:"failed"`
	Failures   []ShardError `json:"failures,omitempty"`
}

// ShardError describes a failure on a single shard.
type ShardError struct {
	Index  string     `json:"index,omitempty"`
	Shard  int        `json:"shard"`
	Node   string     `json:"node,omitempty"`
	Reason ErrorCause `json:"reason"`
}

// AcknowledgedResponse is returned by administrative endpoints.
type AcknowledgedResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// BulkRequest represents Elasticsearch bulk request.
// Body takes precedence over Operations.
type BulkRequest struct {
	Index      string          // Default index name
	Body       io.Reader       // Bulk operations body (NDJSON)
	Operations []BulkOperation // Typed operations, encoded as NDJSON when Body is nil
	Refresh    Refresh
	Routing    string
	Pipeline   string
	Timeout    time.Duration
}

// BulkResponse represents Elasticsearch bulk response.
type BulkResponse struct {
	Took   int                           `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]BulkItemResponse `json:"items"`
}

// BulkItemResponse is the outcome of one bulk operation.
type BulkItemResponse struct {
	Index       string      `json:"_index"`
	ID          string      `json:"_id"`
	Version     int64       `json:"_version,omitempty"`
	Result      string      `json:"result,omitempty"`
	Status      int         `json:"status"`
	SeqNo       int64       `json:"_seq_no,omitempty"`
	PrimaryTerm int64       `json:"_primary_term,omitempty"`
	Error       *ErrorCause `json:"error,omitempty"`
}

// Failed returns the items that carry an error.
func (r *BulkResponse) Failed() []BulkItemResponse {
	var out []BulkItemResponse
	for _, item := range r.Items {
		for _, res := range item {
			if res.Error != nil {
				out = append(out, res)
			}
		}
	}
	return out
}

// OpenPITRequest represents open point-in-time request.
type OpenPITRequest struct {
	Index     string // Index name or pattern
	KeepAlive string // Keep alive duration (e.g., "1m")
}

// PIT represents point-in-time response.
type PIT struct {
	ID string `json:"id"`
}

// DeleteByQueryRequest represents delete by query request.
type DeleteByQueryRequest struct {
	Index     string    // Index name
	Body      io.Reader // Query body (JSON)
	Conflicts string    // "abort" or "proceed"
	Refresh   *bool
}

// ByQueryResponse is returned by delete by query and update by query.
type ByQueryResponse struct {
	Took             int                      `json:"took"`
	TimedOut         bool                     `json:"timed_out"`
	Total            int                      `json:"total"`
	Deleted          int                      `json:"deleted"`
	Updated          int                      `json:"updated"`
	Batches          int                      `json:"batches"`
	VersionConflicts int                      `json:"version_conflicts"`
	Failures         []map[string]interface{} `json:"failures"`
}

// DeleteByQueryResponse represents delete by query response.
type DeleteByQueryResponse = ByQueryResponse

// UpdateByQueryResponse represents update by query response.
type UpdateByQueryResponse = ByQueryResponse

// CreateIndexRequest represents create index request.
type CreateIndexRequest struct {
	Index string    // Index name
	Body  io.Reader // Mappings and settings (JSON)
}

// CountRequest represents count request.
type CountRequest struct {
	Index string    // Index name or pattern
	Body  io.Reader // Query body (JSON), optional
}

// CountResponse represents count response.
type CountResponse struct {
	Count  int64  `json:"count"`
	Shards Shards `json:"_shards"`
}

// UpdateByQueryRequest represents update by query request.
type UpdateByQueryRequest struct {
	Index     string    // Index name
	Body      io.Reader // Script and query body (JSON)
	Conflicts string    // "abort" or "proceed"
	Refresh   *bool
}

// decodeSource unmarshals a raw _source into out.
func decodeSource(source json.RawMessage, out interface{}) error {
	if len(source) == 0 {
		return ErrNoSource
	}
	if err := json.Unmarshal(source, out); err != nil {
		return errors.Wrap(err, "failed to decode _source")
	}
	return nil
}
