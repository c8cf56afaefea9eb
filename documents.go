package esclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// IndexDocumentRequest represents an index document request.
// Without ID the engine assigns one.
type IndexDocumentRequest struct {
	Index    string      // Index, alias or data stream
	ID       string      // Optional document ID
	Document interface{} // Document encoded as JSON when Body is nil
	Body     io.Reader   // Pre-serialized JSON document

	IfSeqNo             *int64
	IfPrimaryTerm       *int64
	OpType              OpType
	Pipeline            string
	Refresh             Refresh
	Routing             string
	Timeout             time.Duration
	Version             *int64
	VersionType         VersionType
	WaitForActiveShards string
	RequireAlias        *bool
	ExtraParameters     map[string]string
}

// DocumentIndexResponse is returned by index and delete document calls.
type DocumentIndexResponse struct {
	Index       string `json:"_index"`
	Type        string `json:"_type,omitempty"`
	ID          string `json:"_id"`
	Version     int64  `json:"_version"`
	Result      string `json:"result"`
	Shards      Shards `json:"_shards"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
}

// GetDocumentRequest represents a get document request.
type GetDocumentRequest struct {
	Index        string
	ID           string
	Preference   string
	Realtime     *bool
	Refresh      *bool
	Routing      string
	StoredFields []string
	// Source is "true", "false" or a comma separated list of fields to return.
	Source string
	// SourceExcludes and SourceIncludes are sent as _source_excludes and
	// _source_includes. Elasticsearch 8.9.0 ignores them on single document
	// reads (elastic/elasticsearch#98310); use Source for field filtering there.
	SourceExcludes  []string
	SourceIncludes  []string
	Version         *int64
	VersionType     VersionType
	ExtraParameters map[string]string
}

// GetDocumentResponse represents a fetched document.
type GetDocumentResponse struct {
	Index       string                     `json:"_index"`
	Type        string                     `json:"_type,omitempty"`
	ID          string                     `json:"_id"`
	Version     int64                      `json:"_version"`
	Source      json.RawMessage            `json:"_source,omitempty"`
	SeqNo       int64                      `json:"_seq_no"`
	PrimaryTerm int64                      `json:"_primary_term"`
	Found       bool                       `json:"found"`
	Routing     string                     `json:"_routing,omitempty"`
	Fields      map[string]json.RawMessage `json:"fields,omitempty"`
	Error       *ErrorCause                `json:"error,omitempty"`
}

// Document decodes the document _source into out.
func (r *GetDocumentResponse) Document(out interface{}) error {
	return decodeSource(r.Source, out)
}

// DeleteDocumentRequest represents a delete document request.
type DeleteDocumentRequest struct {
	Index               string
	ID                  string
	IfSeqNo             *int64
	IfPrimaryTerm       *int64
	Refresh             Refresh
	Routing             string
	Timeout             time.Duration
	Version             *int64
	VersionType         VersionType
	WaitForActiveShards string
	ExtraParameters     map[string]string
}

// IndexDocument stores a document, creating it or replacing an existing one.
// Version conflicts surface as a 409 *StatusError.
func (c *Client) IndexDocument(ctx context.Context, req *IndexDocumentRequest) (*DocumentIndexResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}

	body, err := bodyOf(req.Body, req.Document)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("document is required")
	}

	query := params{}.
		num("if_seq_no", req.IfSeqNo).
		num("if_primary_term", req.IfPrimaryTerm).
		str("op_type", string(req.OpType)).
		str("pipeline", req.Pipeline).
		str("refresh", string(req.Refresh)).
		str("routing", req.Routing).
		duration("timeout", req.Timeout).
		num("version", req.Version).
		str("version_type", string(req.VersionType)).
		str("wait_for_active_shards", req.WaitForActiveShards).
		flag("require_alias", req.RequireAlias).
		extra(req.ExtraParameters)

	var resp DocumentIndexResponse
	_, err = c.perform(ctx, request{
		op:     "index_document",
		method: http.MethodPost,
		path:   []string{req.Index, "_doc", req.ID},
		query:  query.values(),
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetDocument fetches a document by ID.
// A missing document or index returns a 404 *StatusError, see IsNotFound.
func (c *Client) GetDocument(ctx context.Context, req *GetDocumentRequest) (*GetDocumentResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}
	if req.ID == "" {
		return nil, errors.New("document ID is required")
	}

	query := params{}.
		str("preference", req.Preference).
		flag("realtime", req.Realtime).
		flag("refresh", req.Refresh).
		str("routing", req.Routing).
		strs("stored_fields", req.StoredFields).
		str("_source", req.Source).
		strs("_source_excludes", req.SourceExcludes).
		strs("_source_includes", req.SourceIncludes).
		num("version", req.Version).
		str("version_type", string(req.VersionType)).
		extra(req.ExtraParameters)

	var resp GetDocumentResponse
	_, err := c.perform(ctx, request{
		op:     "get_document",
		method: http.MethodGet,
		path:   []string{req.Index, "_doc", req.ID},
		query:  query.values(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// DeleteDocument removes a document by ID.
// A missing document returns a 404 *StatusError.
func (c *Client) DeleteDocument(ctx context.Context, req *DeleteDocumentRequest) (*DocumentIndexResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}
	if req.ID == "" {
		return nil, errors.New("document ID is required")
	}

	query := params{}.
		num("if_seq_no", req.IfSeqNo).
		num("if_primary_term", req.IfPrimaryTerm).
		str("refresh", string(req.Refresh)).
		str("routing", req.Routing).
		duration("timeout", req.Timeout).
		num("version", req.Version).
		str("version_type", string(req.VersionType)).
		str("wait_for_active_shards", req.WaitForActiveShards).
		extra(req.ExtraParameters)

	var resp DocumentIndexResponse
	_, err := c.perform(ctx, request{
		op:     "delete_document",
		method: http.MethodDelete,
		path:   []string{req.Index, "_doc", req.ID},
		query:  query.values(),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}
