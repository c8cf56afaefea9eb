package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// CreateIndex creates a new index with mappings and settings.
func (c *Client) CreateIndex(ctx context.Context, req *CreateIndexRequest) error {
	if req.Index == "" {
		return errors.New("index name is required")
	}

	_, err := c.perform(ctx, request{
		op:     "create_index",
		method: http.MethodPut,
		path:   []string{req.Index},
		body:   req.Body,
	}, nil)
	return err
}

// DeleteIndex deletes an index.
func (c *Client) DeleteIndex(ctx context.Context, indexName string) error {
	if indexName == "" {
		return errors.New("index name is required")
	}

	_, err := c.perform(ctx, request{
		op:     "delete_index",
		method: http.MethodDelete,
		path:   []string{indexName},
	}, nil)
	return err
}

// IndexExists checks if index exists.
func (c *Client) IndexExists(ctx context.Context, indexName string) (bool, error) {
	if indexName == "" {
		return false, errors.New("index name is required")
	}

	_, err := c.perform(ctx, request{
		op:     "index_exists",
		method: http.MethodHead,
		path:   []string{indexName},
	}, nil)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Refresh makes recent writes to the index visible to search.
// An empty index name refreshes all indices.
func (c *Client) Refresh(ctx context.Context, indexName string) error {
	_, err := c.perform(ctx, request{
		op:     "refresh",
		method: http.MethodPost,
		path:   []string{indexName, "_refresh"},
	}, nil)
	return err
}

// Count counts documents matching query.
func (c *Client) Count(ctx context.Context, req *CountRequest) (*CountResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}

	var resp CountResponse
	_, err := c.perform(ctx, request{
		op:     "count",
		method: http.MethodPost,
		path:   []string{req.Index, "_count"},
		body:   req.Body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// DeleteByQuery deletes documents matching query.
func (c *Client) DeleteByQuery(ctx context.Context, req *DeleteByQueryRequest) (*DeleteByQueryResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}

	query := params{}.
		str("conflicts", req.Conflicts).
		flag("refresh", req.Refresh)

	var resp DeleteByQueryResponse
	_, err := c.perform(ctx, request{
		op:     "delete_by_query",
		method: http.MethodPost,
		path:   []string{req.Index, "_delete_by_query"},
		query:  query.values(),
		body:   req.Body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// UpdateByQuery updates documents matching query.
func (c *Client) UpdateByQuery(ctx context.Context, req *UpdateByQueryRequest) (*UpdateByQueryResponse, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}

	query := params{}.
		str("conflicts", req.Conflicts).
		flag("refresh", req.Refresh)

	var resp UpdateByQueryResponse
	_, err := c.perform(ctx, request{
		op:     "update_by_query",
		method: http.MethodPost,
		path:   []string{req.Index, "_update_by_query"},
		query:  query.values(),
		body:   req.Body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// OpenPIT opens point-in-time for pagination.
func (c *Client) OpenPIT(ctx context.Context, req *OpenPITRequest) (*PIT, error) {
	if req.Index == "" {
		return nil, errors.New("index name is required")
	}
	keepAlive := req.KeepAlive
	if keepAlive == "" {
		keepAlive = "1m"
	}

	var pit PIT
	_, err := c.perform(ctx, request{
		op:     "open_pit",
		method: http.MethodPost,
		path:   []string{req.Index, "_pit"},
		query:  params{}.str("keep_alive", keepAlive).values(),
	}, &pit)
	if err != nil {
		return nil, err
	}

	return &pit, nil
}

// ClosePIT closes point-in-time.
func (c *Client) ClosePIT(ctx context.Context, pitID string) error {
	if pitID == "" {
		return errors.New("PIT ID is required")
	}

	body, err := jsonBody(map[string]interface{}{
		"id": pitID,
	})
	if err != nil {
		return err
	}

	_, err = c.perform(ctx, request{
		op:     "close_pit",
		method: http.MethodDelete,
		path:   []string{"_pit"},
		body:   body,
	}, nil)
	return err
}

// BulkAction is the action of a bulk operation.
type BulkAction string

const (
	BulkActionIndex  BulkAction = "index"
	BulkActionCreate BulkAction = "create"
	BulkActionUpdate BulkAction = "update"
	BulkActionDelete BulkAction = "delete"
)

// BulkOperation is a single typed bulk operation.
// Document is sent as the source line; update operations wrap it in "doc".
type BulkOperation struct {
	Action   BulkAction
	Index    string // Overrides the request index
	ID       string
	Routing  string
	Document interface{}
}

// bulkMeta represents a bulk API metadata line.
type bulkMeta struct {
	Index   string `json:"_index,omitempty"`
	ID      string `json:"_id,omitempty"`
	Routing string `json:"routing,omitempty"`
}

// encodeBulk renders operations as NDJSON.
func encodeBulk(ops []BulkOperation) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for i, op := range ops {
		action := op.Action
		if action == "" {
			action = BulkActionIndex
		}
		meta := map[BulkAction]bulkMeta{
			action: {Index: op.Index, ID: op.ID, Routing: op.Routing},
		}
		if err := enc.Encode(meta); err != nil {
			return nil, errors.Wrapf(err, "failed to encode bulk metadata of operation %d", i)
		}

		switch action {
		case BulkActionDelete:
			continue
		case BulkActionUpdate:
			if err := enc.Encode(map[string]interface{}{"doc": op.Document}); err != nil {
				return nil, errors.Wrapf(err, "failed to encode bulk document of operation %d", i)
			}
		default:
			if err := enc.Encode(op.Document); err != nil {
				return nil, errors.Wrapf(err, "failed to encode bulk document of operation %d", i)
			}
		}
	}

	return &buf, nil
}

// Bulk performs bulk operations.
// Per-item failures do not fail the call; check BulkResponse.Errors.
func (c *Client) Bulk(ctx context.Context, req *BulkRequest) (*BulkResponse, error) {
	body := req.Body
	if body == nil {
		if len(req.Operations) == 0 {
			return nil, errors.New("bulk body or operations are required")
		}
		encoded, err := encodeBulk(req.Operations)
		if err != nil {
			return nil, err
		}
		body = encoded
	}

	query := params{}.
		str("refresh", string(req.Refresh)).
		str("routing", req.Routing).
		str("pipeline", req.Pipeline).
		duration("timeout", req.Timeout)

	var resp BulkResponse
	_, err := c.perform(ctx, request{
		op:          "bulk",
		method:      http.MethodPost,
		path:        []string{req.Index, "_bulk"},
		query:       query.values(),
		body:        body,
		contentType: "application/x-ndjson",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RawRequest executes raw HTTP request (for custom operations).
// Path is relative to the cluster base URL and may carry a query string,
// e.g. "/_cluster/health?wait_for_status=yellow". A non-2xx
// answer is returned as *StatusError together with its status code.
func (c *Client) RawRequest(ctx context.Context, method, path string, body interface{}) (int, map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		r, err := jsonBody(body)
		if err != nil {
			return 0, nil, err
		}
		bodyReader = r
	}

	var query url.Values
	if i := strings.IndexByte(path, '?'); i >= 0 {
		q, err := url.ParseQuery(path[i+1:])
		if err != nil {
			return 0, nil, errors.Wrap(err, "invalid raw request query")
		}
		path, query = path[:i], q
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	var result map[string]interface{}
	status, err := c.perform(ctx, request{
		op:     "raw",
		method: strings.ToUpper(method),
		path:   segments,
		query:  query,
		body:   bodyReader,
	}, &result)

	return status, result, err
}
