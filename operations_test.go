package esclient

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLifecycle(t *testing.T) {
	c, es := newTestClient(t)
	ctx := context.Background()

	exists, err := c.IndexExists(ctx, "products")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, http.MethodHead, es.last().Method)

	err = c.CreateIndex(ctx, &CreateIndexRequest{
		Index: "products",
		Body:  strings.NewReader(`{"mappings":{"properties":{"name":{"type":"text"}}}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", es.last().ContentType)

	exists, err = c.IndexExists(ctx, "products")
	require.NoError(t, err)
	assert.True(t, exists)

	err = c.CreateIndex(ctx, &CreateIndexRequest{Index: "products"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCodeOf(err))

	require.NoError(t, c.Refresh(ctx, "products"))
	assert.Equal(t, "/products/_refresh", es.last().Path)

	require.NoError(t, c.DeleteIndex(ctx, "products"))

	err = c.DeleteIndex(ctx, "products")
	assert.True(t, IsNotFound(err))
}

func TestIndexAdmin_Validation(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	assert.Error(t, c.CreateIndex(ctx, &CreateIndexRequest{}))
	assert.Error(t, c.DeleteIndex(ctx, ""))
	_, err := c.IndexExists(ctx, "")
	assert.Error(t, err)
	_, err = c.Count(ctx, &CountRequest{})
	assert.Error(t, err)
	_, err = c.DeleteByQuery(ctx, &DeleteByQueryRequest{})
	assert.Error(t, err)
	_, err = c.UpdateByQuery(ctx, &UpdateByQueryRequest{})
	assert.Error(t, err)
	_, err = c.OpenPIT(ctx, &OpenPITRequest{})
	assert.Error(t, err)
	assert.Error(t, c.ClosePIT(ctx, ""))
}

func TestRefresh_AllIndices(t *testing.T) {
	c, es := newTestClient(t)

	require.NoError(t, c.Refresh(context.Background(), ""))
	assert.Equal(t, "/_refresh", es.last().Path)
}

func TestBulk_Operations(t *testing.T) {
	c, es := newTestClient(t)

	resp, err := c.Bulk(context.Background(), &BulkRequest{
		Index:   "products",
		Refresh: RefreshTrue,
		Operations: []BulkOperation{
			{ID: "1", Document: product{Name: "lamp"}},
			{Action: BulkActionCreate, Index: "archive", ID: "2", Document: product{Name: "desk"}},
			{Action: BulkActionUpdate, ID: "1", Document: map[string]interface{}{"price": 9}},
			{Action: BulkActionDelete, ID: "3", Routing: "r"},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Errors)
	assert.Empty(t, resp.Failed())

	req := es.last()
	assert.Equal(t, "/products/_bulk", req.Path)
	assert.Equal(t, "application/x-ndjson", req.ContentType)
	assert.Equal(t, "true", req.Query.Get("refresh"))

	lines := strings.Split(strings.TrimSuffix(string(req.Body), "\n"), "\n")
	assert.Equal(t, []string{
		`{"index":{"_id":"1"}}`,
		`{"name":"lamp","price":0}`,
		`{"create":{"_index":"archive","_id":"2"}}`,
		`{"name":"desk","price":0}`,
		`{"update":{"_id":"1"}}`,
		`{"doc":{"price":9}}`,
		`{"delete":{"_id":"3","routing":"r"}}`,
	}, lines)
}

func TestBulk_RawBody(t *testing.T) {
	c, es := newTestClient(t)

	body := "{\"index\":{\"_index\":\"products\",\"_id\":\"1\"}}\n{\"name\":\"lamp\"}\n"
	_, err := c.Bulk(context.Background(), &BulkRequest{Body: strings.NewReader(body)})
	require.NoError(t, err)

	assert.Equal(t, "/_bulk", es.last().Path)
	assert.Equal(t, body, string(es.last().Body))

	_, err = c.Bulk(context.Background(), &BulkRequest{})
	assert.Error(t, err)
}

func TestBulkResponse_Failed(t *testing.T) {
	resp := &BulkResponse{
		Errors: true,
		Items: []map[string]BulkItemResponse{
			{"index": {ID: "1", Status: 201}},
			{"create": {ID: "2", Status: 409, Error: &ErrorCause{Type: "version_conflict_engine_exception"}}},
		},
	}

	failed := resp.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].ID)
}

func TestRawRequest(t *testing.T) {
	c, es := newTestClient(t)
	ctx := context.Background()

	status, result, err := c.RawRequest(ctx, "put", "/_ilm/policy/raw?master_timeout=30s", map[string]interface{}{
		"policy": map[string]interface{}{"phases": map[string]interface{}{}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, result["acknowledged"])

	req := es.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/_ilm/policy/raw", req.Path)
	assert.Equal(t, "30s", req.Query.Get("master_timeout"))

	status, _, err = c.RawRequest(ctx, http.MethodGet, "_ilm/policy/none", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}
