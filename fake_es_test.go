package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string // escaped path
	Query       url.Values
	Body        []byte
	ContentType string
}

type fakeDoc struct {
	source  json.RawMessage
	version int64
	seqNo   int64
}

type fakePolicy struct {
	version int64
	policy  json.RawMessage
}

// fakeES is an in-memory engine serving the endpoints used by Client.
type fakeES struct {
	mu       sync.Mutex
	indices  map[string]map[string]*fakeDoc
	policies map[string]*fakePolicy
	requests []recordedRequest
	seqNo    int64
	nextID   int
}

func newFakeES() *fakeES {
	return &fakeES{
		indices:  make(map[string]map[string]*fakeDoc),
		policies: make(map[string]*fakePolicy),
	}
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeES) {
	t.Helper()
	es := newFakeES()
	c, err := NewClient(es, "http://localhost:9200", opts...)
	require.NoError(t, err)
	return c, es
}

func (f *fakeES) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	var segs []string
	for _, s := range strings.Split(req.URL.EscapedPath(), "/") {
		if s == "" {
			continue
		}
		seg, err := url.PathUnescape(s)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, recordedRequest{
		Method:      req.Method,
		Path:        req.URL.EscapedPath(),
		Query:       req.URL.Query(),
		Body:        body,
		ContentType: req.Header.Get("Content-Type"),
	})

	status, payload := f.route(req.Method, segs, req.URL.Query(), body)
	return jsonResponse(status, payload), nil
}

func (f *fakeES) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return recordedRequest{}
	}
	return f.requests[len(f.requests)-1]
}

func jsonResponse(status int, payload interface{}) *http.Response {
	var b []byte
	if payload != nil {
		b, _ = json.Marshal(payload)
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func engineError(status int, typ, reason string) (int, interface{}) {
	cause := map[string]interface{}{"type": typ, "reason": reason}
	return status, map[string]interface{}{
		"error": map[string]interface{}{
			"root_cause": []interface{}{cause},
			"type":       typ,
			"reason":     reason,
		},
		"status": status,
	}
}

func (f *fakeES) route(method string, segs []string, q url.Values, body []byte) (int, interface{}) {
	n := len(segs)
	switch {
	case n == 3 && segs[0] == "_ilm" && segs[1] == "policy":
		return f.policy(method, segs[2], body)
	case n >= 2 && segs[1] == "_doc":
		id := ""
		if n == 3 {
			id = segs[2]
		}
		return f.document(method, segs[0], id, q, body)
	case n >= 1 && segs[n-1] == "_mget":
		index := ""
		if n == 2 {
			index = segs[0]
		}
		return f.mget(index, body)
	case n == 2 && segs[1] == "_search":
		return f.search(segs[0])
	case n == 1 && segs[0] == "_search":
		return f.search("")
	case n >= 1 && segs[n-1] == "_refresh":
		return http.StatusOK, map[string]interface{}{"_shards": map[string]int{"total": 1, "successful": 1, "failed": 0}}
	case n >= 1 && segs[n-1] == "_bulk":
		return http.StatusOK, map[string]interface{}{"took": 1, "errors": false, "items": []interface{}{}}
	case n == 1 && !strings.HasPrefix(segs[0], "_"):
		return f.index(method, segs[0])
	}
	return engineError(http.StatusBadRequest, "illegal_argument_exception", "unsupported request "+method+" /"+strings.Join(segs, "/"))
}

func (f *fakeES) index(method, name string) (int, interface{}) {
	_, exists := f.indices[name]
	switch method {
	case http.MethodHead:
		if !exists {
			return http.StatusNotFound, nil
		}
		return http.StatusOK, nil
	case http.MethodPut:
		if exists {
			return engineError(http.StatusBadRequest, "resource_already_exists_exception", "index ["+name+"] already exists")
		}
		f.indices[name] = make(map[string]*fakeDoc)
		return http.StatusOK, map[string]interface{}{"acknowledged": true, "index": name}
	case http.MethodDelete:
		if !exists {
			return engineError(http.StatusNotFound, "index_not_found_exception", "no such index ["+name+"]")
		}
		delete(f.indices, name)
		return http.StatusOK, map[string]interface{}{"acknowledged": true}
	}
	return engineError(http.StatusMethodNotAllowed, "method_not_allowed", method)
}

func (f *fakeES) docResponse(index, id string, d *fakeDoc, result string) map[string]interface{} {
	return map[string]interface{}{
		"_index":        index,
		"_id":           id,
		"_version":      d.version,
		"result":        result,
		"_shards":       map[string]int{"total": 2, "successful": 1, "failed": 0},
		"_seq_no":       d.seqNo,
		"_primary_term": 1,
	}
}

func (f *fakeES) document(method, index, id string, q url.Values, body []byte) (int, interface{}) {
	docs := f.indices[index]

	switch method {
	case http.MethodPost, http.MethodPut:
		if docs == nil {
			docs = make(map[string]*fakeDoc)
			f.indices[index] = docs
		}
		if id == "" {
			f.nextID++
			id = fmt.Sprintf("generated-%d", f.nextID)
		}
		if !json.Valid(body) {
			return engineError(http.StatusBadRequest, "mapper_parsing_exception", "failed to parse")
		}
		existing, ok := docs[id]
		if ok && q.Get("op_type") == "create" {
			return engineError(http.StatusConflict, "version_conflict_engine_exception",
				"["+id+"]: version conflict, document already exists (current version ["+fmt.Sprint(existing.version)+"])")
		}
		f.seqNo++
		d := &fakeDoc{source: json.RawMessage(body), version: 1, seqNo: f.seqNo}
		result, status := "created", http.StatusCreated
		if ok {
			d.version = existing.version + 1
			result, status = "updated", http.StatusOK
		}
		docs[id] = d
		return status, f.docResponse(index, id, d, result)

	case http.MethodGet:
		if docs == nil {
			return engineError(http.StatusNotFound, "index_not_found_exception", "no such index ["+index+"]")
		}
		d, ok := docs[id]
		if !ok {
			return http.StatusNotFound, map[string]interface{}{"_index": index, "_id": id, "found": false}
		}
		return http.StatusOK, f.getResponse(index, id, d)

	case http.MethodDelete:
		d, ok := docs[id]
		if !ok {
			return http.StatusNotFound, map[string]interface{}{
				"_index": index, "_id": id, "_version": 1, "result": "not_found",
				"_shards": map[string]int{"total": 2, "successful": 1, "failed": 0},
				"_seq_no": f.seqNo, "_primary_term": 1,
			}
		}
		delete(docs, id)
		f.seqNo++
		d.version++
		d.seqNo = f.seqNo
		return http.StatusOK, f.docResponse(index, id, d, "deleted")
	}
	return engineError(http.StatusMethodNotAllowed, "method_not_allowed", method)
}

func (f *fakeES) getResponse(index, id string, d *fakeDoc) map[string]interface{} {
	return map[string]interface{}{
		"_index":        index,
		"_id":           id,
		"_version":      d.version,
		"_seq_no":       d.seqNo,
		"_primary_term": 1,
		"found":         true,
		"_source":       d.source,
	}
}

func (f *fakeES) mget(index string, body []byte) (int, interface{}) {
	var req struct {
		IDs  []string `json:"ids"`
		Docs []struct {
			ID    string `json:"_id"`
			Index string `json:"_index"`
		} `json:"docs"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return engineError(http.StatusBadRequest, "parse_exception", err.Error())
	}

	type ref struct{ index, id string }
	var refs []ref
	for _, id := range req.IDs {
		refs = append(refs, ref{index: index, id: id})
	}
	for _, d := range req.Docs {
		idx := d.Index
		if idx == "" {
			idx = index
		}
		refs = append(refs, ref{index: idx, id: d.ID})
	}

	out := make([]interface{}, 0, len(refs))
	for _, r := range refs {
		if d, ok := f.indices[r.index][r.id]; ok {
			out = append(out, f.getResponse(r.index, r.id, d))
			continue
		}
		out = append(out, map[string]interface{}{"_index": r.index, "_id": r.id, "found": false})
	}
	return http.StatusOK, map[string]interface{}{"docs": out}
}

func (f *fakeES) search(index string) (int, interface{}) {
	var hits []interface{}
	indices := []string{index}
	if index == "" {
		indices = indices[:0]
		for name := range f.indices {
			indices = append(indices, name)
		}
		sort.Strings(indices)
	}
	for _, idx := range indices {
		docs := f.indices[idx]
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			hits = append(hits, map[string]interface{}{
				"_index":  idx,
				"_id":     id,
				"_score":  1.0,
				"_source": docs[id].source,
				"sort":    []interface{}{id},
			})
		}
	}
	return http.StatusOK, map[string]interface{}{
		"took":      1,
		"timed_out": false,
		"_shards":   map[string]int{"total": 1, "successful": 1, "skipped": 0, "failed": 0},
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": len(hits), "relation": "eq"},
			"max_score": 1.0,
			"hits":      hits,
		},
	}
}

func (f *fakeES) policy(method, name string, body []byte) (int, interface{}) {
	switch method {
	case http.MethodPut:
		var req struct {
			Policy json.RawMessage `json:"policy"`
		}
		if err := json.Unmarshal(body, &req); err != nil || len(req.Policy) == 0 {
			return engineError(http.StatusBadRequest, "x_content_parse_exception", "required [policy] field is missing")
		}
		p, ok := f.policies[name]
		if !ok {
			p = &fakePolicy{}
			f.policies[name] = p
		}
		p.version++
		p.policy = req.Policy
		return http.StatusOK, map[string]interface{}{"acknowledged": true}

	case http.MethodGet:
		p, ok := f.policies[name]
		if !ok {
			return engineError(http.StatusNotFound, "resource_not_found_exception", "Lifecycle policy not found: "+name)
		}
		return http.StatusOK, map[string]interface{}{
			name: map[string]interface{}{
				"version":       p.version,
				"modified_date": "2026-10-14T10:00:00.000Z",
				"policy":        p.policy,
				"in_use_by":     map[string]interface{}{"indices": []string{}},
			},
		}

	case http.MethodDelete:
		if _, ok := f.policies[name]; !ok {
			return engineError(http.StatusNotFound, "resource_not_found_exception", "Lifecycle policy not found: "+name)
		}
		delete(f.policies, name)
		return http.StatusOK, map[string]interface{}{"acknowledged": true}
	}
	return engineError(http.StatusMethodNotAllowed, "method_not_allowed", method)
}
