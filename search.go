package esclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
	"github.com/billz-2/elasticsearch-dsl/querydsl"
	"github.com/pkg/errors"
)

// SearchRequest represents Elasticsearch search request.
// DSL takes precedence over Body.
type SearchRequest struct {
	Index              string              // Index name or pattern, empty when searching a point in time
	DSL                *querydsl.SearchDSL // Query built with the DSL
	Body               io.Reader           // Query body (JSON)
	Size               *int                // Number of results to return
	From               *int                // Offset for pagination
	WithTrackTotalHits bool                // Track total hits accurately
	PointInTime        *string             // Point-in-time ID for pagination
	PITKeepAlive       string              // Keep alive sent with PointInTime (e.g., "1m")
	SearchAfter        []interface{}       // Sort values of the last hit of the previous page
	Routing            string
	Preference         string
	TenantID           string // Tenant whose documents are searched, see WithTenantFilter
	ExtraParameters    map[string]string
}

// SearchResponse represents Elasticsearch search response.
type SearchResponse struct {
	Took         int                        `json:"took"`
	TimedOut     bool                       `json:"timed_out"`
	Shards       Shards                     `json:"_shards"`
	Hits         HitsResult                 `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations,omitempty"`
	PitID        string                     `json:"pit_id,omitempty"`
}

// TotalHits is the hit count. Relation is "eq" or "gte" when tracking stopped early.
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// HitsResult is the hits section of a search response.
type HitsResult struct {
	Total    *TotalHits `json:"total,omitempty"`
	MaxScore *float64   `json:"max_score"`
	Hits     []Hit      `json:"hits"`
}

// Hit is a single search result.
type Hit struct {
	Index       string                     `json:"_index"`
	ID          string                     `json:"_id"`
	Score       *float64                   `json:"_score"`
	Source      json.RawMessage            `json:"_source,omitempty"`
	Routing     string                     `json:"_routing,omitempty"`
	Version     *int64                     `json:"_version,omitempty"`
	SeqNo       *int64                     `json:"_seq_no,omitempty"`
	PrimaryTerm *int64                     `json:"_primary_term,omitempty"`
	Sort        []interface{}              `json:"sort,omitempty"`
	Fields      map[string]json.RawMessage `json:"fields,omitempty"`
	InnerHits   map[string]InnerHitsResult `json:"inner_hits,omitempty"`
}

// InnerHitsResult holds the inner hits of one collapse group or nested query.
type InnerHitsResult struct {
	Hits HitsResult `json:"hits"`
}

// Document decodes the hit _source into out.
func (h *Hit) Document(out interface{}) error {
	return decodeSource(h.Source, out)
}

// Total returns the total hit count, or 0 when tracking was disabled.
func (r *SearchResponse) Total() int64 {
	if r.Hits.Total == nil {
		return 0
	}
	return r.Hits.Total.Value
}

// Search performs search request.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.Index == "" && req.PointInTime == nil {
		return nil, errors.New("index name is required")
	}

	body, err := c.searchBody(req)
	if err != nil {
		return nil, err
	}

	query := params{}.
		str("routing", req.Routing).
		str("preference", req.Preference).
		extra(req.ExtraParameters)
	if req.Size != nil {
		query.str("size", strconv.Itoa(*req.Size))
	}
	if req.From != nil {
		query.str("from", strconv.Itoa(*req.From))
	}
	if req.WithTrackTotalHits {
		query.str("track_total_hits", "true")
	}

	// A point in time already pins the indices.
	path := []string{req.Index, "_search"}
	if req.PointInTime != nil {
		path = []string{"_search"}
	}

	var resp SearchResponse
	_, err = c.perform(ctx, request{
		op:     "search",
		method: http.MethodPost,
		path:   path,
		query:  query.values(),
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// searchBody renders the request body. Requests that need the body edited
// (tenant filter, point in time, search_after) work on a copy, leaving the
// caller's DSL untouched.
func (c *Client) searchBody(req *SearchRequest) (io.Reader, error) {
	filtered := c.tenant != nil && req.TenantID != ""
	if !filtered && req.PointInTime == nil && len(req.SearchAfter) == 0 {
		if req.DSL != nil {
			return jsonBody(req.DSL)
		}
		return req.Body, nil
	}

	dsl, err := copySearch(req.DSL, req.Body)
	if err != nil {
		return nil, err
	}

	if filtered {
		if err := c.tenant.Inject(dsl, req.TenantID, DetectIndexTarget(req.Index)); err != nil {
			return nil, err
		}
	}
	if len(req.SearchAfter) > 0 {
		dsl.SetSearchAfter(req.SearchAfter...)
	}
	if req.PointInTime != nil {
		pit := dsl.GetOrCreateNode("pit")
		pit.Set("id", *req.PointInTime)
		if req.PITKeepAlive != "" {
			pit.Set("keep_alive", req.PITKeepAlive)
		}
	}

	return jsonBody(dsl)
}

// copySearch returns an editable copy of dsl, or of the raw body when dsl is nil.
func copySearch(dsl *querydsl.SearchDSL, raw io.Reader) (*querydsl.SearchDSL, error) {
	var data []byte
	switch {
	case dsl != nil:
		b, err := json.Marshal(dsl)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal search dsl")
		}
		data = b
	case raw != nil:
		b, err := io.ReadAll(raw)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read search body")
		}
		data = b
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return querydsl.NewSearch(), nil
	}

	node := jsondsl.New()
	if err := node.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrap(err, "invalid search body")
	}
	return &querydsl.SearchDSL{Node: node}, nil
}
