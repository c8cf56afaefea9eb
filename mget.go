package esclient

import (
	"context"
	"net/http"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
	"github.com/pkg/errors"
)

// MGetBody is the body of a multi-get request: either plain ids resolved
// against the request index, or docs addressing individual indices.
type MGetBody struct {
	*jsondsl.Node
}

// NewMGetBody creates an empty multi-get body.
func NewMGetBody() *MGetBody {
	return &MGetBody{Node: jsondsl.New()}
}

// SetIDs sets the ids to fetch from the request index.
func (b *MGetBody) SetIDs(ids ...string) *MGetBody {
	b.Set("ids", ids)
	return b
}

// Doc appends a document reference configured by configure.
func (b *MGetBody) Doc(configure func(*MGetDoc)) *MGetBody {
	doc := &MGetDoc{Node: jsondsl.New()}
	if configure != nil {
		configure(doc)
	}
	b.GetOrCreateList("docs").Add(doc)
	return b
}

// Docs returns the number of document references.
func (b *MGetBody) Docs() int {
	l, _ := b.GetList("docs")
	return l.Len()
}

// MGetDoc addresses a single document of a multi-get.
type MGetDoc struct {
	*jsondsl.Node
}

func (d *MGetDoc) SetID(id string) *MGetDoc {
	d.Set("_id", id)
	return d
}

func (d *MGetDoc) SetIndex(index string) *MGetDoc {
	d.Set("_index", index)
	return d
}

func (d *MGetDoc) SetRouting(routing string) *MGetDoc {
	d.SetProperty("routing", routing)
	return d
}

// SetSource toggles whether _source is returned for this document.
func (d *MGetDoc) SetSource(enabled bool) *MGetDoc {
	d.Set("_source", enabled)
	return d
}

// MGetRequest represents a multi-get request.
// Index is optional when every doc names its own index.
type MGetRequest struct {
	Index          string
	Body           *MGetBody
	Preference     string
	Realtime       *bool
	Refresh        *bool
	Routing        string
	StoredFields   []string
	Source         string
	SourceExcludes []string
	SourceIncludes []string
}

// MGetResponse holds one entry per requested document, in request order.
// Missing documents have Found false; per-document failures carry Error.
type MGetResponse struct {
	Docs []GetDocumentResponse `json:"docs"`
}

// MGet fetches multiple documents in one request.
func (c *Client) MGet(ctx context.Context, req *MGetRequest) (*MGetResponse, error) {
	if req.Body == nil || req.Body.Len() == 0 {
		return nil, errors.New("mget body with ids or docs is required")
	}

	body, err := jsonBody(req.Body)
	if err != nil {
		return nil, err
	}

	query := params{}.
		str("preference", req.Preference).
		flag("realtime", req.Realtime).
		flag("refresh", req.Refresh).
		str("routing", req.Routing).
		strs("stored_fields", req.StoredFields).
		str("_source", req.Source).
		strs("_source_excludes", req.SourceExcludes).
		strs("_source_includes", req.SourceIncludes)

	var resp MGetResponse
	_, err = c.perform(ctx, request{
		op:     "mget",
		method: http.MethodPost,
		path:   []string{req.Index, "_mget"},
		query:  query.values(),
		body:   body,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}
