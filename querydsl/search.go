package querydsl

import (
	"fmt"
	"strings"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// SearchDSL assembles the body of a _search request.
type SearchDSL struct {
	*jsondsl.Node
}

// NewSearch creates an empty search body.
func NewSearch() *SearchDSL {
	return &SearchDSL{Node: jsondsl.New()}
}

// From returns the offset of the first hit.
func (s *SearchDSL) From() (int, bool) {
	return s.GetInt(s.PropertyName("from"))
}

// SetFrom sets the offset of the first hit.
func (s *SearchDSL) SetFrom(from int) *SearchDSL {
	s.SetProperty("from", from)
	return s
}

// ResultSize returns the number of hits to return. It is the engine's size
// field, renamed because Len already reports the node size.
func (s *SearchDSL) ResultSize() (int, bool) {
	return s.GetInt("size")
}

// SetResultSize sets the number of hits to return.
func (s *SearchDSL) SetResultSize(size int) *SearchDSL {
	s.Set("size", size)
	return s
}

// TrackTotalHits returns the track_total_hits value, a bool or an int.
func (s *SearchDSL) TrackTotalHits() (any, bool) {
	return s.Property("trackTotalHits")
}

// SetTrackTotalHits toggles accurate hit counting.
func (s *SearchDSL) SetTrackTotalHits(track bool) *SearchDSL {
	s.SetProperty("trackTotalHits", track)
	return s
}

// SetTrackTotalHitsUpTo counts hits accurately up to limit.
func (s *SearchDSL) SetTrackTotalHitsUpTo(limit int) *SearchDSL {
	s.SetProperty("trackTotalHits", limit)
	return s
}

// Version reports whether hit versions are requested.
func (s *SearchDSL) Version() (bool, bool) {
	return s.GetBool(s.PropertyName("version"))
}

// SetVersion requests the version of each hit.
func (s *SearchDSL) SetVersion(v bool) *SearchDSL {
	s.SetProperty("version", v)
	return s
}

// SeqNoPrimaryTerm reports whether sequence numbers and primary terms are requested.
func (s *SearchDSL) SeqNoPrimaryTerm() (bool, bool) {
	return s.GetBool(s.PropertyName("seqNoPrimaryTerm"))
}

// SetSeqNoPrimaryTerm requests the sequence number and primary term of each hit.
func (s *SearchDSL) SetSeqNoPrimaryTerm(v bool) *SearchDSL {
	s.SetProperty("seqNoPrimaryTerm", v)
	return s
}

// SearchAfter returns the sort values to continue after.
func (s *SearchDSL) SearchAfter() ([]any, bool) {
	v, ok := s.Property("searchAfter")
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []any:
		return t, true
	case *jsondsl.List:
		return t.Items(), true
	}
	return nil, false
}

// SetSearchAfter continues pagination after the sort values of the last hit.
func (s *SearchDSL) SetSearchAfter(values ...any) *SearchDSL {
	s.SetProperty("searchAfter", values)
	return s
}

// Query returns the main query. It returns nil when none is set and
// ErrMalformedClause when the stored value is not a single named clause.
func (s *SearchDSL) Query() (*Query, error) {
	return clauseProperty(s.Node, "query")
}

// SetQuery sets the main query.
func (s *SearchDSL) SetQuery(q *Query) *SearchDSL {
	setClause(s.Node, "query", q)
	return s
}

// PostFilter returns the filter applied after aggregations are computed.
func (s *SearchDSL) PostFilter() (*Query, error) {
	return clauseProperty(s.Node, "postFilter")
}

// SetPostFilter sets the filter applied after aggregations are computed.
func (s *SearchDSL) SetPostFilter(q *Query) *SearchDSL {
	setClause(s.Node, "postFilter", q)
	return s
}

// Knn returns the knn clause.
func (s *SearchDSL) Knn() (*Knn, bool) {
	n, ok := s.GetNode(s.PropertyName("knn"))
	if !ok {
		return nil, false
	}
	return &Knn{Node: n}, true
}

// SetKnn sets the knn clause.
func (s *SearchDSL) SetKnn(k *Knn) *SearchDSL {
	if k == nil {
		s.Delete(s.PropertyName("knn"))
		return s
	}
	s.SetProperty("knn", k)
	return s
}

// Aggs returns the aggregations node.
func (s *SearchDSL) Aggs() (*jsondsl.Node, bool) {
	return s.GetNode(s.PropertyName("aggs"))
}

// SetAggs replaces the aggregations node.
func (s *SearchDSL) SetAggs(aggs *jsondsl.Node) *SearchDSL {
	s.SetProperty("aggs", aggs)
	return s
}

// Agg adds a named aggregation, creating the aggs node on first use.
func (s *SearchDSL) Agg(name string, agg any) *SearchDSL {
	s.GetOrCreateNode(s.PropertyName("aggs")).Set(name, agg)
	return s
}

// Sort replaces the sort with the entries added by fn.
func (s *SearchDSL) Sort(fn func(*SortBuilder)) *SearchDSL {
	s.SetProperty("sort", buildSort(fn))
	return s
}

// Collapse collapses the hits on field.
func (s *SearchDSL) Collapse(field string, configure func(*Collapse)) *SearchDSL {
	s.SetProperty("collapse", newConfiguredCollapse(field, configure))
	return s
}

// CollapseSpec returns the collapse definition.
func (s *SearchDSL) CollapseSpec() (*Collapse, bool) {
	n, ok := s.GetNode(s.PropertyName("collapse"))
	if !ok {
		return nil, false
	}
	return &Collapse{Node: n}, true
}

// Rescore appends rescorers. They are applied in order.
func (s *SearchDSL) Rescore(rescorers ...*Rescorer) *SearchDSL {
	l := s.GetOrCreateList(s.PropertyName("rescore"))
	for _, r := range rescorers {
		if r != nil {
			l.Add(r)
		}
	}
	return s
}

// Rescorer builds a rescorer for use with Rescore.
func (s *SearchDSL) Rescorer(windowSize int, configure func(*RescoreQuery)) *Rescorer {
	return NewRescorer(windowSize, configure)
}

// SetSource sets _source: a bool, a field pattern list or an includes/excludes node.
func (s *SearchDSL) SetSource(source any) *SearchDSL {
	s.Set("_source", source)
	return s
}

// SetMinScore drops hits scoring below min.
func (s *SearchDSL) SetMinScore(score float64) *SearchDSL {
	s.SetProperty("minScore", score)
	return s
}

// Field is a typed reference to a document field.
type Field string

func (f Field) String() string {
	return string(f)
}

// Dotted joins path elements into a dotted field path, e.g. Dotted("address", City) -> "address.city".
func Dotted(elements ...any) string {
	parts := make([]string, 0, len(elements))
	for _, e := range elements {
		switch t := e.(type) {
		case string:
			parts = append(parts, t)
		case fmt.Stringer:
			parts = append(parts, t.String())
		default:
			parts = append(parts, fmt.Sprint(t))
		}
	}
	return strings.Join(parts, ".")
}
