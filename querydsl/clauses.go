package querydsl

import (
	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// Term matches documents whose field holds exactly value.
func Term(field string, value any, opts ...QueryOption) *Query {
	params := jsondsl.New().Set("value", value)
	for _, opt := range opts {
		opt(params)
	}
	return NewQuery("term", jsondsl.New().Set(field, params))
}

// Terms matches documents whose field holds any of values.
func Terms(field string, values []any, opts ...QueryOption) *Query {
	return newLeaf("terms", append([]QueryOption{WithParam(field, values)}, opts...))
}

// Match runs a full text match query on field.
func Match(field, text string, opts ...QueryOption) *Query {
	params := jsondsl.New().Set("query", text)
	for _, opt := range opts {
		opt(params)
	}
	return NewQuery("match", jsondsl.New().Set(field, params))
}

// Range matches documents whose field falls within the bounds given by opts.
func Range(field string, opts ...QueryOption) *Query {
	params := jsondsl.New()
	for _, opt := range opts {
		opt(params)
	}
	return NewQuery("range", jsondsl.New().Set(field, params))
}

// Gt sets an exclusive lower bound for Range.
func Gt(v any) QueryOption { return WithParam("gt", v) }

// Gte sets an inclusive lower bound for Range.
func Gte(v any) QueryOption { return WithParam("gte", v) }

// Lt sets an exclusive upper bound for Range.
func Lt(v any) QueryOption { return WithParam("lt", v) }

// Lte sets an inclusive upper bound for Range.
func Lte(v any) QueryOption { return WithParam("lte", v) }

// Exists matches documents that have a value for field.
func Exists(field string) *Query {
	return NewQuery("exists", jsondsl.New().Set("field", field))
}

// Ids matches documents by _id.
func Ids(ids ...string) *Query {
	return NewQuery("ids", jsondsl.New().Set("values", ids))
}

// BoolQuery edits the parameters of a bool clause.
type BoolQuery struct {
	node *jsondsl.Node
}

// Bool builds a bool clause.
func Bool(configure func(*BoolQuery)) *Query {
	q := NewQuery("bool", nil)
	if configure != nil {
		configure(&BoolQuery{node: q.details})
	}
	return q
}

// AsBool returns an editor for q if it is a bool clause.
func AsBool(q *Query) (*BoolQuery, bool) {
	if q == nil || q.name != "bool" {
		return nil, false
	}
	return &BoolQuery{node: q.details}, true
}

// Must adds clauses that must match and contribute to the score.
func (b *BoolQuery) Must(queries ...*Query) *BoolQuery {
	return b.add("must", queries)
}

// Filter adds clauses that must match in filter context.
func (b *BoolQuery) Filter(queries ...*Query) *BoolQuery {
	return b.add("filter", queries)
}

// Should adds optional clauses.
func (b *BoolQuery) Should(queries ...*Query) *BoolQuery {
	return b.add("should", queries)
}

// MustNot adds clauses that must not match.
func (b *BoolQuery) MustNot(queries ...*Query) *BoolQuery {
	return b.add("must_not", queries)
}

// MinimumShouldMatch sets minimum_should_match, a count or a percentage string.
func (b *BoolQuery) MinimumShouldMatch(v any) *BoolQuery {
	b.node.Set("minimum_should_match", v)
	return b
}

// Boost sets the clause boost.
func (b *BoolQuery) Boost(boost float64) *BoolQuery {
	b.node.Set("boost", boost)
	return b
}

// Clauses returns the number of clauses under occurrence (must, filter, should, must_not).
func (b *BoolQuery) Clauses(occurrence string) int {
	v, ok := b.node.Get(occurrence)
	if !ok {
		return 0
	}
	if l, ok := v.(*jsondsl.List); ok {
		return l.Len()
	}
	if s, ok := v.([]any); ok {
		return len(s)
	}
	return 1
}

func (b *BoolQuery) add(occurrence string, queries []*Query) *BoolQuery {
	// A single clause object is allowed by the engine and becomes the first item.
	l := b.node.GetOrCreateList(occurrence)
	for _, q := range queries {
		if q != nil {
			l.Add(q.Wrap())
		}
	}
	return b
}
