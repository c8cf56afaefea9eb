// Package querydsl builds Elasticsearch search request bodies from typed clauses.
//
// Every builder is backed by a jsondsl.Node, so fields the DSL does not model
// can still be set with raw keys. Builders are not safe for concurrent use.
package querydsl

import (
	"github.com/billz-2/elasticsearch-dsl/jsondsl"
	"github.com/pkg/errors"
)

// ErrMalformedClause is returned when a clause is read from a node that does
// not hold exactly one named entry.
var ErrMalformedClause = errors.New("malformed query clause")

// Query is a named query clause such as match_all or bool.
// It renders as a single-key object {name: details}.
type Query struct {
	name    string
	details *jsondsl.Node
}

// QueryOption configures the parameter object of a clause.
type QueryOption func(params *jsondsl.Node)

// WithBoost sets the clause boost.
func WithBoost(boost float64) QueryOption {
	return func(params *jsondsl.Node) { params.Set("boost", boost) }
}

// WithQueryName sets the _name used to report matched queries.
func WithQueryName(name string) QueryOption {
	return func(params *jsondsl.Node) { params.Set("_name", name) }
}

// WithParam sets an arbitrary clause parameter.
func WithParam(key string, value any) QueryOption {
	return func(params *jsondsl.Node) { params.Set(key, value) }
}

// NewQuery creates a clause with the given name. A nil details node is replaced by an empty one.
func NewQuery(name string, details *jsondsl.Node) *Query {
	if details == nil {
		details = jsondsl.New()
	}
	return &Query{name: name, details: details}
}

// Custom creates a clause of any type and lets configure fill in its parameters.
func Custom(name string, configure func(*jsondsl.Node)) *Query {
	q := NewQuery(name, nil)
	q.details.Apply(configure)
	return q
}

// Name returns the clause type name.
func (q *Query) Name() string {
	return q.name
}

// Details returns the clause parameters. Mutations are reflected in Wrap.
func (q *Query) Details() *jsondsl.Node {
	return q.details
}

// Set stores a raw parameter on the clause.
func (q *Query) Set(key string, value any) *Query {
	q.details.Set(key, value)
	return q
}

// Wrap returns the single-key node {name: details}.
func (q *Query) Wrap() *jsondsl.Node {
	return jsondsl.New().Set(q.name, q.details)
}

// AsNode returns the wrapped form, so a Query nested in a node renders correctly.
func (q *Query) AsNode() *jsondsl.Node {
	return q.Wrap()
}

// MarshalJSON renders the wrapped clause.
func (q *Query) MarshalJSON() ([]byte, error) {
	return q.Wrap().MarshalJSON()
}

func (q *Query) String() string {
	return q.Wrap().String()
}

// UnwrapQuery reconstructs a clause from its wrapped form.
// The value must hold exactly one entry whose value is an object.
func UnwrapQuery(value any) (*Query, error) {
	var node *jsondsl.Node
	switch t := value.(type) {
	case *Query:
		return t, nil
	case *jsondsl.Node:
		node = t
	case map[string]any:
		node = jsondsl.FromMap(t)
	case interface{ AsNode() *jsondsl.Node }:
		node = t.AsNode()
	default:
		return nil, errors.Wrapf(ErrMalformedClause, "unexpected clause type %T", value)
	}

	if node.Len() != 1 {
		return nil, errors.Wrapf(ErrMalformedClause, "clause must have exactly one key, got %d", node.Len())
	}

	name := node.Keys()[0]
	details, ok := node.GetNode(name)
	if !ok {
		return nil, errors.Wrapf(ErrMalformedClause, "clause %q has no parameter object", name)
	}
	return NewQuery(name, details), nil
}

// setClause stores q in wrapped form under the converted property name.
func setClause(n *jsondsl.Node, property string, q *Query) {
	if q == nil {
		n.Delete(n.PropertyName(property))
		return
	}
	n.SetProperty(property, q.Wrap())
}

// clauseProperty reads a clause back. An absent property yields nil without error.
func clauseProperty(n *jsondsl.Node, property string) (*Query, error) {
	v, ok := n.Property(property)
	if !ok {
		return nil, nil
	}
	q, err := UnwrapQuery(v)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", n.PropertyName(property))
	}
	return q, nil
}

// MatchAll matches every document.
func MatchAll(opts ...QueryOption) *Query {
	return newLeaf("match_all", opts)
}

// MatchNone matches no documents.
func MatchNone() *Query {
	return NewQuery("match_none", nil)
}

func newLeaf(name string, opts []QueryOption) *Query {
	q := NewQuery(name, nil)
	for _, opt := range opts {
		opt(q.details)
	}
	return q
}
