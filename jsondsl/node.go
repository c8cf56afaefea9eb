// Package jsondsl provides an ordered, nestable key-value builder that renders
// to JSON. It is the building block for the query DSL and for request bodies
// that have no dedicated Go type.
package jsondsl

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Node is an ordered mapping from field name to value.
// Values may be scalars, nested nodes, lists, slices or anything encoding/json can marshal.
// Node is not safe for concurrent mutation.
type Node struct {
	keys       []string
	values     map[string]any
	convention NamingConvention
}

// New creates an empty node using the snake_case naming convention for properties.
func New() *Node {
	return NewWithConvention(ConvertToSnakeCase)
}

// NewWithConvention creates an empty node with the given property naming convention.
func NewWithConvention(c NamingConvention) *Node {
	return &Node{
		values:     make(map[string]any),
		convention: c,
	}
}

// Of creates a node from alternating key/value pairs. Keys are stored as is.
func Of(pairs ...any) *Node {
	n := New()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		n.Set(key, pairs[i+1])
	}
	return n
}

func (n *Node) init() {
	if n.values == nil {
		n.values = make(map[string]any)
	}
}

// Set stores value under key without any name conversion.
// An existing key keeps its position.
func (n *Node) Set(key string, value any) *Node {
	n.init()
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
	return n
}

// Put stores value under key converted with the given convention.
func (n *Node) Put(key string, value any, c NamingConvention) *Node {
	return n.Set(ConvertPropertyName(key, c), value)
}

// Get returns the raw value stored under key.
func (n *Node) Get(key string) (any, bool) {
	if n == nil || n.values == nil {
		return nil, false
	}
	v, ok := n.values[key]
	return v, ok
}

// Contains reports whether key is present.
func (n *Node) Contains(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Delete removes key from the node.
func (n *Node) Delete(key string) {
	if _, ok := n.Get(key); !ok {
		return
	}
	delete(n.values, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of entries.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// AsNode returns the node itself. Types embedding *Node expose their
// underlying node through it.
func (n *Node) AsNode() *Node {
	return n
}

// Convention returns the naming convention used for properties.
func (n *Node) Convention() NamingConvention {
	return n.convention
}

// PropertyName converts a Go-side property name to its wire key.
func (n *Node) PropertyName(name string) string {
	return ConvertPropertyName(name, n.convention)
}

// SetProperty stores value under the converted property name.
func (n *Node) SetProperty(name string, value any) *Node {
	return n.Set(n.PropertyName(name), value)
}

// Property reads the value stored under the converted property name.
func (n *Node) Property(name string) (any, bool) {
	return n.Get(n.PropertyName(name))
}

// Apply runs fn against the node and returns it, for builder style configuration.
func (n *Node) Apply(fn func(*Node)) *Node {
	if fn != nil {
		fn(n)
	}
	return n
}

// GetOrCreateNode returns the nested node under key, creating and storing it if absent.
// A decoded map[string]any found under key is converted into a node in place.
func (n *Node) GetOrCreateNode(key string) *Node {
	if v, ok := n.Get(key); ok {
		switch t := v.(type) {
		case *Node:
			return t
		case map[string]any:
			child := FromMap(t)
			n.Set(key, child)
			return child
		}
	}
	child := NewWithConvention(n.convention)
	n.Set(key, child)
	return child
}

// GetOrCreateList returns the list under key, creating and storing it if absent.
// A plain []any found under key is converted into a list in place, and any other
// single value becomes the first item of the new list.
func (n *Node) GetOrCreateList(key string) *List {
	if v, ok := n.Get(key); ok && v != nil {
		switch t := v.(type) {
		case *List:
			return t
		case []any:
			l := NewList(t...)
			n.Set(key, l)
			return l
		default:
			l := NewList(fromPlain(t))
			n.Set(key, l)
			return l
		}
	}
	l := NewList()
	n.Set(key, l)
	return l
}

// MarshalJSON renders the node as a JSON object preserving insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range n.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal key %q", key)
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(n.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal value of %q", key)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the node. Nested objects become nodes,
// arrays become lists. Key order of the input is preserved.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "failed to read json object")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("expected json object, got %v", tok)
	}
	decoded, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return errors.Wrap(err, "invalid data after json object")
		}
		return errors.Errorf("unexpected %v after json object", tok)
	}
	n.keys = decoded.keys
	n.values = decoded.values
	return nil
}

// ToMap renders the node into plain maps and slices.
func (n *Node) ToMap() map[string]any {
	if n == nil {
		return nil
	}
	out := make(map[string]any, len(n.keys))
	for _, key := range n.keys {
		out[key] = plain(n.values[key])
	}
	return out
}

// String returns the compact JSON form of the node.
func (n *Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return "<invalid: " + err.Error() + ">"
	}
	return string(b)
}

// FromMap copies a decoded map into a node. Keys are sorted since map order is lost.
func FromMap(m map[string]any) *Node {
	n := New()
	for _, key := range sortedKeys(m) {
		n.Set(key, fromPlain(m[key]))
	}
	return n
}

func fromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		items := make([]any, len(t))
		for i, item := range t {
			items[i] = fromPlain(item)
		}
		return NewList(items...)
	default:
		return v
	}
}

func plain(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.ToMap()
	case *List:
		return t.toSlice()
	case interface{ AsNode() *Node }:
		return t.AsNode().ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

func decodeObject(dec *json.Decoder) (*Node, error) {
	n := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read json key")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("unexpected json key %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		n.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "failed to close json object")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json value")
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			l := NewList()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				l.Add(item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Wrap(err, "failed to close json array")
			}
			return l, nil
		}
		return nil, errors.Errorf("unexpected json delimiter %v", t)
	case json.Number:
		// Integers outside int64 and decimals keep their literal form.
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t, nil
	default:
		return t, nil
	}
}
