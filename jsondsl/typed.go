package jsondsl

import (
	"encoding/json"
	"math"
)

// GetString returns the string stored under key.
func (n *Node) GetString(key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns the bool stored under key.
func (n *Node) GetBool(key string) (bool, bool) {
	v, ok := n.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetInt returns the integer stored under key. Whole floats are accepted since
// decoded JSON numbers may arrive as float64.
func (n *Node) GetInt(key string) (int, bool) {
	v, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		if t == math.Trunc(t) {
			return int(t), true
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}

// GetFloat returns the number stored under key as float64.
func (n *Node) GetFloat(key string) (float64, bool) {
	v, ok := n.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// GetNode returns the nested node stored under key. Types embedding *Node are unwrapped.
func (n *Node) GetNode(key string) (*Node, bool) {
	v, ok := n.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case *Node:
		return t, t != nil
	case interface{ AsNode() *Node }:
		child := t.AsNode()
		return child, child != nil
	case map[string]any:
		return FromMap(t), true
	}
	return nil, false
}

// GetList returns the list stored under key. Plain slices are wrapped into a
// new list that is not stored back; use GetOrCreateList to mutate in place.
func (n *Node) GetList(key string) (*List, bool) {
	v, ok := n.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case *List:
		return t, t != nil
	case []any:
		return NewList(t...), true
	}
	return nil, false
}
