package jsondsl

import "encoding/json"

// List is an ordered sequence of values owned by a Node.
type List struct {
	items []any
}

// NewList creates a list holding items.
func NewList(items ...any) *List {
	l := &List{}
	l.items = append(l.items, items...)
	return l
}

// Add appends values to the list.
func (l *List) Add(values ...any) *List {
	l.items = append(l.items, values...)
	return l
}

// Len returns the number of items.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the items.
func (l *List) Items() []any {
	if l == nil {
		return nil
	}
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the item at index i.
func (l *List) At(i int) (any, bool) {
	if l == nil || i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// MarshalJSON renders the list as a JSON array. A nil or empty list renders as [].
func (l *List) MarshalJSON() ([]byte, error) {
	if l == nil || l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *List) toSlice() []any {
	out := make([]any, len(l.items))
	for i, item := range l.items {
		out[i] = plain(item)
	}
	return out
}
