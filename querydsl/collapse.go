package querydsl

import (
	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// Collapse groups search hits by a field, keeping the top hit per group.
type Collapse struct {
	*jsondsl.Node
}

// NewCollapse creates a collapse on field.
func NewCollapse(field string) *Collapse {
	c := &Collapse{Node: jsondsl.New()}
	c.SetField(field)
	return c
}

// Field returns the collapse field.
func (c *Collapse) Field() (string, bool) {
	return c.GetString(c.PropertyName("field"))
}

// SetField sets the collapse field.
func (c *Collapse) SetField(field string) *Collapse {
	c.SetProperty("field", field)
	return c
}

// SetMaxConcurrentGroupSearches limits the concurrent inner hits requests per group.
func (c *Collapse) SetMaxConcurrentGroupSearches(n int) *Collapse {
	c.SetProperty("maxConcurrentGroupSearches", n)
	return c
}

// MaxConcurrentGroupSearches returns the configured limit.
func (c *Collapse) MaxConcurrentGroupSearches() (int, bool) {
	return c.GetInt(c.PropertyName("maxConcurrentGroupSearches"))
}

// InnerHits returns the inner hits definition.
func (c *Collapse) InnerHits() (*InnerHits, bool) {
	n, ok := c.GetNode(c.PropertyName("innerHits"))
	if !ok {
		return nil, false
	}
	return &InnerHits{Node: n}, true
}

// SetInnerHits sets the inner hits definition.
func (c *Collapse) SetInnerHits(ih *InnerHits) *Collapse {
	c.SetProperty("innerHits", ih)
	return c
}

// WithInnerHits expands each group with inner hits called name.
func (c *Collapse) WithInnerHits(name string, configure func(*InnerHits)) *Collapse {
	ih := NewInnerHits(name)
	if configure != nil {
		configure(ih)
	}
	return c.SetInnerHits(ih)
}

// InnerHits describes the hits returned for every collapsed group.
type InnerHits struct {
	*jsondsl.Node
}

// NewInnerHits creates an inner hits definition.
func NewInnerHits(name string) *InnerHits {
	ih := &InnerHits{Node: jsondsl.New()}
	ih.SetName(name)
	return ih
}

// Name returns the inner hits name.
func (ih *InnerHits) Name() (string, bool) {
	return ih.GetString(ih.PropertyName("name"))
}

// SetName sets the inner hits name.
func (ih *InnerHits) SetName(name string) *InnerHits {
	ih.SetProperty("name", name)
	return ih
}

// ResultSize returns the number of inner hits per group. Stored as "size".
func (ih *InnerHits) ResultSize() (int, bool) {
	return ih.GetInt("size")
}

// SetResultSize sets the number of inner hits per group.
func (ih *InnerHits) SetResultSize(size int) *InnerHits {
	ih.Set("size", size)
	return ih
}

// Sort sets the sort of the inner hits.
func (ih *InnerHits) Sort(fn func(*SortBuilder)) *InnerHits {
	ih.Set("sort", buildSort(fn))
	return ih
}

// Collapse returns the nested collapse of the inner hits.
func (ih *InnerHits) Collapse() (*Collapse, bool) {
	n, ok := ih.GetNode(ih.PropertyName("collapse"))
	if !ok {
		return nil, false
	}
	return &Collapse{Node: n}, true
}

// SetCollapse sets the nested collapse of the inner hits.
func (ih *InnerHits) SetCollapse(c *Collapse) *InnerHits {
	ih.SetProperty("collapse", c)
	return ih
}

// CollapseOn collapses the inner hits again on field.
func (ih *InnerHits) CollapseOn(field string, configure func(*Collapse)) *InnerHits {
	return ih.SetCollapse(newConfiguredCollapse(field, configure))
}

func newConfiguredCollapse(field string, configure func(*Collapse)) *Collapse {
	c := NewCollapse(field)
	if configure != nil {
		configure(c)
	}
	return c
}
