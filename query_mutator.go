package esclient

import (
	"strings"

	"github.com/billz-2/elasticsearch-dsl/querydsl"
	"github.com/pkg/errors"
)

// IndexTarget tells whether an index holds one tenant or many.
type IndexTarget int

const (
	IndexTargetShared IndexTarget = iota
	IndexTargetPerTenant
)

func (t IndexTarget) String() string {
	if t == IndexTargetPerTenant {
		return "per_tenant"
	}
	return "shared"
}

// DetectIndexTarget determines if index is per-tenant or shared.
// Per-tenant indices end with "_" followed by the tenant UUID.
func DetectIndexTarget(indexName string) IndexTarget {
	parts := strings.Split(indexName, "_")
	if len(parts) < 2 {
		return IndexTargetShared
	}

	lastPart := parts[len(parts)-1]

	// UUID pattern: 36 chars with 4 dashes
	if len(lastPart) == 36 && strings.Count(lastPart, "-") == 4 {
		return IndexTargetPerTenant
	}

	return IndexTargetShared
}

// DefaultTenantField is the field filtered on when none is configured.
const DefaultTenantField = "tenant_id.keyword"

// TenantFilter restricts searches on shared indices to one tenant.
type TenantFilter struct {
	field string
}

// NewTenantFilter creates a filter on field. Empty field uses DefaultTenantField.
func NewTenantFilter(field string) *TenantFilter {
	if field == "" {
		field = DefaultTenantField
	}
	return &TenantFilter{field: field}
}

// Field returns the filtered field.
func (f *TenantFilter) Field() string {
	return f.field
}

// Inject adds a term filter on the tenant field to the query of dsl.
// Per-tenant indices are left untouched. A bool query gets the filter appended,
// any other query is wrapped into bool.must.
func (f *TenantFilter) Inject(dsl *querydsl.SearchDSL, tenantID string, target IndexTarget) error {
	if target == IndexTargetPerTenant {
		return nil
	}

	if tenantID == "" {
		return errors.New("tenant ID required for shared index")
	}

	query, err := dsl.Query()
	if err != nil {
		return errors.Wrap(err, "failed to read query")
	}

	filter := querydsl.Term(f.field, tenantID)

	if query == nil {
		dsl.SetQuery(querydsl.Bool(func(b *querydsl.BoolQuery) {
			b.Filter(filter)
		}))
		return nil
	}

	if b, ok := querydsl.AsBool(query); ok {
		b.Filter(filter)
		dsl.SetQuery(query)
		return nil
	}

	dsl.SetQuery(querydsl.Bool(func(b *querydsl.BoolQuery) {
		b.Must(query)
		b.Filter(filter)
	}))
	return nil
}
