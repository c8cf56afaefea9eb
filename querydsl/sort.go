package querydsl

import (
	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// SortOrder is the direction of a sort entry.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortMode picks the value used for sorting multi-valued fields.
type SortMode string

const (
	SortModeMin    SortMode = "min"
	SortModeMax    SortMode = "max"
	SortModeSum    SortMode = "sum"
	SortModeAvg    SortMode = "avg"
	SortModeMedian SortMode = "median"
)

const defaultScriptLang = "painless"

type sortSettings struct {
	order     SortOrder
	mode      SortMode
	missing   any
	lang      string
	params    map[string]any
	configure func(*jsondsl.Node)
}

// SortOption configures a sort entry.
type SortOption func(*sortSettings)

// Order sets the sort direction. Defaults to Desc.
func Order(o SortOrder) SortOption {
	return func(s *sortSettings) { s.order = o }
}

// Mode sets the multi-value sort mode.
func Mode(m SortMode) SortOption {
	return func(s *sortSettings) { s.mode = m }
}

// Missing sets how documents without the field sort: _last, _first or a value.
func Missing(v any) SortOption {
	return func(s *sortSettings) { s.missing = v }
}

// Lang sets the script language of a script sort. An empty string omits it.
func Lang(lang string) SortOption {
	return func(s *sortSettings) { s.lang = lang }
}

// Params sets the script parameters of a script sort.
func Params(params map[string]any) SortOption {
	return func(s *sortSettings) { s.params = params }
}

// Configure adds raw fields to the sort entry, e.g. nested or unmapped_type.
func Configure(fn func(*jsondsl.Node)) SortOption {
	return func(s *sortSettings) { s.configure = fn }
}

func newSortSettings(opts []SortOption) sortSettings {
	s := sortSettings{order: Desc, lang: defaultScriptLang}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SortBuilder accumulates sort entries in call order.
type SortBuilder struct {
	fields []any
}

// Field adds a bare field name, sorted in the engine's default order.
func (b *SortBuilder) Field(name string) *SortBuilder {
	b.fields = append(b.fields, name)
	return b
}

// Add adds a fully specified entry for field.
func (b *SortBuilder) Add(field string, opts ...SortOption) *SortBuilder {
	s := newSortSettings(opts)

	entry := jsondsl.New().Set("order", string(s.order))
	if s.mode != "" {
		entry.Set("mode", string(s.mode))
	}
	if s.missing != nil {
		entry.Set("missing", s.missing)
	}
	entry.Apply(s.configure)

	b.fields = append(b.fields, jsondsl.New().Set(field, entry))
	return b
}

// Script adds a script based entry. scriptType is number, string or version.
func (b *SortBuilder) Script(source, scriptType string, opts ...SortOption) *SortBuilder {
	s := newSortSettings(opts)

	script := jsondsl.New().Set("source", source)
	if s.lang != "" {
		script.Set("lang", s.lang)
	}
	if len(s.params) > 0 {
		params := jsondsl.New()
		for _, key := range sortedParamKeys(s.params) {
			params.Set(key, s.params[key])
		}
		script.Set("params", params)
	}

	entry := jsondsl.New().
		Set("order", string(s.order)).
		Set("type", scriptType).
		Set("script", script)
	entry.Apply(s.configure)

	b.fields = append(b.fields, jsondsl.New().Set("_script", entry))
	return b
}

// Fields returns the entries in call order.
func (b *SortBuilder) Fields() []any {
	out := make([]any, len(b.fields))
	copy(out, b.fields)
	return out
}

// Len returns the number of entries.
func (b *SortBuilder) Len() int {
	return len(b.fields)
}

func buildSort(fn func(*SortBuilder)) *jsondsl.List {
	var b SortBuilder
	if fn != nil {
		fn(&b)
	}
	return jsondsl.NewList(b.Fields()...)
}
