package querydsl

import (
	"testing"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
	"github.com/stretchr/testify/assert"
)

func TestSortBuilder_Empty(t *testing.T) {
	s := NewSearch().Sort(func(*SortBuilder) {})
	assert.Equal(t, `{"sort":[]}`, render(t, s))
}

func TestSortBuilder_KeepsCallOrder(t *testing.T) {
	var b SortBuilder
	b.Field("_score").
		Add("price", Order(Asc), Mode(SortModeAvg), Missing("_last")).
		Add("created_at").
		Add("rank", Configure(func(n *jsondsl.Node) { n.Set("unmapped_type", "long") }))

	assert.Equal(t, 4, b.Len())
	assert.JSONEq(t, `[
		"_score",
		{"price":{"order":"asc","mode":"avg","missing":"_last"}},
		{"created_at":{"order":"desc"}},
		{"rank":{"order":"desc","unmapped_type":"long"}}
	]`, render(t, b.Fields()))
}

func TestSortBuilder_Script(t *testing.T) {
	var b SortBuilder
	b.Script("doc['price'].value * params.factor", "number", Order(Asc), Params(map[string]any{"factor": 1.1}))
	b.Script("doc['name'].value", "string", Lang(""))

	assert.JSONEq(t, `[
		{"_script":{"order":"asc","type":"number","script":{"source":"doc['price'].value * params.factor","lang":"painless","params":{"factor":1.1}}}},
		{"_script":{"order":"desc","type":"string","script":{"source":"doc['name'].value"}}}
	]`, render(t, b.Fields()))
}

func TestSortBuilder_FieldsIsACopy(t *testing.T) {
	var b SortBuilder
	b.Field("a")
	fields := b.Fields()
	fields[0] = "changed"

	assert.Equal(t, []any{"a"}, b.Fields())
}
