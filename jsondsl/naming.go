package jsondsl

import (
	"maps"
	"slices"

	"github.com/stoewer/go-strcase"
)

// NamingConvention controls how property names are converted to wire keys.
type NamingConvention int

const (
	// ConvertToSnakeCase converts camelCase property names to snake_case.
	ConvertToSnakeCase NamingConvention = iota
	// AsIs keeps property names unchanged.
	AsIs
)

// ConvertPropertyName converts name according to the convention.
// Names starting with an underscore, such as _source or _id, are engine
// metadata keys and are never converted.
func ConvertPropertyName(name string, c NamingConvention) string {
	if c == AsIs || name == "" || name[0] == '_' {
		return name
	}
	return strcase.SnakeCase(name)
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
