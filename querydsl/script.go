package querydsl

import (
	"maps"
	"slices"

	"github.com/billz-2/elasticsearch-dsl/jsondsl"
)

// Script is an inline script used by script queries, script fields and updates.
type Script struct {
	*jsondsl.Node
}

// NewScript creates a script with the given source.
func NewScript(source string) *Script {
	s := &Script{Node: jsondsl.New()}
	s.SetSource(source)
	return s
}

// Source returns the script source.
func (s *Script) Source() (string, bool) {
	return s.GetString(s.PropertyName("source"))
}

// SetSource sets the script source.
func (s *Script) SetSource(source string) *Script {
	s.SetProperty("source", source)
	return s
}

// Lang returns the script language.
func (s *Script) Lang() (string, bool) {
	return s.GetString(s.PropertyName("lang"))
}

// SetLang sets the script language.
func (s *Script) SetLang(lang string) *Script {
	s.SetProperty("lang", lang)
	return s
}

// Params returns the script parameters.
func (s *Script) Params() (map[string]any, bool) {
	v, ok := s.Property("params")
	if !ok {
		return nil, false
	}
	params, ok := v.(map[string]any)
	return params, ok
}

// SetParams sets the script parameters.
func (s *Script) SetParams(params map[string]any) *Script {
	s.SetProperty("params", params)
	return s
}

func sortedParamKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
