// Package data loads template data files into render scopes.
package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcreekmore/rustache"
)

// Load reads a data file and converts it into a render scope. The file
// must hold a YAML mapping at the top level; JSON works too since YAML
// is a superset. An empty file yields an empty scope.
func Load(path string) (*rustache.Scope, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	scope, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("data file %s: %w", path, err)
	}
	return scope, nil
}

// Parse converts a YAML document into a render scope.
func Parse(content []byte) (*rustache.Scope, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	switch m := normalize(raw).(type) {
	case nil:
		return rustache.NewScope(), nil
	case map[string]any:
		return rustache.ScopeOf(m)
	case map[any]any:
		v, err := rustache.ValueOf(m)
		if err != nil {
			return nil, err
		}
		return v.(*rustache.Scope), nil
	default:
		return nil, fmt.Errorf("top-level value must be a mapping, got %T", raw)
	}
}

// normalize rewrites decoded values that have no template representation.
// yaml.v3 resolves unquoted ISO 8601 scalars to time.Time, which the
// value model does not accept.
func normalize(v any) any {
	switch v := v.(type) {
	case time.Time:
		return formatTimestamp(v)
	case []any:
		for i, elem := range v {
			v[i] = normalize(elem)
		}
		return v
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val)
		}
		return v
	case map[any]any:
		for k, val := range v {
			v[k] = normalize(val)
		}
		return v
	default:
		return v
	}
}

// formatTimestamp renders a timestamp the way it most likely appeared in
// the source document: date-only values stay date-only.
func formatTimestamp(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
