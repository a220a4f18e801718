// Package script loads Starlark files whose exports become template
// lambdas and values.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"

	"github.com/jcreekmore/rustache"
)

// Module is a loaded Starlark script.
type Module struct {
	// Path is the path the script was loaded from.
	Path string

	// Exports contains the script's globals, minus names starting with _.
	Exports starlark.StringDict
}

// Load executes a .star file and captures its exports.
func Load(path string) (*Module, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	thread := &starlark.Thread{
		Name: fmt.Sprintf("load:%s", filepath.Base(path)),
		Print: func(_ *starlark.Thread, _ string) {
			// Ignore prints during load
		},
	}

	globals, err := starlark.ExecFile(thread, path, content, nil) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("Starlark execution error: %v", err),
		}
	}

	// Filter exports (exclude names starting with _)
	exports := make(starlark.StringDict)
	for name, value := range globals {
		if !strings.HasPrefix(name, "_") {
			exports[name] = value
		}
	}

	return &Module{Path: path, Exports: exports}, nil
}

// Bind adds the module's exports to a scope. Exported functions become
// lambdas; other values convert the same way their Go counterparts would.
func (m *Module) Bind(scope *rustache.Scope, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	names := make([]string, 0, len(m.Exports))
	for name := range m.Exports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := m.Exports[name]
		if fn, ok := value.(starlark.Callable); ok {
			scope.Set(name, m.lambda(name, fn, logger))
			continue
		}

		gv, err := toGo(value)
		if err != nil {
			return &LoadError{File: m.Path, Message: fmt.Sprintf("export %q: %v", name, err)}
		}
		if gv == nil {
			continue
		}
		v, err := rustache.ValueOf(gv)
		if err != nil {
			return &LoadError{File: m.Path, Message: fmt.Sprintf("export %q: %v", name, err)}
		}
		scope.Set(name, v)
	}
	return nil
}

// lambda wraps a Starlark callable as a template lambda. A lambda has no
// error channel back to the renderer, so script failures are logged and
// the call expands to nothing.
func (m *Module) lambda(name string, fn starlark.Callable, logger *slog.Logger) rustache.Lambda {
	return func(input string) string {
		thread := &starlark.Thread{
			Name: fmt.Sprintf("call:%s", name),
			Print: func(_ *starlark.Thread, msg string) {
				logger.Debug("script print", "function", name, "message", msg)
			},
		}

		// Zero-parameter functions are useful for variable tags, where the
		// input is always empty anyway.
		args := starlark.Tuple{starlark.String(input)}
		if f, ok := fn.(*starlark.Function); ok && f.NumParams() == 0 {
			args = nil
		}

		result, err := starlark.Call(thread, fn, args, nil)
		if err != nil {
			logger.Error("script function failed", "function", name, "error", err)
			return ""
		}

		if _, ok := result.(starlark.NoneType); ok {
			return ""
		}
		if s, ok := starlark.AsString(result); ok {
			return s
		}
		return result.String()
	}
}

// toGo converts a Starlark value to its Go counterpart.
func toGo(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil

	case starlark.String:
		return string(val), nil

	case starlark.Bool:
		return bool(val), nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok {
			// Very large integers keep their decimal form
			return val.String(), nil
		}
		return i64, nil

	case starlark.Float:
		return float64(val), nil

	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			gv, err := toGo(val.Index(i))
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	case starlark.Tuple:
		result := make([]any, len(val))
		for i, item := range val {
			gv, err := toGo(item)
			if err != nil {
				return nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			result[i] = gv
		}
		return result, nil

	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			gv, err := toGo(item[1])
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", key, err)
			}
			result[string(key)] = gv
		}
		return result, nil

	default:
		// Fall back to the value's display form
		return val.String(), nil
	}
}

// LoadError represents an error loading or binding a script file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}
