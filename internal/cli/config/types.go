// Package config loads CLI configuration from files, environment variables,
// and flags.
//
// Precedence (highest to lowest): flags > environment > config file >
// defaults. The config file is .rustache.yaml (or .yml), found in the
// project root; the root is the directory of an explicit --config file, or
// the nearest ancestor of the working directory containing a config file.
package config

import (
	"fmt"
	"strings"

	"github.com/jcreekmore/rustache"
)

// Config holds all CLI configuration options.
type Config struct {
	PartialsDir  string      `koanf:"partials_dir"`
	PartialExt   string      `koanf:"partial_ext"`
	DataFile     string      `koanf:"data_file"`
	ScriptFile   string      `koanf:"script_file"`
	Delimiters   string      `koanf:"delimiters"`
	MaxDepth     int         `koanf:"max_depth"`
	Verbose      bool        `koanf:"verbose"`
	OutputFormat string      `koanf:"output"`
	Serve        ServeConfig `koanf:"serve"`

	// ProjectRoot is the directory relative paths resolve against. It is
	// derived at load time, never read from the file.
	ProjectRoot string `koanf:"-"`
}

// ServeConfig holds options for the preview server.
type ServeConfig struct {
	Addr  string `koanf:"addr"`
	Watch bool   `koanf:"watch"`
}

// Default configuration values.
const (
	DefaultPartialExt = rustache.DefaultPartialExt
	DefaultDelimiters = "{{ }}"
	DefaultMaxDepth   = rustache.DefaultMaxDepth
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeAddr  = "localhost:8537"
)

// ParseDelimiters parses a delimiter pair written as two space-separated
// markers, e.g. "{{ }}" or "<% %>". Markers must not contain '='.
func ParseDelimiters(s string) (rustache.Delimiters, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return rustache.Delimiters{}, fmt.Errorf("delimiters %q: want two space-separated markers", s)
	}
	for _, f := range fields {
		if strings.Contains(f, "=") {
			return rustache.Delimiters{}, fmt.Errorf("delimiters %q: markers must not contain '='", s)
		}
	}
	return rustache.Delimiters{Open: fields[0], Close: fields[1]}, nil
}
