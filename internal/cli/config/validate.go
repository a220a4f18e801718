package config

import (
	"fmt"
	"os"

	"github.com/jcreekmore/rustache/internal/cli/output"
)

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("output %q: want one of auto, text, markdown, json", c.OutputFormat)
	}
	if c.Delimiters != "" {
		if _, err := ParseDelimiters(c.Delimiters); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePartialsDir checks that the configured partials directory exists.
// Commands that resolve partials call this before rendering so a typo fails
// early instead of surfacing as an unknown partial mid-render.
func (c *Config) ValidatePartialsDir() error {
	if c.PartialsDir == "" {
		return nil
	}
	if _, err := os.Stat(c.PartialsDir); os.IsNotExist(err) {
		return fmt.Errorf("partials directory does not exist: %s\nHint: Create the directory or use --partials-dir to specify a different path", c.PartialsDir)
	}
	return nil
}
