// Package workspace assembles a render environment from files on disk:
// the template, a partials directory, a data file, and script helpers.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jcreekmore/rustache"
	"github.com/jcreekmore/rustache/internal/data"
	"github.com/jcreekmore/rustache/internal/script"
)

// Config describes where a workspace finds its inputs. Only TemplateFile
// is required.
type Config struct {
	// TemplateFile is the template to render.
	TemplateFile string

	// DataFile optionally provides the root scope (YAML).
	DataFile string

	// ScriptFile optionally provides Starlark helpers bound into the
	// root scope.
	ScriptFile string

	// PartialsDir optionally resolves {{>name}} includes.
	PartialsDir string

	// PartialExt is the filename extension for partial lookups.
	PartialExt string

	// Delimiters are the tag markers templates start with.
	Delimiters rustache.Delimiters

	// MaxDepth bounds partial and lambda recursion.
	MaxDepth int
}

// Workspace renders a template together with its surrounding files.
// Every render re-reads the inputs, so a workspace stays valid across
// on-disk edits.
type Workspace struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a workspace. A nil logger discards log output.
func New(cfg Config, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.PartialExt == "" {
		cfg.PartialExt = rustache.DefaultPartialExt
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = rustache.DefaultMaxDepth
	}
	return &Workspace{cfg: cfg, logger: logger}
}

// Config returns the workspace configuration with defaults applied.
func (w *Workspace) Config() Config {
	return w.cfg
}

func (w *Workspace) delims() rustache.Delimiters {
	if w.cfg.Delimiters.Open == "" || w.cfg.Delimiters.Close == "" {
		return rustache.DefaultDelimiters()
	}
	return w.cfg.Delimiters
}

// TemplateSource returns the raw template text.
func (w *Workspace) TemplateSource() (string, error) {
	content, err := os.ReadFile(w.cfg.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(content), nil
}

// Template reads and parses the template file.
func (w *Workspace) Template() (*rustache.Template, error) {
	source, err := w.TemplateSource()
	if err != nil {
		return nil, err
	}
	return rustache.ParseWithDelimiters(source, w.cfg.TemplateFile, w.delims())
}

// Scope builds the root scope from the data file and script exports.
// Script names shadow data names.
func (w *Workspace) Scope() (*rustache.Scope, error) {
	scope := rustache.NewScope()

	if w.cfg.DataFile != "" {
		loaded, err := data.Load(w.cfg.DataFile)
		if err != nil {
			return nil, err
		}
		scope = loaded
	}

	if w.cfg.ScriptFile != "" {
		mod, err := script.Load(w.cfg.ScriptFile)
		if err != nil {
			return nil, err
		}
		if err := mod.Bind(scope, w.logger); err != nil {
			return nil, err
		}
		w.logger.Debug("script loaded", "path", mod.Path, "exports", len(mod.Exports))
	}

	return scope, nil
}

// Options assembles the render options for this workspace. A fresh
// partial provider is built each call so renders see on-disk edits.
func (w *Workspace) Options() []rustache.Option {
	opts := []rustache.Option{rustache.WithMaxDepth(w.cfg.MaxDepth)}
	if w.cfg.PartialsDir != "" {
		opts = append(opts, rustache.WithPartials(
			rustache.NewDirPartials(os.DirFS(w.cfg.PartialsDir), w.cfg.PartialExt)))
	}
	d := w.delims()
	opts = append(opts, rustache.WithDelimiters(d.Open, d.Close))
	return opts
}

// Render renders the workspace template to out. On failure, out holds
// whatever was produced before the error.
func (w *Workspace) Render(out io.Writer) error {
	tpl, err := w.Template()
	if err != nil {
		return err
	}
	scope, err := w.Scope()
	if err != nil {
		return err
	}
	return rustache.Render(tpl, scope, out, w.Options()...)
}

// RenderString renders the workspace template and returns the output.
// On failure, the partial output produced before the error is returned
// alongside it.
func (w *Workspace) RenderString() (string, error) {
	var buf strings.Builder
	err := w.Render(&buf)
	return buf.String(), err
}

// WatchPaths lists the files and directories whose changes invalidate a
// render.
func (w *Workspace) WatchPaths() []string {
	paths := []string{w.cfg.TemplateFile}
	if w.cfg.DataFile != "" {
		paths = append(paths, w.cfg.DataFile)
	}
	if w.cfg.ScriptFile != "" {
		paths = append(paths, w.cfg.ScriptFile)
	}
	if w.cfg.PartialsDir != "" {
		paths = append(paths, w.cfg.PartialsDir)
	}
	return paths
}
