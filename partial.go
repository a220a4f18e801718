package rustache

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// ErrPartialNotFound is wrapped by providers when a partial name has no
// template. The renderer surfaces it as a RenderError at the {{>name}} tag.
var ErrPartialNotFound = errors.New("partial not found")

// PartialProvider supplies named partial templates at render time.
type PartialProvider interface {
	// Partial returns the parsed template for name, or an error when the
	// name is unknown or the source fails to parse.
	Partial(name string) (*Template, error)
}

// PartialMap serves partials from in-memory template source. Sources are
// parsed on first use and the parse is cached. Safe for concurrent use.
type PartialMap struct {
	mu     sync.Mutex
	source map[string]string
	parsed map[string]*Template
}

// NewPartialMap returns an empty in-memory provider.
func NewPartialMap() *PartialMap {
	return &PartialMap{
		source: make(map[string]string),
		parsed: make(map[string]*Template),
	}
}

// Set registers template source under name, replacing any previous source.
// It returns the map for chaining.
func (p *PartialMap) Set(name, source string) *PartialMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source[name] = source
	delete(p.parsed, name)
	return p
}

// Partial implements PartialProvider.
func (p *PartialMap) Partial(name string) (*Template, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tpl, ok := p.parsed[name]; ok {
		return tpl, nil
	}
	src, ok := p.source[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPartialNotFound)
	}
	tpl, err := Parse(src, name)
	if err != nil {
		return nil, err
	}
	p.parsed[name] = tpl
	return tpl, nil
}

// DirPartials serves partials from a filesystem, resolving name to
// name+ext. Files are parsed on first use and the parse is cached. Safe for
// concurrent use.
type DirPartials struct {
	fsys fs.FS
	ext  string

	mu     sync.Mutex
	parsed map[string]*Template
}

// DefaultPartialExt is the extension DirPartials appends when none is
// given.
const DefaultPartialExt = ".mustache"

// NewDirPartials returns a provider reading partials from fsys. ext is
// appended to partial names to form file names; empty means
// DefaultPartialExt.
func NewDirPartials(fsys fs.FS, ext string) *DirPartials {
	if ext == "" {
		ext = DefaultPartialExt
	}
	return &DirPartials{
		fsys:   fsys,
		ext:    ext,
		parsed: make(map[string]*Template),
	}
}

// Partial implements PartialProvider.
func (d *DirPartials) Partial(name string) (*Template, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tpl, ok := d.parsed[name]; ok {
		return tpl, nil
	}

	path := name + d.ext
	b, err := fs.ReadFile(d.fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", name, ErrPartialNotFound)
		}
		return nil, fmt.Errorf("reading partial %q: %w", name, err)
	}

	tpl, err := Parse(string(b), path)
	if err != nil {
		return nil, err
	}
	d.parsed[name] = tpl
	return tpl, nil
}
