package rustache

// DefaultMaxDepth bounds lambda re-parse and partial inclusion recursion.
const DefaultMaxDepth = 64

// renderConfig carries per-render settings assembled from Options.
type renderConfig struct {
	partials PartialProvider
	maxDepth int
	delims   Delimiters
}

func defaultRenderConfig() renderConfig {
	return renderConfig{
		maxDepth: DefaultMaxDepth,
		delims:   DefaultDelimiters(),
	}
}

// Option configures a render pass.
type Option func(*renderConfig)

// WithPartials supplies the provider consulted for {{>name}} tags. Without
// one, any partial tag is a render error.
func WithPartials(p PartialProvider) Option {
	return func(c *renderConfig) {
		c.partials = p
	}
}

// WithMaxDepth overrides the recursion bound for lambda re-parses and
// partial inclusion. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(c *renderConfig) {
		if n >= 1 {
			c.maxDepth = n
		}
	}
}

// WithDelimiters sets the tag markers the template is parsed with, for
// sources written under non-default delimiters from the start. Parsed
// Templates carry their own delimiters; this option only affects the
// string and file entry points.
func WithDelimiters(open, close string) Option {
	return func(c *renderConfig) {
		if open != "" && close != "" {
			c.delims = Delimiters{Open: open, Close: close}
		}
	}
}
