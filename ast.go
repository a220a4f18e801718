package rustache

// Position tracks source location for error reporting.
type Position struct {
	File   string
	Line   int
	Column int
}

// Node is the interface for all template AST nodes.
type Node interface {
	Pos() Position
	node() // marker method to restrict implementation
}

// nodeBase provides common Position handling for all nodes.
type nodeBase struct {
	pos Position
}

func (n *nodeBase) Pos() Position { return n.pos }
func (n *nodeBase) node()         {}

// TextNode represents literal template text (passed through unchanged).
type TextNode struct {
	nodeBase
	Text string
}

// VariableNode represents an interpolation tag: {{name}} or, with Raw set,
// {{{name}}} / {{&name}}.
type VariableNode struct {
	nodeBase
	Name string
	Raw  bool // skip HTML escaping
}

// SectionNode represents a {{#name}}...{{/name}} block.
//
// Inner holds the literal source text between the open and close tags,
// delimiters as written; it is what a lambda bound to the section name
// receives as input. Delims are the delimiters in effect at the open tag,
// used when a lambda's result is re-parsed.
type SectionNode struct {
	nodeBase
	Name     string
	Children []Node
	Inner    string
	Delims   Delimiters
}

// InvertedNode represents a {{^name}}...{{/name}} block, rendered only when
// the name resolves falsy or not at all.
type InvertedNode struct {
	nodeBase
	Name     string
	Children []Node
}

// PartialNode represents a {{>name}} include. Indent is the leading
// whitespace of a standalone partial tag, prefixed to each line the partial
// produces.
type PartialNode struct {
	nodeBase
	Name   string
	Indent string
}

// CommentNode represents a {{!comment}} tag. It produces no output.
type CommentNode struct {
	nodeBase
	Text string
}

// DelimNode represents a {{=open close=}} delimiter change. It produces no
// output but updates the delimiters used for lambda re-parsing from this
// point on.
type DelimNode struct {
	nodeBase
	Delims Delimiters
}

// Template represents a complete parsed template. A Template is immutable
// once parsed and safe for concurrent renders.
type Template struct {
	Nodes  []Node
	File   string     // Source file path
	Delims Delimiters // Delimiters the parse started with
}
