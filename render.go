package rustache

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// renderer holds the state of one render pass: the output sink, the context
// stack, the delimiters in effect, and the re-parse depth.
type renderer struct {
	cfg    renderConfig
	out    io.Writer
	stack  *contextStack
	delims Delimiters
	depth  int
}

// Render evaluates tpl against root, writing output to w incrementally in
// document order. On error the render aborts; output already written to w
// stays written. A nil root renders as an empty scope.
func Render(tpl *Template, root *Scope, w io.Writer, opts ...Option) error {
	cfg := defaultRenderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if root == nil {
		root = NewScope()
	}

	delims := tpl.Delims
	if delims.Open == "" || delims.Close == "" {
		delims = DefaultDelimiters()
	}

	r := &renderer{
		cfg:    cfg,
		out:    w,
		stack:  newContextStack(root),
		delims: delims,
	}
	return r.renderNodes(tpl.Nodes)
}

// RenderString parses and renders template source in one call. On error the
// returned string holds whatever output preceded the failure.
func RenderString(template string, root *Scope, opts ...Option) (string, error) {
	cfg := defaultRenderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tpl, err := ParseWithDelimiters(template, "", cfg.delims)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = Render(tpl, root, &buf, opts...)
	return buf.String(), err
}

// RenderFile reads, parses, and renders a template file. The path appears
// in error positions.
func RenderFile(path string, root *Scope, w io.Writer, opts ...Option) error {
	cfg := defaultRenderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}
	tpl, err := ParseWithDelimiters(string(b), path, cfg.delims)
	if err != nil {
		return err
	}
	return Render(tpl, root, w, opts...)
}

func (r *renderer) renderNodes(nodes []Node) error {
	for _, n := range nodes {
		if err := r.renderNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderNode(n Node) error {
	switch n := n.(type) {
	case *TextNode:
		return r.write(n.Text)
	case *VariableNode:
		return r.renderVariable(n)
	case *SectionNode:
		return r.renderSection(n)
	case *InvertedNode:
		return r.renderInverted(n)
	case *PartialNode:
		return r.renderPartial(n)
	case *CommentNode:
		return nil
	case *DelimNode:
		r.delims = n.Delims
		return nil
	default:
		return NewRenderErrorf(n.Pos(), "unknown node type %T", n)
	}
}

// renderVariable handles {{name}} and {{{name}}} tags. An unresolved name
// emits nothing; a lambda is invoked with empty input and its result
// expanded as template source before escaping applies.
func (r *renderer) renderVariable(n *VariableNode) error {
	v, ok := r.stack.lookup(n.Name)
	if !ok {
		return nil
	}

	if fn, isLambda := v.(Lambda); isLambda {
		expanded, err := r.expandLambda(n.Name, fn, "", n.Pos(), r.delims)
		if err != nil {
			return err
		}
		if !n.Raw {
			expanded = EscapeHTML(expanded)
		}
		return r.write(expanded)
	}

	s, ok := stringify(v)
	if !ok {
		return NewRenderErrorf(n.Pos(), "cannot interpolate %s value bound to %q", kindName(v), n.Name)
	}
	if !n.Raw {
		s = EscapeHTML(s)
	}
	return r.write(s)
}

// renderSection handles {{#name}}...{{/name}}. A lambda receives the
// literal inner text and its result is expanded unescaped; a sequence
// renders the children once per element with that element pushed as a
// frame; a scope pushes one frame; other truthy values render the children
// once with the context unchanged.
func (r *renderer) renderSection(n *SectionNode) error {
	v, ok := r.stack.lookup(n.Name)
	if !ok || !Truthy(v) {
		return nil
	}

	switch v := v.(type) {
	case Lambda:
		expanded, err := r.expandLambda(n.Name, v, n.Inner, n.Pos(), n.Delims)
		if err != nil {
			return err
		}
		return r.write(expanded)

	case Sequence:
		for _, elem := range v {
			r.stack.push(elem)
			err := r.renderNodes(n.Children)
			r.stack.pop()
			if err != nil {
				return err
			}
		}
		return nil

	case *Scope:
		r.stack.push(v)
		err := r.renderNodes(n.Children)
		r.stack.pop()
		return err

	default:
		return r.renderNodes(n.Children)
	}
}

// renderInverted handles {{^name}}...{{/name}}: children render exactly
// once, with no new frame, when the name resolves falsy or not at all. A
// lambda is truthy, so an inverted section never invokes it.
func (r *renderer) renderInverted(n *InvertedNode) error {
	v, ok := r.stack.lookup(n.Name)
	if ok && Truthy(v) {
		return nil
	}
	return r.renderNodes(n.Children)
}

// renderPartial inlines a partial template against the current stack. The
// partial renders under its own parse delimiters; a standalone partial's
// indentation is prefixed to the lines it emits.
func (r *renderer) renderPartial(n *PartialNode) error {
	if r.cfg.partials == nil {
		return NewRenderErrorf(n.Pos(), "partial %q: no partial provider configured", n.Name)
	}
	sub, err := r.cfg.partials.Partial(n.Name)
	if err != nil {
		return WrapRenderError(n.Pos(), fmt.Sprintf("partial %q", n.Name), err)
	}
	if r.depth >= r.cfg.maxDepth {
		return NewRenderErrorf(n.Pos(), "template depth limit %d exceeded at partial %q", r.cfg.maxDepth, n.Name)
	}

	savedOut, savedDelims := r.out, r.delims
	if n.Indent != "" {
		r.out = &indentWriter{w: r.out, indent: n.Indent}
	}
	r.delims = sub.Delims
	r.depth++
	err = r.renderNodes(sub.Nodes)
	r.depth--
	r.out, r.delims = savedOut, savedDelims
	return err
}

// expandLambda invokes fn once, re-parses its result under the given
// delimiters, and renders the fragment against the current stack into a
// scratch buffer. Delimiter changes inside the fragment stay scoped to it.
func (r *renderer) expandLambda(name string, fn Lambda, input string, pos Position, delims Delimiters) (string, error) {
	if r.depth >= r.cfg.maxDepth {
		return "", NewRenderErrorf(pos, "template depth limit %d exceeded at lambda %q", r.cfg.maxDepth, name)
	}

	sub, err := ParseWithDelimiters(fn(input), "", delims)
	if err != nil {
		return "", WrapRenderError(pos, fmt.Sprintf("re-parsing lambda %q output", name), err)
	}

	var buf bytes.Buffer
	savedOut, savedDelims := r.out, r.delims
	r.out = &buf
	r.delims = delims
	r.depth++
	err = r.renderNodes(sub.Nodes)
	r.depth--
	r.out, r.delims = savedOut, savedDelims
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *renderer) write(s string) error {
	_, err := io.WriteString(r.out, s)
	return err
}

// indentWriter prefixes the partial indentation to each line written
// through it, skipping lines that are bare newlines.
type indentWriter struct {
	w       io.Writer
	indent  string
	midLine bool
}

func (iw *indentWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if !iw.midLine && p[0] != '\n' {
			if _, err := io.WriteString(iw.w, iw.indent); err != nil {
				return total, err
			}
			iw.midLine = true
		}

		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			n, err := iw.w.Write(p)
			total += n
			if err == nil {
				iw.midLine = true
			}
			return total, err
		}

		n, err := iw.w.Write(p[:i+1])
		total += n
		if err != nil {
			return total, err
		}
		iw.midLine = false
		p = p[i+1:]
	}
	return total, nil
}
