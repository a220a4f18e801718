package rustache

import "strings"

// contextStack is the ordered list of frames used for name resolution,
// innermost frame last. Frames are whole values: scopes contribute their
// bindings to lookup, while non-scope frames (sequence elements that are not
// scopes) only bind the implicit iterator ".". One stack exists per render
// call; the root scope is frame zero and is never mutated.
type contextStack struct {
	frames []Value
}

func newContextStack(root *Scope) *contextStack {
	return &contextStack{frames: []Value{root}}
}

func (c *contextStack) push(v Value) {
	c.frames = append(c.frames, v)
}

func (c *contextStack) pop() {
	c.frames = c.frames[:len(c.frames)-1]
}

// lookup resolves name against the stack, innermost frame first. A dotted
// path resolves its first segment via the stack search; the remaining
// segments descend strictly through nested scopes with no stack fallback
// mid-path. The bare name "." resolves the innermost frame itself.
func (c *contextStack) lookup(name string) (Value, bool) {
	if name == "." {
		if len(c.frames) == 0 {
			return nil, false
		}
		return c.frames[len(c.frames)-1], true
	}

	first := name
	var rest []string
	if i := strings.IndexByte(name, '.'); i >= 0 {
		first = name[:i]
		rest = strings.Split(name[i+1:], ".")
	}

	for i := len(c.frames) - 1; i >= 0; i-- {
		scope, ok := c.frames[i].(*Scope)
		if !ok {
			continue
		}
		v, ok := scope.Get(first)
		if !ok {
			continue
		}
		return descend(v, rest)
	}
	return nil, false
}

// descend resolves the remaining dotted segments against nested scopes. Any
// missing segment or non-scope intermediate resolves as absent.
func descend(v Value, segments []string) (Value, bool) {
	for _, seg := range segments {
		scope, ok := v.(*Scope)
		if !ok {
			return nil, false
		}
		v, ok = scope.Get(seg)
		if !ok {
			return nil, false
		}
	}
	return v, true
}
