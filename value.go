package rustache

import "strconv"

// Value is the data model bound to template names. Exactly five kinds
// implement it: Static, Bool, Sequence, *Scope, and Lambda.
type Value interface {
	value() // marker method to restrict implementation
}

// Static is an immutable text value.
type Static string

// Bool is a boolean value. It drives section and inverted-section
// truthiness; in variable position it stringifies as "true" or "false".
type Bool bool

// Sequence is an ordered list of values. A section bound to a Sequence
// renders once per element, in order; an empty Sequence renders zero times
// and counts as falsy.
type Sequence []Value

// Lambda is a caller-supplied function invoked at render time. In variable
// position it receives an empty string; in section position it receives the
// literal unrendered text between the section tags. Its result is re-parsed
// as template source. A Lambda is invoked anew for every occurrence; results
// are never cached.
type Lambda func(input string) string

// Scope is a name→value mapping with insertion-ordered names. Lookup does
// not depend on order; Names reports insertion order for callers that
// enumerate bindings. Setting an existing name overwrites its value and
// keeps its original position.
type Scope struct {
	names  []string
	values map[string]Value
}

func (Static) value()   {}
func (Bool) value()     {}
func (Sequence) value() {}
func (Lambda) value()   {}
func (*Scope) value()   {}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]Value)}
}

// Set binds name to v, overwriting any previous binding. It returns the
// scope for chaining.
func (s *Scope) Set(name string, v Value) *Scope {
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = v
	return s
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	return len(s.names)
}

// Names returns the bound names in insertion order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Truthy reports whether v enables a normal section. Bool follows its flag,
// a Sequence is truthy when non-empty, and Static is truthy even when the
// string is empty; Scope and Lambda are always truthy. A nil Value is falsy,
// matching an unresolved name.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil:
		return false
	case Static:
		return true
	case Bool:
		return bool(v)
	case Sequence:
		return len(v) > 0
	case *Scope:
		return true
	case Lambda:
		return true
	default:
		return false
	}
}

// stringify renders a value for variable interpolation. Sequences, scopes,
// and lambdas have no direct text form; ok is false for them (lambdas are
// expanded by the renderer before stringification ever applies).
func stringify(v Value) (string, bool) {
	switch v := v.(type) {
	case Static:
		return string(v), true
	case Bool:
		return strconv.FormatBool(bool(v)), true
	default:
		return "", false
	}
}

// kindName names a value's kind for error messages.
func kindName(v Value) string {
	switch v.(type) {
	case Static:
		return "static"
	case Bool:
		return "bool"
	case Sequence:
		return "sequence"
	case *Scope:
		return "scope"
	case Lambda:
		return "lambda"
	default:
		return "unknown"
	}
}
