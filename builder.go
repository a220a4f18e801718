package rustache

// Builder assembles a root scope through chained inserts. Later inserts
// under the same name win. The zero Builder is not usable; call NewBuilder.
type Builder struct {
	scope *Scope
	err   error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{scope: NewScope()}
}

// SetString binds name to a Static value.
func (b *Builder) SetString(name, value string) *Builder {
	b.scope.Set(name, Static(value))
	return b
}

// SetBool binds name to a Bool value.
func (b *Builder) SetBool(name string, value bool) *Builder {
	b.scope.Set(name, Bool(value))
	return b
}

// SetSequence binds name to a Sequence of the given elements.
func (b *Builder) SetSequence(name string, elems ...Value) *Builder {
	b.scope.Set(name, Sequence(elems))
	return b
}

// SetScope binds name to a nested scope.
func (b *Builder) SetScope(name string, scope *Scope) *Builder {
	b.scope.Set(name, scope)
	return b
}

// SetFn binds name to a Lambda.
func (b *Builder) SetFn(name string, fn func(input string) string) *Builder {
	b.scope.Set(name, Lambda(fn))
	return b
}

// Set binds name to the conversion of an arbitrary Go value via ValueOf.
// The first conversion failure is remembered and reported by Build;
// subsequent inserts still apply.
func (b *Builder) Set(name string, value any) *Builder {
	v, err := ValueOf(value)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	b.scope.Set(name, v)
	return b
}

// Build returns the assembled scope and the first conversion error, if any.
func (b *Builder) Build() (*Scope, error) {
	return b.scope, b.err
}

// Must returns scope, panicking when err is non-nil. It allows builder
// chains in variable initializations:
//
//	var data = rustache.Must(rustache.NewBuilder().
//		SetString("planet", "world").
//		Build())
func Must(scope *Scope, err error) *Scope {
	if err != nil {
		panic(err)
	}
	return scope
}
