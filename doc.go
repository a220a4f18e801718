// Package rustache is a mustache template engine: logic-less templates
// interpolated from a structured data context, with sections, inverted
// sections, lambdas, partials, comments, and run-time delimiter changes.
//
// Data is modeled as a tagged union ([Value]): [Static] strings, [Bool]
// flags, [Sequence] lists, nested [Scope] objects, and [Lambda] functions
// invoked at render time. Name resolution walks a context stack from the
// innermost section frame outward; dotted paths descend strictly through
// nested scopes.
//
// Templates are parsed once ([Parse]) and may be rendered many times
// concurrently. Rendering writes to the supplied sink incrementally; when a
// render fails (a list or object in variable position, an unknown partial,
// a lambda result that does not re-parse), the error is returned and output
// written so far is left intact. Unresolved names are not errors: they
// interpolate as empty text and count as falsy for sections.
//
// Example usage:
//
//	data, err := rustache.NewBuilder().
//		SetString("name", "world").
//		SetSequence("items",
//			rustache.Static("a"),
//			rustache.Static("b"),
//		).
//		Build()
//	if err != nil {
//		// handle error
//	}
//
//	out, err := rustache.RenderString("Hello, {{name}}!{{#items}} {{.}}{{/items}}", data)
//	if err != nil {
//		// handle error
//	}
//	fmt.Println(out) // Hello, world! a b
//
// Partials come from a [PartialProvider] — an in-memory [PartialMap] or a
// filesystem-backed [DirPartials] — passed through [WithPartials].
package rustache
