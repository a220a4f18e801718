package rustache

import "strings"

// htmlEscaper rewrites the four characters that are unsafe in HTML element
// and attribute content. Single quotes are not escaped.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML applies the escaping used for {{name}} interpolation. Raw tags
// ({{{name}}}, {{&name}}), literal text, and section lambda output bypass
// it.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
