package rustache

// Delimiters is a pair of tag markers. The zero value is not valid; use
// DefaultDelimiters for the standard {{ }} pair.
type Delimiters struct {
	Open  string
	Close string
}

// DefaultDelimiters returns the standard mustache tag markers.
func DefaultDelimiters() Delimiters {
	return Delimiters{Open: "{{", Close: "}}"}
}

func (d Delimiters) isDefault() bool {
	return d.Open == "{{" && d.Close == "}}"
}
