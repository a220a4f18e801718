package rustache

// Parser folds a token stream into a template tree.
type Parser struct {
	tokens []Token
	input  string
	file   string
}

// Parse parses template source into a Template under default delimiters.
func Parse(input, file string) (*Template, error) {
	return ParseWithDelimiters(input, file, DefaultDelimiters())
}

// ParseWithDelimiters parses template source starting from the given
// delimiters. The renderer uses it for lambda output produced after a
// delimiter change.
func ParseWithDelimiters(input, file string, delims Delimiters) (*Template, error) {
	lexer := NewLexerWithDelimiters(input, file, delims)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{tokens: tokens, input: input, file: file}
	nodes, err := p.parseNodes()
	if err != nil {
		return nil, err
	}

	return &Template{Nodes: nodes, File: file, Delims: delims}, nil
}

// openSection tracks a section open tag awaiting its close.
type openSection struct {
	tok      Token
	inverted bool
	children []Node
}

// parseNodes builds the node tree, pairing section opens with closes via an
// explicit stack.
func (p *Parser) parseNodes() ([]Node, error) {
	var root []Node
	var stack []*openSection

	appendNode := func(n Node) {
		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.children = append(top.children, n)
		} else {
			root = append(root, n)
		}
	}

	for _, tok := range p.tokens {
		switch tok.Type {
		case TokenText:
			if tok.Value == "" {
				// emptied by standalone trimming
				continue
			}
			appendNode(&TextNode{nodeBase: nodeBase{pos: tok.Pos}, Text: tok.Value})

		case TokenVariable:
			appendNode(&VariableNode{nodeBase: nodeBase{pos: tok.Pos}, Name: tok.Value})

		case TokenRawVariable:
			appendNode(&VariableNode{nodeBase: nodeBase{pos: tok.Pos}, Name: tok.Value, Raw: true})

		case TokenSectionOpen:
			stack = append(stack, &openSection{tok: tok})

		case TokenInvertedOpen:
			stack = append(stack, &openSection{tok: tok, inverted: true})

		case TokenSectionClose:
			if len(stack) == 0 {
				return nil, NewUnmatchedSectionError(tok.Pos, tok.Value, false)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.tok.Value != tok.Value {
				openSigil := "#"
				if top.inverted {
					openSigil = "^"
				}
				return nil, NewParseErrorf(tok.Pos, "{{/%s}} does not match {{%s%s}} opened at line %d",
					tok.Value, openSigil, top.tok.Value, top.tok.Pos.Line)
			}
			if top.inverted {
				appendNode(&InvertedNode{
					nodeBase: nodeBase{pos: top.tok.Pos},
					Name:     top.tok.Value,
					Children: top.children,
				})
			} else {
				appendNode(&SectionNode{
					nodeBase: nodeBase{pos: top.tok.Pos},
					Name:     top.tok.Value,
					Children: top.children,
					Inner:    p.input[top.tok.End:tok.Start],
					Delims:   top.tok.Delims,
				})
			}

		case TokenPartial:
			appendNode(&PartialNode{nodeBase: nodeBase{pos: tok.Pos}, Name: tok.Value, Indent: tok.Indent})

		case TokenComment:
			appendNode(&CommentNode{nodeBase: nodeBase{pos: tok.Pos}, Text: tok.Value})

		case TokenSetDelims:
			appendNode(&DelimNode{nodeBase: nodeBase{pos: tok.Pos}, Delims: tok.Delims})

		case TokenEOF:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				return nil, NewUnmatchedSectionError(top.tok.Pos, top.tok.Value, true)
			}
		}
	}

	return root, nil
}
