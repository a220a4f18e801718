package rustache

import (
	"strings"
	"unicode/utf8"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for template token types.
const (
	TokenText         TokenType = iota // Literal text
	TokenVariable                      // {{name}}
	TokenRawVariable                   // {{{name}}} or {{&name}}
	TokenSectionOpen                   // {{#name}}
	TokenInvertedOpen                  // {{^name}}
	TokenSectionClose                  // {{/name}}
	TokenPartial                       // {{>name}}
	TokenComment                       // {{!comment}}
	TokenSetDelims                     // {{=open close=}}
	TokenEOF                           // End of input
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "TEXT"
	case TokenVariable:
		return "VARIABLE"
	case TokenRawVariable:
		return "RAW_VARIABLE"
	case TokenSectionOpen:
		return "SECTION_OPEN"
	case TokenInvertedOpen:
		return "INVERTED_OPEN"
	case TokenSectionClose:
		return "SECTION_CLOSE"
	case TokenPartial:
		return "PARTIAL"
	case TokenComment:
		return "COMMENT"
	case TokenSetDelims:
		return "SET_DELIMS"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token. Start and End are byte offsets of the
// token's span in the input, delimiters included; the parser uses them to
// recover the literal inner text of sections.
type Token struct {
	Type   TokenType
	Value  string
	Pos    Position
	Delims Delimiters // delimiters in effect at this token
	Indent string     // leading whitespace of a standalone partial
	Start  int
	End    int
}

// Lexer tokenizes a template string under mutable delimiters. Tags of the
// standalone kinds (sections, inverted sections, comments, partials,
// delimiter changes) that sit alone on a line swallow the surrounding
// indentation and trailing newline, per the mustache spec.
type Lexer struct {
	input     string
	file      string
	delims    Delimiters
	pos       int  // current byte offset in input
	line      int  // current line number (1-based)
	col       int  // current column number (1-based, in runes)
	lastPos   int  // offset at start of current token
	lastLine  int  // line at start of current token
	lastCol   int  // column at start of current token
	lineClean bool // current line holds only whitespace so far
}

// NewLexer creates a new lexer for the given input with default delimiters.
func NewLexer(input, file string) *Lexer {
	return NewLexerWithDelimiters(input, file, DefaultDelimiters())
}

// NewLexerWithDelimiters creates a new lexer starting from the given
// delimiters. Used when re-parsing lambda output produced under changed
// delimiters.
func NewLexerWithDelimiters(input, file string, delims Delimiters) *Lexer {
	return &Lexer{
		input:     input,
		file:      file,
		delims:    delims,
		pos:       0,
		line:      1,
		col:       1,
		lineClean: true,
	}
}

// Tokenize converts the input into a slice of tokens ending with TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case TokenText:
			l.noteText(tok.Value)
		case TokenVariable, TokenRawVariable:
			l.lineClean = false
		case TokenEOF:
			// nothing to track
		default:
			// Standalone-eligible tag kinds.
			if l.lineClean && l.consumeStandaloneTail() {
				indent := ""
				if n := len(tokens); n > 0 && tokens[n-1].Type == TokenText {
					text := tokens[n-1].Value
					cut := indentStart(text)
					indent = text[cut:]
					tokens[n-1].Value = text[:cut]
				}
				if tok.Type == TokenPartial {
					tok.Indent = indent
				}
				l.lineClean = true
			} else {
				l.lineClean = false
			}
		}

		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}

// nextToken returns the next token from the input.
func (l *Lexer) nextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position(), Start: l.pos, End: l.pos}, nil
	}

	if l.matchString(l.delims.Open) {
		return l.scanTag()
	}

	return l.scanText()
}

// scanText scans literal text until the open delimiter or EOF.
func (l *Lexer) scanText() (Token, error) {
	l.markStart()
	start := l.pos

	for l.pos < len(l.input) && !l.matchString(l.delims.Open) {
		l.advance()
	}

	if l.pos == start {
		// No text consumed, something is wrong
		return Token{}, NewLexError(l.position(), "unexpected state in lexer")
	}

	return Token{
		Type:  TokenText,
		Value: l.input[start:l.pos],
		Pos:   l.startPosition(),
		Start: start,
		End:   l.pos,
	}, nil
}

// scanTag scans one tag, open delimiter through close delimiter.
func (l *Lexer) scanTag() (Token, error) {
	l.markStart()
	open := l.delims
	l.advanceBytes(len(open.Open))

	// Triple mustache {{{name}}} is raw interpolation; it only exists under
	// the default delimiters.
	if open.isDefault() && l.peek() == '{' {
		l.advance()
		content, ok := l.scanUntil("}}}")
		if !ok {
			return Token{}, NewLexErrorf(l.startPosition(), "unclosed tag: missing %q", "}}}")
		}
		return l.nameToken(TokenRawVariable, content)
	}

	var sigil rune
	switch r := l.peek(); r {
	case '#', '^', '/', '>', '!', '&', '=':
		sigil = r
		l.advance()
	}

	if sigil == '=' {
		return l.scanSetDelims(open)
	}

	content, ok := l.scanUntil(open.Close)
	if !ok {
		return Token{}, NewLexErrorf(l.startPosition(), "unclosed tag: missing %q", open.Close)
	}

	switch sigil {
	case '#':
		return l.nameToken(TokenSectionOpen, content)
	case '^':
		return l.nameToken(TokenInvertedOpen, content)
	case '/':
		return l.nameToken(TokenSectionClose, content)
	case '>':
		return l.nameToken(TokenPartial, content)
	case '!':
		return Token{
			Type:   TokenComment,
			Value:  strings.TrimSpace(content),
			Pos:    l.startPosition(),
			Delims: l.delims,
			Start:  l.lastPos,
			End:    l.pos,
		}, nil
	case '&':
		return l.nameToken(TokenRawVariable, content)
	default:
		return l.nameToken(TokenVariable, content)
	}
}

// scanSetDelims scans the tail of a {{=open close=}} tag and switches the
// lexer to the new pair.
func (l *Lexer) scanSetDelims(open Delimiters) (Token, error) {
	content, ok := l.scanUntil("=" + open.Close)
	if !ok {
		return Token{}, NewLexErrorf(l.startPosition(), "unclosed delimiter change: missing %q", "="+open.Close)
	}

	fields := strings.Fields(content)
	if len(fields) != 2 {
		return Token{}, NewLexErrorf(l.startPosition(), "malformed delimiter change %q: want two markers", strings.TrimSpace(content))
	}
	for _, f := range fields {
		if strings.ContainsRune(f, '=') {
			return Token{}, NewLexErrorf(l.startPosition(), "malformed delimiter change: marker %q contains '='", f)
		}
	}

	l.delims = Delimiters{Open: fields[0], Close: fields[1]}

	return Token{
		Type:   TokenSetDelims,
		Pos:    l.startPosition(),
		Delims: l.delims,
		Start:  l.lastPos,
		End:    l.pos,
	}, nil
}

// nameToken builds a named tag token, trimming surrounding whitespace.
func (l *Lexer) nameToken(typ TokenType, content string) (Token, error) {
	name := strings.TrimSpace(content)
	if name == "" {
		return Token{}, NewLexError(l.startPosition(), "empty tag")
	}
	return Token{
		Type:   typ,
		Value:  name,
		Pos:    l.startPosition(),
		Delims: l.delims,
		Start:  l.lastPos,
		End:    l.pos,
	}, nil
}

// scanUntil consumes input up to the marker, then consumes the marker
// itself. It reports false at EOF without the marker.
func (l *Lexer) scanUntil(marker string) (string, bool) {
	start := l.pos
	for l.pos < len(l.input) {
		if l.matchString(marker) {
			content := l.input[start:l.pos]
			l.advanceBytes(len(marker))
			return content, true
		}
		l.advance()
	}
	return "", false
}

// consumeStandaloneTail consumes trailing whitespace and the line ending
// after a standalone tag. It reports false (consuming nothing) when
// non-whitespace content follows on the same line.
func (l *Lexer) consumeStandaloneTail() bool {
	j := l.pos
	for j < len(l.input) && (l.input[j] == ' ' || l.input[j] == '\t') {
		j++
	}
	switch {
	case j >= len(l.input):
		// whitespace then EOF
	case l.input[j] == '\n':
		j++
	case l.input[j] == '\r' && j+1 < len(l.input) && l.input[j+1] == '\n':
		j += 2
	default:
		return false
	}
	for l.pos < j {
		l.advance()
	}
	return true
}

// noteText updates line-cleanliness tracking after a text token.
func (l *Lexer) noteText(s string) {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		l.lineClean = isIndent(s[i+1:])
	} else {
		l.lineClean = l.lineClean && isIndent(s)
	}
}

// Helper methods

// peek returns the current rune without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// advance moves to the next rune, updating position tracking.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

// advanceBytes advances across the next n bytes, rune by rune.
func (l *Lexer) advanceBytes(n int) {
	end := l.pos + n
	for l.pos < end && l.pos < len(l.input) {
		l.advance()
	}
}

// matchString checks if the input at current position matches s.
func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// markStart records the start position for the current token.
func (l *Lexer) markStart() {
	l.lastPos = l.pos
	l.lastLine = l.line
	l.lastCol = l.col
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{File: l.file, Line: l.line, Column: l.col}
}

// startPosition returns the position where the current token started.
func (l *Lexer) startPosition() Position {
	return Position{File: l.file, Line: l.lastLine, Column: l.lastCol}
}

// isIndent reports whether s consists only of spaces and tabs.
func isIndent(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return false
		}
	}
	return true
}

// indentStart returns the index where the trailing space/tab run of s
// begins.
func indentStart(s string) int {
	i := len(s)
	for i > 0 && (s[i-1] == ' ' || s[i-1] == '\t') {
		i--
	}
	return i
}
