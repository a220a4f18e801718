package rustache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_PlainText(t *testing.T) {
	input := "Hello, world!"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 2, "expected 2 tokens") // TEXT + EOF

	assert.Equal(t, TokenText, tokens[0].Type, "expected TEXT")
	assert.Equal(t, input, tokens[0].Value, "expected input value")
	assert.Equal(t, TokenEOF, tokens[1].Type, "expected EOF")
}

func TestLexer_Variable(t *testing.T) {
	input := "Hello, {{ name }}!"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	expected := []struct {
		typ TokenType
		val string
	}{
		{TokenText, "Hello, "},
		{TokenVariable, "name"},
		{TokenText, "!"},
		{TokenEOF, ""},
	}

	require.Len(t, tokens, len(expected), "wrong number of tokens")

	for i, exp := range expected {
		assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
		if exp.typ != TokenEOF {
			assert.Equal(t, exp.val, tokens[i].Value, "token[%d] value", i)
		}
	}
}

func TestLexer_RawVariables(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"triple mustache", "{{{name}}}", "name"},
		{"triple with spaces", "{{{ name }}}", "name"},
		{"ampersand", "{{&name}}", "name"},
		{"ampersand with spaces", "{{& name }}", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input, "test.mustache")
			tokens, err := lexer.Tokenize()
			require.NoError(t, err, "unexpected error")

			require.Len(t, tokens, 2, "expected RAW_VARIABLE + EOF")
			assert.Equal(t, TokenRawVariable, tokens[0].Type)
			assert.Equal(t, tt.want, tokens[0].Value)
		})
	}
}

func TestLexer_TagKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		val   string
	}{
		{"section open", "x{{#items}}", TokenSectionOpen, "items"},
		{"section close", "x{{/items}}", TokenSectionClose, "items"},
		{"inverted open", "x{{^missing}}", TokenInvertedOpen, "missing"},
		{"partial", "x{{>header}}", TokenPartial, "header"},
		{"comment", "x{{! a note }}", TokenComment, "a note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input, "test.mustache")
			tokens, err := lexer.Tokenize()
			require.NoError(t, err, "unexpected error")

			require.Len(t, tokens, 3, "expected TEXT + tag + EOF")
			assert.Equal(t, tt.typ, tokens[1].Type)
			assert.Equal(t, tt.val, tokens[1].Value)
		})
	}
}

func TestLexer_SetDelimiters(t *testing.T) {
	input := "{{=<% %>=}}<% name %>"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 3, "expected SET_DELIMS + VARIABLE + EOF")

	assert.Equal(t, TokenSetDelims, tokens[0].Type)
	assert.Equal(t, Delimiters{Open: "<%", Close: "%>"}, tokens[0].Delims)

	assert.Equal(t, TokenVariable, tokens[1].Type, "tag after the change should lex under new delimiters")
	assert.Equal(t, "name", tokens[1].Value)
	assert.Equal(t, Delimiters{Open: "<%", Close: "%>"}, tokens[1].Delims)
}

func TestLexer_DelimiterChangeMidTemplate(t *testing.T) {
	input := "{{a}} {{=| |=}} |b| {{c}}"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	var names []string
	for _, tok := range tokens {
		if tok.Type == TokenVariable {
			names = append(names, tok.Value)
		}
	}
	// {{c}} is plain text under | | delimiters
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestLexer_Positions(t *testing.T) {
	input := "ab\ncd {{name}}"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 3)

	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)

	assert.Equal(t, TokenVariable, tokens[1].Type)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 4, tokens[1].Pos.Column)
	assert.Equal(t, "test.mustache", tokens[1].Pos.File)
}

func TestLexer_UnicodeColumns(t *testing.T) {
	input := "héllo {{x}}"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 3)
	assert.Equal(t, TokenVariable, tokens[1].Type)
	assert.Equal(t, 7, tokens[1].Pos.Column, "columns count runes, not bytes")
}

func TestLexer_StandaloneSectionLines(t *testing.T) {
	input := "{{#s}}\nhi\n{{/s}}\n"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	expected := []struct {
		typ TokenType
		val string
	}{
		{TokenSectionOpen, "s"},
		{TokenText, "hi\n"},
		{TokenSectionClose, "s"},
		{TokenEOF, ""},
	}

	require.Len(t, tokens, len(expected), "standalone lines should swallow their newlines")
	for i, exp := range expected {
		assert.Equal(t, exp.typ, tokens[i].Type, "token[%d] type", i)
		if exp.typ == TokenText {
			assert.Equal(t, exp.val, tokens[i].Value, "token[%d] value", i)
		}
	}
}

func TestLexer_StandaloneIndentedClose(t *testing.T) {
	input := "{{#s}}\nhi\n  {{/s}}\n"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 4)
	assert.Equal(t, TokenText, tokens[1].Type)
	assert.Equal(t, "hi\n", tokens[1].Value, "indent before the standalone close should be stripped")
	assert.Equal(t, TokenSectionClose, tokens[2].Type)
}

func TestLexer_InlineTagsAreNotStandalone(t *testing.T) {
	input := "a{{#s}}b{{/s}}c\n"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	var text string
	for _, tok := range tokens {
		if tok.Type == TokenText {
			text += tok.Value
		}
	}
	assert.Equal(t, "abc\n", text, "inline tags must not swallow surrounding text")
}

func TestLexer_StandalonePartialIndent(t *testing.T) {
	input := "  {{>content}}\n"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 3)
	assert.Equal(t, TokenText, tokens[0].Type)
	assert.Equal(t, "", tokens[0].Value, "indent is moved onto the partial")
	assert.Equal(t, TokenPartial, tokens[1].Type)
	assert.Equal(t, "content", tokens[1].Value)
	assert.Equal(t, "  ", tokens[1].Indent)
}

func TestLexer_StandaloneComment(t *testing.T) {
	input := "a\n{{! ignored }}\nb"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	require.Len(t, tokens, 4)
	assert.Equal(t, "a\n", tokens[0].Value)
	assert.Equal(t, TokenComment, tokens[1].Type)
	assert.Equal(t, "b", tokens[2].Value)
}

func TestLexer_CRLFStandalone(t *testing.T) {
	input := "|\r\n{{#b}}\r\nfoo\r\n{{/b}}\r\n|"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	var text string
	for _, tok := range tokens {
		if tok.Type == TokenText {
			text += tok.Value
		}
	}
	assert.Equal(t, "|\r\nfoo\r\n|", text)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"unclosed variable", "{{name", "unclosed tag"},
		{"unclosed triple", "{{{name}}", "unclosed tag"},
		{"unclosed section open", "{{#items", "unclosed tag"},
		{"empty tag", "{{}}", "empty tag"},
		{"empty triple", "{{{ }}}", "empty tag"},
		{"unclosed delimiter change", "{{=<% %>", "unclosed delimiter change"},
		{"delimiter change one marker", "{{=<%=}}", "malformed delimiter change"},
		{"delimiter change three markers", "{{=a b c=}}", "malformed delimiter change"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer(tt.input, "test.mustache")
			_, err := lexer.Tokenize()
			require.Error(t, err, "expected a lex error")

			var lexErr *LexError
			require.ErrorAs(t, err, &lexErr, "expected *LexError, got %T", err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Contains(t, err.Error(), "test.mustache:1:", "error should carry the tag position")
		})
	}
}

func TestLexer_SectionOpenRecordsDelimiters(t *testing.T) {
	input := "{{=<% %>=}}<%#s%>x<%/s%>"
	lexer := NewLexer(input, "test.mustache")

	tokens, err := lexer.Tokenize()
	require.NoError(t, err, "unexpected error")

	var open *Token
	for i := range tokens {
		if tokens[i].Type == TokenSectionOpen {
			open = &tokens[i]
		}
	}
	require.NotNil(t, open, "expected a section open token")
	assert.Equal(t, Delimiters{Open: "<%", Close: "%>"}, open.Delims)
}
