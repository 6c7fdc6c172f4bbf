package mapparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, src string) []Token {
	t.Helper()
	tok := NewTokenizer([]byte(src))
	tok.SetSkipEol(true)
	var tokens []Token
	for {
		next, err := tok.Next()
		require.NoError(t, err)
		tokens = append(tokens, next)
		if next.Kind == KindEOF {
			break
		}
	}
	return tokens
}

func TestTokenizerStructural(t *testing.T) {
	tokens := collectTokens(t, "( ) { } [ ]")
	expected := []Kind{
		KindOParen, KindCParen, KindOBrace, KindCBrace,
		KindOBracket, KindCBracket, KindEOF,
	}
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Kind, "token %d", i)
	}
}

func TestTokenizerNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"0", KindInteger},
		{"-12", KindInteger},
		{"+7", KindInteger},
		{"12345", KindInteger},
		{"3.5", KindDecimal},
		{"-3.14", KindDecimal},
		{".5", KindDecimal},
		{"-.25", KindDecimal},
		{"1e-3", KindDecimal},
		{"2.5E2", KindDecimal},
		{"1e+10", KindDecimal},
	}
	for _, tt := range tests {
		tokens := collectTokens(t, tt.input)
		require.Len(t, tokens, 2, "input: %s", tt.input)
		assert.Equal(t, tt.kind, tokens[0].Kind, "input: %s", tt.input)
		assert.Equal(t, tt.input, tokens[0].Text, "input: %s", tt.input)
	}
}

func TestTokenizerNumberBeforeParen(t *testing.T) {
	// ')' is in the number delimiter set, so "1)" splits cleanly.
	tokens := collectTokens(t, "( 0 0 1)")
	expected := []Kind{KindOParen, KindInteger, KindInteger, KindInteger, KindCParen, KindEOF}
	require.Len(t, tokens, len(expected))
	for i, tok := range tokens {
		assert.Equal(t, expected[i], tok.Kind, "token %d", i)
	}
}

func TestTokenizerNumberFollowedByAlphaIsString(t *testing.T) {
	// "12abc" fails the delimiter test and lexes as a single bare string,
	// not as an integer plus a string.
	tokens := collectTokens(t, "12abc")
	require.Len(t, tokens, 2)
	assert.Equal(t, KindString, tokens[0].Kind)
	assert.Equal(t, "12abc", tokens[0].Text)
}

func TestTokenizerBareStrings(t *testing.T) {
	cases := []string{
		"textures/e1u1/floor1-5",
		"*water2",
		"+0slime",
		"-texture-",
		"e1m1/wall.tga",
	}
	for _, input := range cases {
		tokens := collectTokens(t, input)
		require.Len(t, tokens, 2, "input: %s", input)
		assert.Equal(t, KindString, tokens[0].Kind, "input: %s", input)
		assert.Equal(t, input, tokens[0].Text, "input: %s", input)
	}
}

func TestTokenizerDanglingExponent(t *testing.T) {
	for _, input := range []string{"1e", "2.5e+", "3E- "} {
		tok := NewTokenizer([]byte(input))
		tok.SetSkipEol(true)
		_, err := tok.Next()
		require.Error(t, err, "input: %s", input)
		assert.IsType(t, &LexError{}, err, "input: %s", input)
	}
}

func TestTokenizerQuotedStrings(t *testing.T) {
	tests := []struct {
		input string
		text  string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"two words"`, "two words"},
		// Escaped quotes pass through verbatim, backslash included.
		{`"say \"hi\""`, `say \"hi\"`},
		{`"with { braces }"`, "with { braces }"},
	}
	for _, tt := range tests {
		tokens := collectTokens(t, tt.input)
		require.Len(t, tokens, 2, "input: %s", tt.input)
		assert.Equal(t, KindString, tokens[0].Kind, "input: %s", tt.input)
		assert.Equal(t, tt.text, tokens[0].Text, "input: %s", tt.input)
	}
}

func TestTokenizerUnterminatedString(t *testing.T) {
	tok := NewTokenizer([]byte(`"hello`))
	_, err := tok.Next()
	require.Error(t, err)
	assert.IsType(t, &LexError{}, err)
}

func TestTokenizerComments(t *testing.T) {
	// A /// comment yields a Comment token; // and ; comments are discarded.
	tokens := collectTokens(t, "/// entity 0\n(")
	require.Len(t, tokens, 3)
	assert.Equal(t, KindComment, tokens[0].Kind)
	assert.Equal(t, "entity 0", tokens[0].Text)
	assert.Equal(t, KindOParen, tokens[1].Kind)

	tokens = collectTokens(t, "// Game: Quake\n(")
	require.Len(t, tokens, 2)
	assert.Equal(t, KindOParen, tokens[0].Kind)

	tokens = collectTokens(t, "; heretic comment\n(")
	require.Len(t, tokens, 2)
	assert.Equal(t, KindOParen, tokens[0].Kind)
}

func TestTokenizerEol(t *testing.T) {
	tok := NewTokenizer([]byte("a\nb\r\nc"))
	var kinds []Kind
	for {
		next, err := tok.Next()
		require.NoError(t, err)
		kinds = append(kinds, next.Kind)
		if next.Kind == KindEOF {
			break
		}
	}
	// \r\n counts as a single end of line.
	assert.Equal(t, []Kind{
		KindString, KindEol, KindString, KindEol, KindString, KindEOF,
	}, kinds)
}

func TestTokenizerSkipEolElides(t *testing.T) {
	tokens := collectTokens(t, "a\nb\r\nc")
	require.Len(t, tokens, 4)
	for _, tok := range tokens {
		assert.NotEqual(t, KindEol, tok.Kind)
	}
}

func TestTokenizerPosition(t *testing.T) {
	tokens := collectTokens(t, "a\nb c")
	require.Len(t, tokens, 4)
	assert.Equal(t, 1, tokens[0].Pos.Line)
	assert.Equal(t, 1, tokens[0].Pos.Column)
	assert.Equal(t, 2, tokens[1].Pos.Line)
	assert.Equal(t, 1, tokens[1].Pos.Column)
	assert.Equal(t, 2, tokens[2].Pos.Line)
	assert.Equal(t, 3, tokens[2].Pos.Column)
}

func TestTokenizerPositionsMonotonic(t *testing.T) {
	tokens := collectTokens(t, `{ "classname" "worldspawn" { ( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) TEX 0 0 0 1 1 } }`)
	for i := 1; i < len(tokens); i++ {
		assert.Greater(t, tokens[i].Pos.Offset, tokens[i-1].Pos.Offset, "token %d", i)
	}
}

func TestTokenizerBraceBalanceNeverNegative(t *testing.T) {
	src := "{\n\"a\" \"b\"\n{\n( 0 0 0 ) ( 0 1 0 ) ( 1 0 0 ) TEX 0 0 0 1 1\n}\n}\n"
	balance := 0
	for _, tok := range collectTokens(t, src) {
		switch tok.Kind {
		case KindOBrace:
			balance++
		case KindCBrace:
			balance--
		}
		assert.GreaterOrEqual(t, balance, 0)
	}
	assert.Equal(t, 0, balance)
}

func TestTokenizerPeek(t *testing.T) {
	tok := NewTokenizer([]byte("a b"))

	peeked, err := tok.Peek()
	require.NoError(t, err)
	assert.Equal(t, "a", peeked.Text)

	again, err := tok.Peek()
	require.NoError(t, err)
	assert.Equal(t, peeked, again)

	next, err := tok.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", next.Text)

	next, err = tok.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", next.Text)
}

func TestTokenizerEOFForever(t *testing.T) {
	tok := NewTokenizer([]byte("a"))
	_, err := tok.Next()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		next, err := tok.Next()
		require.NoError(t, err)
		assert.Equal(t, KindEOF, next.Kind)
	}
}

func TestTokenizerReset(t *testing.T) {
	tok := NewTokenizer([]byte("a b"))
	first, err := tok.Next()
	require.NoError(t, err)
	tok.Reset()
	again, err := tok.Next()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestKindSetString(t *testing.T) {
	assert.Equal(t, "integer", KindSet{KindInteger}.String())
	assert.Equal(t, "integer or decimal", kindNumber.String())
	assert.Equal(t, "string, '{' or '}'", KindSet{KindString, KindOBrace, KindCBrace}.String())
}
