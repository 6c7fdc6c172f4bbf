package mapparser

import (
	"fmt"
	"strings"
)

// Tokenizer scans map source text into a lazy stream of tokens.
//
// The stream is read-once: Next consumes a token, Peek buffers at most one.
// When the skipEol flag is set, end-of-line tokens are elided entirely; this
// is required inside brace runs where line breaks carry no meaning, and
// disabled while scanning entity property lines where a line break terminates
// a bare value.
type Tokenizer struct {
	src     []byte
	pos     int // current byte offset
	line    int // current line (1-based)
	col     int // current column (1-based)
	skipEol bool
	peeked  *Token
}

// NewTokenizer creates a new Tokenizer for the given source bytes.
// The buffer is borrowed for the lifetime of the tokenizer and never mutated.
func NewTokenizer(src []byte) *Tokenizer {
	return &Tokenizer{src: src, line: 1, col: 1}
}

// SetSkipEol controls whether end-of-line tokens are emitted.
func (t *Tokenizer) SetSkipEol(skip bool) {
	t.skipEol = skip
	if skip && t.peeked != nil && t.peeked.Kind == KindEol {
		t.peeked = nil
	}
}

// Reset restarts the tokenizer at the beginning of the buffer.
func (t *Tokenizer) Reset() {
	t.pos = 0
	t.line = 1
	t.col = 1
	t.peeked = nil
}

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() (Token, error) {
	if t.peeked != nil {
		return *t.peeked, nil
	}
	tok, err := t.scan()
	if err != nil {
		return Token{}, err
	}
	t.peeked = &tok
	return tok, nil
}

// Next returns the next token and advances the tokenizer.
func (t *Tokenizer) Next() (Token, error) {
	if t.peeked != nil {
		tok := *t.peeked
		t.peeked = nil
		return tok, nil
	}
	return t.scan()
}

func (t *Tokenizer) currentPos() Position {
	return Position{Line: t.line, Column: t.col, Offset: t.pos}
}

func (t *Tokenizer) atEnd() bool {
	return t.pos >= len(t.src)
}

func (t *Tokenizer) peekByte() byte {
	if t.atEnd() {
		return 0
	}
	return t.src[t.pos]
}

func (t *Tokenizer) advance() byte {
	ch := t.src[t.pos]
	t.pos++
	t.col++
	return ch
}

// readEol consumes one line break (\r\n, \n, or a bare \r) and updates the
// line counter.
func (t *Tokenizer) readEol() {
	if t.src[t.pos] == '\r' {
		t.pos++
		if !t.atEnd() && t.src[t.pos] == '\n' {
			t.pos++
		}
	} else {
		t.pos++
	}
	t.line++
	t.col = 1
}

func isLineBreak(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || isLineBreak(ch)
}

// isNumberDelim reports whether ch may legally terminate a numeric literal.
// The set deliberately excludes '/', '.', '-', '_' and letters so that bare
// texture paths lex as strings rather than malformed numbers.
func isNumberDelim(ch byte) bool {
	return isWhitespace(ch) || ch == ')'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (t *Tokenizer) scan() (Token, error) {
	for !t.atEnd() {
		ch := t.peekByte()
		switch {
		case ch == ' ' || ch == '\t':
			t.advance()
		case isLineBreak(ch):
			pos := t.currentPos()
			t.readEol()
			if !t.skipEol {
				return Token{Kind: KindEol, Text: "\n", Pos: pos}, nil
			}
		case ch == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '/':
			if t.pos+2 < len(t.src) && t.src[t.pos+2] == '/' {
				return t.scanComment()
			}
			// Plain line comment: discard to end of line.
			t.discardLine()
		case ch == ';':
			// Heretic2-style line comment.
			t.discardLine()
		default:
			return t.scanToken()
		}
	}
	return Token{Kind: KindEOF, Pos: t.currentPos()}, nil
}

func (t *Tokenizer) discardLine() {
	for !t.atEnd() && !isLineBreak(t.peekByte()) {
		t.advance()
	}
}

func (t *Tokenizer) scanComment() (Token, error) {
	pos := t.currentPos()
	t.advance() // /
	t.advance() // /
	t.advance() // /
	start := t.pos
	t.discardLine()
	text := strings.TrimSpace(string(t.src[start:t.pos]))
	return Token{Kind: KindComment, Text: text, Pos: pos}, nil
}

func (t *Tokenizer) scanToken() (Token, error) {
	pos := t.currentPos()
	ch := t.peekByte()

	switch ch {
	case '(':
		t.advance()
		return Token{Kind: KindOParen, Text: "(", Pos: pos}, nil
	case ')':
		t.advance()
		return Token{Kind: KindCParen, Text: ")", Pos: pos}, nil
	case '{':
		t.advance()
		return Token{Kind: KindOBrace, Text: "{", Pos: pos}, nil
	case '}':
		t.advance()
		return Token{Kind: KindCBrace, Text: "}", Pos: pos}, nil
	case '[':
		t.advance()
		return Token{Kind: KindOBracket, Text: "[", Pos: pos}, nil
	case ']':
		t.advance()
		return Token{Kind: KindCBracket, Text: "]", Pos: pos}, nil
	case '"':
		return t.scanQuotedString()
	}

	if ch == '+' || ch == '-' || ch == '.' || isDigit(ch) {
		return t.scanNumberOrString()
	}
	return t.scanBareString(pos)
}

// scanQuotedString reads a "-delimited string. The sequence \" is passed
// through verbatim (backslash included, no unescaping); any other byte,
// including raw line breaks, is kept as-is. The delimiting quotes are not
// part of the lexeme.
func (t *Tokenizer) scanQuotedString() (Token, error) {
	pos := t.currentPos()
	t.advance() // consume opening "

	var sb strings.Builder
	for {
		if t.atEnd() {
			return Token{}, &LexError{ParseError{
				Message: "unterminated string",
				Pos:     pos,
			}}
		}
		ch := t.peekByte()
		if isLineBreak(ch) {
			sb.WriteByte('\n')
			t.readEol()
			continue
		}
		t.advance()
		if ch == '\\' && t.peekByte() == '"' {
			sb.WriteByte('\\')
			sb.WriteByte(t.advance())
			continue
		}
		if ch == '"' {
			return Token{Kind: KindString, Text: sb.String(), Pos: pos}, nil
		}
		sb.WriteByte(ch)
	}
}

// scanNumberOrString speculatively matches a numeric literal. A candidate
// only counts as a number if the maximal numeric-shaped prefix terminates at
// a number delimiter; otherwise the whole run falls through to bare-string
// scanning, so inputs like "12abc" or "1.-2-tex" yield a single string token.
func (t *Tokenizer) scanNumberOrString() (Token, error) {
	pos := t.currentPos()
	i := t.pos

	if i < len(t.src) && (t.src[i] == '+' || t.src[i] == '-') {
		i++
	}
	digits := 0
	for i < len(t.src) && isDigit(t.src[i]) {
		i++
		digits++
	}
	decimal := false
	if i < len(t.src) && t.src[i] == '.' {
		decimal = true
		i++
		for i < len(t.src) && isDigit(t.src[i]) {
			i++
			digits++
		}
	}
	expMarker := false
	expDigits := 0
	if digits > 0 && i < len(t.src) && (t.src[i] == 'e' || t.src[i] == 'E') {
		expMarker = true
		decimal = true
		i++
		if i < len(t.src) && (t.src[i] == '+' || t.src[i] == '-') {
			i++
		}
		for i < len(t.src) && isDigit(t.src[i]) {
			i++
			expDigits++
		}
	}

	delimited := i >= len(t.src) || isNumberDelim(t.src[i])
	if digits == 0 || !delimited {
		return t.scanBareString(pos)
	}
	if expMarker && expDigits == 0 {
		return Token{}, &LexError{ParseError{
			Message: fmt.Sprintf("malformed decimal literal %q", string(t.src[t.pos:i])),
			Pos:     pos,
		}}
	}

	text := string(t.src[t.pos:i])
	t.col += i - t.pos
	t.pos = i
	kind := KindInteger
	if decimal {
		kind = KindDecimal
	}
	return Token{Kind: kind, Text: text, Pos: pos}, nil
}

// scanBareString reads an unquoted string terminated by whitespace.
func (t *Tokenizer) scanBareString(pos Position) (Token, error) {
	start := t.pos
	for !t.atEnd() && !isWhitespace(t.peekByte()) {
		t.advance()
	}
	return Token{Kind: KindString, Text: string(t.src[start:t.pos]), Pos: pos}, nil
}
