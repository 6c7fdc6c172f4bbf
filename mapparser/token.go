package mapparser

import "strings"

// Kind identifies the type of a lexical token.
type Kind int

const (
	KindInvalid  Kind = iota
	KindInteger       // -?[0-9]+ with optional exponent-free suffix
	KindDecimal       // numbers with a fractional part or exponent
	KindString        // quoted or bare string
	KindOParen        // (
	KindCParen        // )
	KindOBrace        // {
	KindCBrace        // }
	KindOBracket      // [
	KindCBracket      // ]
	KindComment       // line comment starting with ///
	KindEol           // end of line
	KindEOF           // end of file
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindInteger:  "integer",
	KindDecimal:  "decimal",
	KindString:   "string",
	KindOParen:   "'('",
	KindCParen:   "')'",
	KindOBrace:   "'{'",
	KindCBrace:   "'}'",
	KindOBracket: "'['",
	KindCBracket: "']'",
	KindComment:  "comment",
	KindEol:      "end of line",
	KindEOF:      "end of file",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindSet is an "any of these kinds" predicate used at expectation-check
// sites, e.g. expecting an integer or a decimal in number position.
type KindSet []Kind

// Contains reports whether k is a member of the set.
func (s KindSet) Contains(k Kind) bool {
	for _, m := range s {
		if m == k {
			return true
		}
	}
	return false
}

// String renders the accepted kinds for error messages: "integer or decimal".
func (s KindSet) String() string {
	switch len(s) {
	case 0:
		return "nothing"
	case 1:
		return s[0].String()
	}
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// kindNumber accepts either numeric token kind.
var kindNumber = KindSet{KindInteger, KindDecimal}

// Position tracks a source location for error messages.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset into source
}

// Token is a single lexical unit produced by the Tokenizer.
// Tokens are immutable values; positions are strictly increasing over a stream.
type Token struct {
	Kind Kind
	Text string // lexeme (quotes stripped for quoted strings)
	Pos  Position
}
