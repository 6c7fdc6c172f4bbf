package mapparser

import "fmt"

// ParseError is the base error type for all mapparser errors.
type ParseError struct {
	Message string
	Pos     Position
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LexError represents a tokenizer-level error (malformed numeric literal,
// unterminated string).
type LexError struct{ ParseError }

// SyntaxError represents an expectation mismatch: the grammar accepted one
// set of token kinds and the stream produced something else.
type SyntaxError struct {
	ParseError
	Expected string
	Got      string
}

func (e *SyntaxError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("line %d, col %d: expected %s, got %s", e.Pos.Line, e.Pos.Column, e.Expected, e.Got)
	}
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// StructureError represents unbalanced nesting: either a closing token with
// no matching opener, or end of file reached with structures still open.
// OpenLine names the line of the unmatched opener when one exists.
type StructureError struct {
	ParseError
	OpenLine int
}
