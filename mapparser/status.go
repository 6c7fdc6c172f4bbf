package mapparser

import "fmt"

// Severity represents the severity level of a parser diagnostic.
type Severity int

const (
	// SeverityError means the document could not be parsed.
	SeverityError Severity = iota
	// SeverityWarning means parsing continued with a documented default.
	SeverityWarning
	// SeverityInfo is an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Status receives line-tagged diagnostics while a parse is running. Warnings
// never halt parsing; hard errors are returned from the parse entry points
// instead of being reported here.
type Status interface {
	Report(line int, severity Severity, message string)
}

// Note is a single recorded diagnostic.
type Note struct {
	Line     int
	Severity Severity
	Message  string
}

func (n Note) String() string {
	return fmt.Sprintf("line %d: [%s] %s", n.Line, n.Severity, n.Message)
}

// NopStatus discards all diagnostics.
type NopStatus struct{}

func (NopStatus) Report(int, Severity, string) {}

// CollectStatus records diagnostics in order, for tests and batch reporting.
type CollectStatus struct {
	Notes []Note
}

func (c *CollectStatus) Report(line int, severity Severity, message string) {
	c.Notes = append(c.Notes, Note{Line: line, Severity: severity, Message: message})
}

// Warnings returns only the warning-severity notes.
func (c *CollectStatus) Warnings() []Note {
	var out []Note
	for _, n := range c.Notes {
		if n.Severity == SeverityWarning {
			out = append(out, n)
		}
	}
	return out
}
