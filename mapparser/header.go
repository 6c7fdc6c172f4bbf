package mapparser

import "strings"

// Header comments written by map editors identify the originating game and
// format, e.g.:
//
//	// Game: Quake 2
//	// Format: Quake2
//
// The probes below inspect only the leading comment lines of the raw buffer,
// independent of any tokenizer state, and stop at the first line that is
// neither blank nor a comment.

// ReadGameComment returns the game name from the document's header comments,
// or "" when no game comment is present.
func ReadGameComment(src []byte) string {
	return readHeaderValue(src, "Game:")
}

// ReadFormatComment returns the format name from the document's header
// comments, or "" when no format comment is present.
func ReadFormatComment(src []byte) string {
	return readHeaderValue(src, "Format:")
}

// DetectDialect guesses the source dialect from the document's format header
// comment. Returns DialectUnknown when no recognizable header exists.
func DetectDialect(src []byte) Dialect {
	return ParseDialect(ReadFormatComment(src))
}

func readHeaderValue(src []byte, key string) string {
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "//") {
			return ""
		}
		comment := strings.TrimSpace(strings.TrimLeft(line, "/"))
		if strings.HasPrefix(comment, key) {
			return strings.TrimSpace(strings.TrimPrefix(comment, key))
		}
	}
	return ""
}
