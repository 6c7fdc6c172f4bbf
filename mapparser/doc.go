// Package mapparser implements a parser for Quake-style map source text.
//
// The map format is a hierarchical, brace-delimited description of entities,
// each holding key/value properties and child shapes (brushes and, for Quake3
// sources, patches). Several historical dialects encode brush faces
// differently; the parser reads one fixed source dialect and normalizes every
// face into the field set of a fixed target dialect while parsing.
//
// The package is structured as a hand-rolled recursive-descent parser with
// three layers:
//
//   - Tokenizer: converts raw bytes into a lazy token stream with line and
//     column tracking and switchable end-of-line significance.
//   - Parser: consumes tokens according to the grammar, dispatching each face
//     line through a strategy table keyed by the source dialect.
//   - Records: the output data structures (Entity, Brush, Face, Patch).
//
// Usage:
//
//	p, err := mapparser.NewParser(src, mapparser.DialectStandard, mapparser.DialectStandard, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	entities, err := p.ParseDocument()
//
// A parse is single-threaded and synchronous; independent parses of distinct
// documents may run concurrently since all state is per-parser.
package mapparser
