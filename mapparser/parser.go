package mapparser

import (
	"fmt"
	"strings"
)

// Markers that select a sub-grammar after a shape's opening brace.
const (
	brushPrimitiveID = "brushDef"
	patchID          = "patchDef2"
)

// Parser is a recursive-descent consumer over the token stream. The
// {source, target} dialect pair is fixed for the lifetime of one parser;
// faces are normalized from the source grammar into the target's field set
// while they are built.
//
// All fatal errors abort the current document's parse with no partial
// result. Warnings are reported through the Status sink and parsing
// continues.
type Parser struct {
	tok       *Tokenizer
	source    Dialect
	target    Dialect
	status    Status
	parseFace faceParser
	open      []blockFrame
}

// blockFrame records an open block so that end of file anywhere inside it
// reports the unmatched opener's line instead of the token the grammar
// happened to want next.
type blockFrame struct {
	what string
	line int
}

// NewParser creates a parser for the given source text. An undefined dialect
// in either slot is a configuration error, raised before any token is read.
// A nil status discards diagnostics.
func NewParser(src []byte, source, target Dialect, status Status) (*Parser, error) {
	if err := checkPair(source, target); err != nil {
		return nil, err
	}
	if status == nil {
		status = NopStatus{}
	}
	return &Parser{
		tok:       NewTokenizer(src),
		source:    source,
		target:    target,
		status:    status,
		parseFace: faceParsers[source],
	}, nil
}

// Source returns the fixed source dialect.
func (p *Parser) Source() Dialect { return p.source }

// Target returns the fixed target dialect.
func (p *Parser) Target() Dialect { return p.target }

// ParseDocument parses a complete document: a sequence of entities until end
// of file. On any fatal error the returned slice is nil; a failed parse never
// yields partial results.
func (p *Parser) ParseDocument() ([]Entity, error) {
	p.tok.Reset()
	p.tok.SetSkipEol(true)

	entities := []Entity{}
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case KindEOF:
			return entities, nil
		case KindComment:
			_, _ = p.tok.Next()
		case KindOBrace:
			entity, err := p.parseEntity()
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		case KindCBrace:
			return nil, &StructureError{
				ParseError: ParseError{Message: "unmatched '}'", Pos: tok.Pos},
				OpenLine:   tok.Pos.Line,
			}
		default:
			return nil, p.syntaxError(tok, "'{'")
		}
	}
}

// ParseBrushes parses a fragment containing bare shape blocks, without an
// enclosing entity. Patches encountered in a fragment are parsed, reported
// and dropped.
func (p *Parser) ParseBrushes() ([]Brush, error) {
	p.tok.Reset()
	p.tok.SetSkipEol(true)

	brushes := []Brush{}
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case KindEOF:
			return brushes, nil
		case KindComment:
			_, _ = p.tok.Next()
		case KindOBrace:
			var host Entity
			if err := p.parseShape(&host); err != nil {
				return nil, err
			}
			brushes = append(brushes, host.Brushes...)
			for _, patch := range host.Patches {
				p.status.Report(patch.Line, SeverityWarning,
					fmt.Sprintf("skipping patch %q in brush fragment", patch.Texture))
			}
		default:
			return nil, p.syntaxError(tok, "'{'")
		}
	}
}

// ParseFaces parses a fragment of bare classic face lines until end of file.
func (p *Parser) ParseFaces() ([]Face, error) {
	p.tok.Reset()
	p.tok.SetSkipEol(true)

	faces := []Face{}
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case KindEOF:
			return faces, nil
		case KindComment:
			_, _ = p.tok.Next()
		case KindOParen:
			face, err := p.parseFace(p)
			if err != nil {
				return nil, err
			}
			faces = append(faces, face)
		default:
			return nil, p.syntaxError(tok, "'('")
		}
	}
}

// parseEntity consumes one '{' properties shapes '}' block. End-of-line
// tokens are significant while scanning properties (a line break terminates a
// bare value) and elided inside shapes.
func (p *Parser) parseEntity() (Entity, error) {
	open, err := p.expect(KindSet{KindOBrace})
	if err != nil {
		return Entity{}, err
	}
	entity := Entity{Line: open.Pos.Line}
	seen := make(map[string]bool)

	p.tok.SetSkipEol(false)
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return Entity{}, err
		}
		switch tok.Kind {
		case KindEol, KindComment:
			_, _ = p.tok.Next()
		case KindCBrace:
			_, _ = p.tok.Next()
			p.tok.SetSkipEol(true)
			return entity, nil
		case KindOBrace:
			p.tok.SetSkipEol(true)
			err := p.parseShape(&entity)
			p.tok.SetSkipEol(false)
			if err != nil {
				return Entity{}, err
			}
		case KindString:
			if err := p.parseProperty(&entity, seen); err != nil {
				return Entity{}, err
			}
		case KindEOF:
			return Entity{}, p.unclosed("entity", open.Pos.Line, tok.Pos)
		default:
			return Entity{}, p.syntaxError(tok, KindSet{KindString, KindOBrace, KindCBrace}.String())
		}
	}
}

// parseProperty consumes one key/value line. The value is either a single
// quoted string or a bare run of tokens joined with single spaces, terminated
// by end of line or a structural token. Duplicate keys keep the first value.
func (p *Parser) parseProperty(entity *Entity, seen map[string]bool) error {
	key, err := p.tok.Next()
	if err != nil {
		return err
	}

	var parts []string
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return err
		}
		if tok.Kind == KindString || tok.Kind == KindInteger || tok.Kind == KindDecimal {
			_, _ = p.tok.Next()
			parts = append(parts, tok.Text)
			continue
		}
		if len(parts) == 0 {
			return p.syntaxError(tok, "property value")
		}
		if tok.Kind == KindEol {
			_, _ = p.tok.Next()
		}
		break
	}

	if seen[key.Text] {
		p.status.Report(key.Pos.Line, SeverityWarning,
			fmt.Sprintf("duplicate property key %q, keeping first value", key.Text))
		return nil
	}
	seen[key.Text] = true
	entity.Properties = append(entity.Properties, Property{
		Key:   key.Text,
		Value: strings.Join(parts, " "),
		Line:  key.Pos.Line,
	})
	return nil
}

// parseShape consumes one '{'-opened shape block and appends the result to
// the host entity. The sub-grammar is chosen by peeking a single token after
// the brace: a primitive or patch marker (Quake3 sources only), or '(' for a
// classic brush. The peek never consumes tokens belonging to the first face.
func (p *Parser) parseShape(entity *Entity) error {
	open, err := p.expect(KindSet{KindOBrace})
	if err != nil {
		return err
	}

	var tok Token
	for {
		tok, err = p.tok.Peek()
		if err != nil {
			return err
		}
		if tok.Kind != KindComment {
			break
		}
		_, _ = p.tok.Next()
	}

	if tok.Kind == KindCBrace {
		_, _ = p.tok.Next()
		p.status.Report(open.Pos.Line, SeverityWarning, "empty brush")
		entity.Brushes = append(entity.Brushes, Brush{Line: open.Pos.Line})
		return nil
	}

	if p.source == DialectQuake3 && tok.Kind == KindString {
		switch tok.Text {
		case brushPrimitiveID:
			brush, err := p.parseBrushPrimitive(open.Pos.Line)
			if err != nil {
				return err
			}
			entity.Brushes = append(entity.Brushes, brush)
			return nil
		case patchID:
			patch, err := p.parsePatch(open.Pos.Line)
			if err != nil {
				return err
			}
			entity.Patches = append(entity.Patches, patch)
			return nil
		}
	}

	if tok.Kind != KindOParen {
		expected := "'('"
		if p.source == DialectQuake3 {
			expected = fmt.Sprintf("'(', %q or %q", brushPrimitiveID, patchID)
		}
		return p.syntaxError(tok, expected)
	}

	brush, err := p.parseBrush(open.Pos.Line)
	if err != nil {
		return err
	}
	entity.Brushes = append(entity.Brushes, brush)
	return nil
}

// parseBrush consumes classic face lines until the closing brace. Every face
// goes through the source dialect's strategy; a brush never mixes grammars.
func (p *Parser) parseBrush(startLine int) (Brush, error) {
	p.pushOpen("brush", startLine)
	defer p.popOpen()

	brush := Brush{Line: startLine}
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return Brush{}, err
		}
		switch tok.Kind {
		case KindComment:
			_, _ = p.tok.Next()
		case KindOParen:
			face, err := p.parseFace(p)
			if err != nil {
				return Brush{}, err
			}
			brush.Faces = append(brush.Faces, face)
		case KindCBrace:
			_, _ = p.tok.Next()
			return brush, nil
		case KindEOF:
			return Brush{}, p.unclosed("brush", startLine, tok.Pos)
		default:
			return Brush{}, p.syntaxError(tok, KindSet{KindOParen, KindCBrace}.String())
		}
	}
}

// parseBrushPrimitive consumes a brushDef block: the marker, an inner brace
// pair of primitive faces, and the shape's outer closing brace.
func (p *Parser) parseBrushPrimitive(startLine int) (Brush, error) {
	p.pushOpen("brush", startLine)
	defer p.popOpen()

	_, _ = p.tok.Next() // brushDef marker, already peeked
	if _, err := p.expect(KindSet{KindOBrace}); err != nil {
		return Brush{}, err
	}

	brush := Brush{Line: startLine, Primitive: true}
	for {
		tok, err := p.tok.Peek()
		if err != nil {
			return Brush{}, err
		}
		switch tok.Kind {
		case KindComment:
			_, _ = p.tok.Next()
		case KindOParen:
			face, err := parsePrimitiveFace(p)
			if err != nil {
				return Brush{}, err
			}
			brush.Faces = append(brush.Faces, face)
		case KindCBrace:
			_, _ = p.tok.Next()
			if _, err := p.expect(KindSet{KindCBrace}); err != nil {
				return Brush{}, err
			}
			return brush, nil
		case KindEOF:
			return Brush{}, p.unclosed("brush", startLine, tok.Pos)
		default:
			return Brush{}, p.syntaxError(tok, KindSet{KindOParen, KindCBrace}.String())
		}
	}
}

func (p *Parser) expect(accepted KindSet) (Token, error) {
	tok, err := p.tok.Next()
	if err != nil {
		return Token{}, err
	}
	if !accepted.Contains(tok.Kind) {
		if tok.Kind == KindEOF && len(p.open) > 0 {
			frame := p.open[len(p.open)-1]
			return Token{}, p.unclosed(frame.what, frame.line, tok.Pos)
		}
		return Token{}, p.syntaxError(tok, accepted.String())
	}
	return tok, nil
}

func (p *Parser) pushOpen(what string, line int) {
	p.open = append(p.open, blockFrame{what: what, line: line})
}

func (p *Parser) popOpen() {
	p.open = p.open[:len(p.open)-1]
}

func (p *Parser) syntaxError(tok Token, expected string) error {
	return &SyntaxError{
		ParseError: ParseError{Pos: tok.Pos},
		Expected:   expected,
		Got:        fmt.Sprintf("%s (%q)", tok.Kind, tok.Text),
	}
}

func (p *Parser) unclosed(what string, openLine int, pos Position) error {
	return &StructureError{
		ParseError: ParseError{
			Message: fmt.Sprintf("unexpected end of file in %s starting at line %d", what, openLine),
			Pos:     pos,
		},
		OpenLine: openLine,
	}
}
