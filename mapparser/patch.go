package mapparser

import "fmt"

// parsePatch consumes a patchDef2 block: the marker, a brace-delimited body
// holding the texture name, a parenthesized dimension tuple and the control
// point grid, then the shape's outer closing brace. Grid rows nest inside the
// grid block, which nests inside the patch body.
func (p *Parser) parsePatch(startLine int) (Patch, error) {
	p.pushOpen("patch", startLine)
	defer p.popOpen()

	_, _ = p.tok.Next() // patchDef2 marker, already peeked
	if _, err := p.expect(KindSet{KindOBrace}); err != nil {
		return Patch{}, err
	}

	patch := Patch{Line: startLine}
	var err error
	patch.Texture, err = p.parseTextureName()
	if err != nil {
		return Patch{}, err
	}

	// ( rows cols n0 n1 n2 ) -- the trailing three numbers are parsed to keep
	// the stream synchronized and dropped.
	if _, err := p.expect(KindSet{KindOParen}); err != nil {
		return Patch{}, err
	}
	if patch.Rows, err = p.parsePatchDim("row"); err != nil {
		return Patch{}, err
	}
	if patch.Cols, err = p.parsePatchDim("column"); err != nil {
		return Patch{}, err
	}
	for i := 0; i < 3; i++ {
		if _, err := p.parseFloat(); err != nil {
			return Patch{}, err
		}
	}
	if _, err := p.expect(KindSet{KindCParen}); err != nil {
		return Patch{}, err
	}

	if _, err := p.expect(KindSet{KindOParen}); err != nil {
		return Patch{}, err
	}
	patch.Points = make([]PatchPoint, 0, patch.Rows*patch.Cols)
	for r := 0; r < patch.Rows; r++ {
		if _, err := p.expect(KindSet{KindOParen}); err != nil {
			return Patch{}, err
		}
		for c := 0; c < patch.Cols; c++ {
			point, err := p.parsePatchPoint()
			if err != nil {
				return Patch{}, err
			}
			patch.Points = append(patch.Points, point)
		}
		if _, err := p.expect(KindSet{KindCParen}); err != nil {
			return Patch{}, err
		}
	}
	if _, err := p.expect(KindSet{KindCParen}); err != nil {
		return Patch{}, err
	}

	if _, err := p.expect(KindSet{KindCBrace}); err != nil {
		return Patch{}, err
	}
	if _, err := p.expect(KindSet{KindCBrace}); err != nil {
		return Patch{}, err
	}
	return patch, nil
}

// parsePatchDim parses one grid dimension, which must be a positive integer.
func (p *Parser) parsePatchDim(name string) (int, error) {
	tok, err := p.tok.Peek()
	if err != nil {
		return 0, err
	}
	v, err := p.parseInt()
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, &SyntaxError{
			ParseError: ParseError{
				Message: fmt.Sprintf("patch %s count must be positive", name),
				Pos:     tok.Pos,
			},
			Expected: fmt.Sprintf("positive %s count", name),
			Got:      fmt.Sprintf("%s (%q)", tok.Kind, tok.Text),
		}
	}
	return v, nil
}

// parsePatchPoint parses one ( x y z u v ) control point tuple.
func (p *Parser) parsePatchPoint() (PatchPoint, error) {
	vals, err := p.parseFloatVector(KindOParen, KindCParen, 5)
	if err != nil {
		return PatchPoint{}, err
	}
	return PatchPoint{
		Pos: Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
		UV:  Vec2{X: vals[3], Y: vals[4]},
	}, nil
}
