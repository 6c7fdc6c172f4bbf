package mapparser

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
)

// faceParser is one dialect's face-parsing strategy. The table below is
// indexed by the fixed source dialect; the strategy is never re-detected per
// line.
type faceParser func(p *Parser) (Face, error)

var faceParsers = map[Dialect]faceParser{
	DialectStandard:    parseStandardFace,
	DialectValve:       parseValveFace,
	DialectQuake2:      parseQuake2Face,
	DialectQuake2Valve: parseQuake2ValveFace,
	DialectHexen2:      parseHexen2Face,
	DialectDaikatana:   parseDaikatanaFace,
	DialectQuake3:      parseQuake3Face,
}

// rawFace carries the fields exactly as the source dialect supplied them,
// before normalization into the target's field set.
type rawFace struct {
	points   [3]Vec3
	texture  string
	offset   Vec2
	rotation float64
	scale    Vec2
	axes     *TexAxes
	surface  *SurfaceAttribs
	color    *RGB
	extra    *float64
	line     int
}

func parseStandardFace(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseOffsetRotationScale(&raw); err != nil {
		return Face{}, err
	}
	return p.normalizeFace(raw), nil
}

func parseValveFace(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseValveTextureAxes(&raw); err != nil {
		return Face{}, err
	}
	return p.normalizeFace(raw), nil
}

func parseQuake2Face(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseOffsetRotationScale(&raw); err != nil {
		return Face{}, err
	}
	if err := p.parseOptionalSurfaceAttribs(&raw); err != nil {
		return Face{}, err
	}
	return p.normalizeFace(raw), nil
}

func parseQuake2ValveFace(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseValveTextureAxes(&raw); err != nil {
		return Face{}, err
	}
	if err := p.parseOptionalSurfaceAttribs(&raw); err != nil {
		return Face{}, err
	}
	return p.normalizeFace(raw), nil
}

func parseHexen2Face(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseOffsetRotationScale(&raw); err != nil {
		return Face{}, err
	}
	// Hexen2 faces may end with one opaque number, passed through untouched.
	isNum, err := p.peekNumber()
	if err != nil {
		return Face{}, err
	}
	if isNum {
		v, err := p.parseFloat()
		if err != nil {
			return Face{}, err
		}
		raw.extra = &v
	}
	return p.normalizeFace(raw), nil
}

func parseDaikatanaFace(p *Parser) (Face, error) {
	raw, err := p.parseFaceBase()
	if err != nil {
		return Face{}, err
	}
	if err := p.parseOffsetRotationScale(&raw); err != nil {
		return Face{}, err
	}
	if err := p.parseOptionalSurfaceAttribs(&raw); err != nil {
		return Face{}, err
	}
	// A color triple may only follow a present surface triple.
	if raw.surface != nil {
		isNum, err := p.peekNumber()
		if err != nil {
			return Face{}, err
		}
		if isNum {
			var rgb RGB
			for _, c := range []*int{&rgb.R, &rgb.G, &rgb.B} {
				v, err := p.parseInt()
				if err != nil {
					return Face{}, err
				}
				*c = v
			}
			raw.color = &rgb
		}
	}
	return p.normalizeFace(raw), nil
}

// parseQuake3Face handles classic (non-primitive) faces in Quake3 sources,
// which follow the Quake2 grammar.
func parseQuake3Face(p *Parser) (Face, error) {
	return parseQuake2Face(p)
}

// parsePrimitiveFace parses a brush-primitive face: the three plane points
// grouped in an outer parenthesis pair, the texture name, two bare texture
// axis vectors, then offset, rotation and scale.
func parsePrimitiveFace(p *Parser) (Face, error) {
	open, err := p.expect(KindSet{KindOParen})
	if err != nil {
		return Face{}, err
	}
	raw := rawFace{line: open.Pos.Line}
	for i := range raw.points {
		raw.points[i], err = p.parseVec3(KindOParen, KindCParen)
		if err != nil {
			return Face{}, err
		}
	}
	if _, err := p.expect(KindSet{KindCParen}); err != nil {
		return Face{}, err
	}
	raw.texture, err = p.parseTextureName()
	if err != nil {
		return Face{}, err
	}

	var axes TexAxes
	axes.U, err = p.parseVec3(KindOParen, KindCParen)
	if err != nil {
		return Face{}, err
	}
	axes.V, err = p.parseVec3(KindOParen, KindCParen)
	if err != nil {
		return Face{}, err
	}
	raw.axes = &axes

	if err := p.parseOffsetRotationScale(&raw); err != nil {
		return Face{}, err
	}
	return p.normalizeFace(raw), nil
}

// parseFaceBase parses the part shared by every classic dialect: three plane
// points followed by the texture name.
func (p *Parser) parseFaceBase() (rawFace, error) {
	tok, err := p.tok.Peek()
	if err != nil {
		return rawFace{}, err
	}
	raw := rawFace{line: tok.Pos.Line}
	for i := range raw.points {
		raw.points[i], err = p.parseVec3(KindOParen, KindCParen)
		if err != nil {
			return rawFace{}, err
		}
	}
	raw.texture, err = p.parseTextureName()
	if err != nil {
		return rawFace{}, err
	}
	return raw, nil
}

func (p *Parser) parseOffsetRotationScale(raw *rawFace) error {
	for _, dst := range []*float64{&raw.offset.X, &raw.offset.Y, &raw.rotation, &raw.scale.X, &raw.scale.Y} {
		v, err := p.parseFloat()
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

// parseValveTextureAxes parses the two bracketed axis 4-tuples plus rotation
// and scale: [ ux uy uz uOff ] [ vx vy vz vOff ] rot xScale yScale.
func (p *Parser) parseValveTextureAxes(raw *rawFace) error {
	var axes TexAxes
	u, uOff, err := p.parseAxisTuple()
	if err != nil {
		return err
	}
	v, vOff, err := p.parseAxisTuple()
	if err != nil {
		return err
	}
	axes.U, axes.V = u, v
	raw.axes = &axes
	raw.offset = Vec2{X: uOff, Y: vOff}

	for _, dst := range []*float64{&raw.rotation, &raw.scale.X, &raw.scale.Y} {
		f, err := p.parseFloat()
		if err != nil {
			return err
		}
		*dst = f
	}
	return nil
}

func (p *Parser) parseAxisTuple() (Vec3, float64, error) {
	vals, err := p.parseFloatVector(KindOBracket, KindCBracket, 4)
	if err != nil {
		return Vec3{}, 0, err
	}
	return Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, vals[3], nil
}

// parseOptionalSurfaceAttribs parses the contents/flags/value triple when the
// next token is numeric; a following '(' or '}' means the triple was omitted.
func (p *Parser) parseOptionalSurfaceAttribs(raw *rawFace) error {
	isNum, err := p.peekNumber()
	if err != nil {
		return err
	}
	if !isNum {
		return nil
	}
	var attribs SurfaceAttribs
	if attribs.Contents, err = p.parseInt(); err != nil {
		return err
	}
	if attribs.Flags, err = p.parseInt(); err != nil {
		return err
	}
	if attribs.Value, err = p.parseFloat(); err != nil {
		return err
	}
	raw.surface = &attribs
	return nil
}

func (p *Parser) peekNumber() (bool, error) {
	tok, err := p.tok.Peek()
	if err != nil {
		return false, err
	}
	return kindNumber.Contains(tok.Kind), nil
}

func (p *Parser) parseVec3(open, close Kind) (Vec3, error) {
	vals, err := p.parseFloatVector(open, close, 3)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func (p *Parser) parseFloatVector(open, close Kind, n int) ([]float64, error) {
	if _, err := p.expect(KindSet{open}); err != nil {
		return nil, err
	}
	vals := make([]float64, n)
	for i := range vals {
		v, err := p.parseFloat()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	if _, err := p.expect(KindSet{close}); err != nil {
		return nil, err
	}
	return vals, nil
}

func (p *Parser) parseFloat() (float64, error) {
	tok, err := p.expect(kindNumber)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return 0, &LexError{ParseError{
			Message: fmt.Sprintf("invalid number %q: %v", tok.Text, err),
			Pos:     tok.Pos,
			Cause:   err,
		}}
	}
	return v, nil
}

func (p *Parser) parseInt() (int, error) {
	tok, err := p.expect(KindSet{KindInteger})
	if err != nil {
		return 0, err
	}
	v64, err := strconv.ParseInt(tok.Text, 10, 64)
	if err != nil {
		return 0, &LexError{ParseError{
			Message: fmt.Sprintf("invalid integer %q: %v", tok.Text, err),
			Pos:     tok.Pos,
			Cause:   err,
		}}
	}
	v, err := safecast.Conv[int](v64)
	if err != nil {
		return 0, &LexError{ParseError{
			Message: fmt.Sprintf("integer %q out of range", tok.Text),
			Pos:     tok.Pos,
			Cause:   err,
		}}
	}
	return v, nil
}

// parseTextureName accepts any non-structural token as a texture name; bare
// names keep their case and may contain path separators.
func (p *Parser) parseTextureName() (string, error) {
	tok, err := p.tok.Next()
	if err != nil {
		return "", err
	}
	switch tok.Kind {
	case KindString, KindInteger, KindDecimal:
		return tok.Text, nil
	default:
		return "", p.syntaxError(tok, "texture name")
	}
}

// normalizeFace converts the source-dialect fields into the target's field
// set. Fields the target lacks are dropped with a warning; fields the target
// needs and the source omitted are defaulted.
func (p *Parser) normalizeFace(raw rawFace) Face {
	face := Face{
		Points:   raw.points,
		Texture:  raw.texture,
		Offset:   raw.offset,
		Rotation: raw.rotation,
		Scale:    raw.scale,
		Line:     raw.line,
	}

	if p.target.HasTextureAxes() {
		if raw.axes != nil {
			face.Axes = raw.axes
		} else {
			u, v := paraxialAxes(planeNormal(raw.points))
			face.Axes = &TexAxes{U: u, V: v}
		}
	} else if raw.axes != nil {
		p.status.Report(raw.line, SeverityWarning,
			fmt.Sprintf("discarding texture axes: target dialect %s has no axis fields", p.target))
	}

	if p.target.HasSurfaceAttribs() {
		if raw.surface != nil {
			face.Surface = raw.surface
		} else {
			face.Surface = &SurfaceAttribs{}
		}
	} else if raw.surface != nil {
		p.status.Report(raw.line, SeverityWarning,
			fmt.Sprintf("discarding surface attributes: target dialect %s has no surface fields", p.target))
	}

	if p.target == DialectDaikatana {
		face.Color = raw.color
	} else if raw.color != nil {
		p.status.Report(raw.line, SeverityWarning,
			fmt.Sprintf("discarding face color: target dialect %s has no color field", p.target))
	}

	if p.target == DialectHexen2 {
		if raw.extra != nil {
			face.Extra = raw.extra
		} else {
			zero := 0.0
			face.Extra = &zero
		}
	} else if raw.extra != nil {
		p.status.Report(raw.line, SeverityWarning,
			fmt.Sprintf("discarding trailing face value: target dialect %s has no extra field", p.target))
	}

	return face
}

// planeNormal computes the (unnormalized) normal of the plane through the
// three face points.
func planeNormal(points [3]Vec3) Vec3 {
	return points[2].Sub(points[0]).Cross(points[1].Sub(points[0]))
}

// baseAxes is the classic idTech dominant-axis table: for each of the six
// axis-aligned directions, the normal followed by the U and V texture axes.
var baseAxes = [...]Vec3{
	{0, 0, 1}, {1, 0, 0}, {0, -1, 0},
	{0, 0, -1}, {1, 0, 0}, {0, -1, 0},
	{1, 0, 0}, {0, 1, 0}, {0, 0, -1},
	{-1, 0, 0}, {0, 1, 0}, {0, 0, -1},
	{0, 1, 0}, {1, 0, 0}, {0, 0, -1},
	{0, -1, 0}, {1, 0, 0}, {0, 0, -1},
}

// paraxialAxes derives identity texture axes for a face normal, used when the
// target dialect needs explicit axes but the source supplied only
// offset/rotation/scale.
func paraxialAxes(normal Vec3) (u, v Vec3) {
	best := 0
	bestDot := 0.0
	for i := 0; i < 6; i++ {
		d := normal.Dot(baseAxes[i*3])
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	return baseAxes[best*3+1], baseAxes[best*3+2]
}
