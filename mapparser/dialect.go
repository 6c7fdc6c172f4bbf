package mapparser

import "fmt"

// Dialect names a variant of the face/brush grammar. A parser is constructed
// with a fixed {source, target} pair and never re-detects the dialect
// mid-parse.
type Dialect int

const (
	DialectUnknown Dialect = iota
	// DialectStandard is the original Quake format: offset, rotation, scale.
	DialectStandard
	// DialectValve is the Valve220 format with bracketed texture axes.
	DialectValve
	// DialectQuake2 extends Standard with a surface attribute triple.
	DialectQuake2
	// DialectQuake2Valve combines Valve axes with Quake2 surface attributes.
	DialectQuake2Valve
	// DialectHexen2 extends Standard with one opaque trailing number.
	DialectHexen2
	// DialectDaikatana extends Quake2 with a per-face color triple.
	DialectDaikatana
	// DialectQuake3 accepts Quake2-style classic faces, brush-primitive
	// brushes and patches.
	DialectQuake3
)

var dialectNames = map[Dialect]string{
	DialectStandard:    "Standard",
	DialectValve:       "Valve",
	DialectQuake2:      "Quake2",
	DialectQuake2Valve: "Quake2 (Valve)",
	DialectHexen2:      "Hexen2",
	DialectDaikatana:   "Daikatana",
	DialectQuake3:      "Quake3",
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return "Unknown"
}

// ParseDialect maps a canonical dialect name, as written in "// Format:"
// header comments, to its Dialect. Unrecognized names yield DialectUnknown.
func ParseDialect(name string) Dialect {
	for d, n := range dialectNames {
		if n == name {
			return d
		}
	}
	return DialectUnknown
}

// HasTextureAxes reports whether faces in this dialect carry explicit
// per-axis texture alignment vectors.
func (d Dialect) HasTextureAxes() bool {
	return d == DialectValve || d == DialectQuake2Valve || d == DialectQuake3
}

// HasSurfaceAttribs reports whether faces in this dialect may carry the
// contents/flags/value surface triple.
func (d Dialect) HasSurfaceAttribs() bool {
	return d == DialectQuake2 || d == DialectQuake2Valve || d == DialectDaikatana || d == DialectQuake3
}

// checkPair validates a {source, target} dialect pair before parsing starts.
func checkPair(source, target Dialect) error {
	if _, ok := dialectNames[source]; !ok {
		return fmt.Errorf("undefined source dialect %d", int(source))
	}
	if _, ok := dialectNames[target]; !ok {
		return fmt.Errorf("undefined target dialect %d", int(target))
	}
	return nil
}
