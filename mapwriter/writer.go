// Package mapwriter serializes parsed map documents back to text in a target
// dialect, enabling lossless same-dialect round trips.
package mapwriter

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/s3thra/TrenchBroom/mapmodel"
	"github.com/s3thra/TrenchBroom/mapparser"
)

// ErrPatchUnsupported is returned when a patch is written under a target
// dialect other than Quake3.
var ErrPatchUnsupported = errors.New("patches are only supported by the Quake3 dialect")

// Writer serializes entities in one fixed dialect. Game, when set, is
// recorded in the document's header comments. Precision, when positive,
// rounds every emitted number to that many decimal places.
type Writer struct {
	Dialect   mapparser.Dialect
	Game      string
	Precision int
}

// WriteEntities writes a complete document.
func (w *Writer) WriteEntities(out io.Writer, entities []mapparser.Entity) error {
	s := &serializer{out: out, dialect: w.Dialect, precision: w.Precision}
	if w.Game != "" {
		s.printf("// Game: %s\n", w.Game)
		s.printf("// Format: %s\n", w.Dialect)
	}
	for i, entity := range entities {
		s.printf("// entity %d\n", i)
		s.writeEntity(&entity)
	}
	return s.err
}

// WriteWorld writes a built world's entities.
func (w *Writer) WriteWorld(out io.Writer, world *mapmodel.World) error {
	entities := make([]mapparser.Entity, 0, len(world.Entities))
	for _, node := range world.Entities {
		entity := mapparser.Entity{
			Line:       node.Line,
			Properties: node.Properties,
		}
		for _, brush := range node.Brushes {
			entity.Brushes = append(entity.Brushes, brush.Brush)
		}
		for _, patch := range node.Patches {
			entity.Patches = append(entity.Patches, patch.Patch)
		}
		entities = append(entities, entity)
	}
	return w.WriteEntities(out, entities)
}

type serializer struct {
	out       io.Writer
	dialect   mapparser.Dialect
	precision int
	err       error
}

func (s *serializer) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.out, format, args...)
}

func (s *serializer) writeEntity(entity *mapparser.Entity) {
	s.printf("{\n")
	// Key and value bytes pass through verbatim; the format has no escape
	// layer, so %q would corrupt values carrying backslashes.
	for _, prop := range entity.Properties {
		s.printf("\"%s\" \"%s\"\n", prop.Key, prop.Value)
	}
	shape := 0
	for _, brush := range entity.Brushes {
		s.printf("// brush %d\n", shape)
		shape++
		s.writeBrush(&brush)
	}
	for _, patch := range entity.Patches {
		s.printf("// brush %d\n", shape)
		shape++
		s.writePatch(&patch)
	}
	s.printf("}\n")
}

func (s *serializer) writeBrush(brush *mapparser.Brush) {
	if brush.Primitive && s.dialect == mapparser.DialectQuake3 {
		s.printf("{\nbrushDef\n{\n")
		for _, face := range brush.Faces {
			s.writePrimitiveFace(&face)
		}
		s.printf("}\n}\n")
		return
	}
	s.printf("{\n")
	for _, face := range brush.Faces {
		s.writeClassicFace(&face)
	}
	s.printf("}\n")
}

func (s *serializer) writeClassicFace(face *mapparser.Face) {
	s.writePoints(face)
	s.printf(" %s", face.Texture)

	switch s.dialect {
	case mapparser.DialectValve, mapparser.DialectQuake2Valve:
		s.writeValveAxes(face)
	default:
		s.printf(" %s %s", s.num(face.Offset.X), s.num(face.Offset.Y))
	}
	s.printf(" %s %s %s", s.num(face.Rotation), s.num(face.Scale.X), s.num(face.Scale.Y))

	if s.dialect.HasSurfaceAttribs() && face.Surface != nil {
		s.printf(" %d %d %s", face.Surface.Contents, face.Surface.Flags, s.num(face.Surface.Value))
	}
	if s.dialect == mapparser.DialectDaikatana && face.Color != nil {
		s.printf(" %d %d %d", face.Color.R, face.Color.G, face.Color.B)
	}
	if s.dialect == mapparser.DialectHexen2 && face.Extra != nil {
		s.printf(" %s", s.num(*face.Extra))
	}
	s.printf("\n")
}

func (s *serializer) writePrimitiveFace(face *mapparser.Face) {
	s.printf("( ")
	for _, p := range face.Points {
		s.writeVec3(p)
		s.printf(" ")
	}
	s.printf(") %s", face.Texture)

	axes := face.Axes
	if axes == nil {
		axes = &mapparser.TexAxes{U: mapparser.Vec3{X: 1}, V: mapparser.Vec3{Y: 1}}
	}
	s.printf(" ")
	s.writeVec3(axes.U)
	s.printf(" ")
	s.writeVec3(axes.V)
	s.printf(" %s %s %s %s %s\n",
		s.num(face.Offset.X), s.num(face.Offset.Y), s.num(face.Rotation),
		s.num(face.Scale.X), s.num(face.Scale.Y))
}

func (s *serializer) writePatch(patch *mapparser.Patch) {
	if s.dialect != mapparser.DialectQuake3 {
		if s.err == nil {
			s.err = fmt.Errorf("patch %q at line %d: %w", patch.Texture, patch.Line, ErrPatchUnsupported)
		}
		return
	}
	s.printf("{\npatchDef2\n{\n%s\n( %d %d 0 0 0 )\n(\n", patch.Texture, patch.Rows, patch.Cols)
	for r := 0; r < patch.Rows; r++ {
		s.printf("(")
		for c := 0; c < patch.Cols; c++ {
			point := patch.Points[r*patch.Cols+c]
			s.printf(" ( %s %s %s %s %s )",
				s.num(point.Pos.X), s.num(point.Pos.Y), s.num(point.Pos.Z),
				s.num(point.UV.X), s.num(point.UV.Y))
		}
		s.printf(" )\n")
	}
	s.printf(")\n}\n}\n")
}

func (s *serializer) writePoints(face *mapparser.Face) {
	for i, p := range face.Points {
		if i > 0 {
			s.printf(" ")
		}
		s.writeVec3(p)
	}
}

func (s *serializer) writeValveAxes(face *mapparser.Face) {
	axes := face.Axes
	if axes == nil {
		axes = &mapparser.TexAxes{U: mapparser.Vec3{X: 1}, V: mapparser.Vec3{Y: 1}}
	}
	s.printf(" [ %s %s %s %s ] [ %s %s %s %s ]",
		s.num(axes.U.X), s.num(axes.U.Y), s.num(axes.U.Z), s.num(face.Offset.X),
		s.num(axes.V.X), s.num(axes.V.Y), s.num(axes.V.Z), s.num(face.Offset.Y))
}

func (s *serializer) writeVec3(v mapparser.Vec3) {
	s.printf("( %s %s %s )", s.num(v.X), s.num(v.Y), s.num(v.Z))
}

// num renders a number minimally: integral values carry no fraction, so
// same-dialect round trips reproduce the source values byte for byte.
func (s *serializer) num(f float64) string {
	if s.precision > 0 {
		scale := math.Pow10(s.precision)
		f = math.Round(f*scale) / scale
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
