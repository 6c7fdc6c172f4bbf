package mapparser

// Vec2 is a 2D vector (texture offsets and scales).
type Vec2 struct {
	X, Y float64
}

// Vec3 is a 3D vector (face points, texture axes, colors-in-space).
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// TexAxes are explicit per-axis texture alignment vectors, present when the
// target dialect expresses alignment via axes instead of rotation alone.
type TexAxes struct {
	U, V Vec3
}

// SurfaceAttribs is the contents/flags/value triple carried by Quake2-family
// faces.
type SurfaceAttribs struct {
	Contents int
	Flags    int
	Value    float64
}

// RGB is the per-face color triple carried by Daikatana faces.
type RGB struct {
	R, G, B int
}

// Face is the normalized, dialect-independent face record. The three points
// define the face plane; optional fields are nil when the target dialect does
// not carry them.
type Face struct {
	Points   [3]Vec3
	Texture  string // case-preserving
	Offset   Vec2
	Rotation float64
	Scale    Vec2
	Axes     *TexAxes
	Surface  *SurfaceAttribs
	Color    *RGB
	Extra    *float64 // opaque Hexen2 trailing field, passed through
	Line     int
}

// Brush is an ordered sequence of faces. Primitive marks brush-primitive
// syntax; primitive and classic faces never mix within one brush.
type Brush struct {
	Line      int
	Faces     []Face
	Primitive bool
}

// PatchPoint is one control point of a patch grid: a 3D position plus UV.
type PatchPoint struct {
	Pos Vec3
	UV  Vec2
}

// Patch is a curved-surface control point grid. Points holds Rows*Cols
// entries in row-major order.
type Patch struct {
	Line    int
	Texture string
	Rows    int
	Cols    int
	Points  []PatchPoint
}

// Property is a single entity key/value pair.
type Property struct {
	Key   string
	Value string
	Line  int
}

// Entity is an ordered sequence of properties plus child shapes. Entities do
// not nest.
type Entity struct {
	Line       int
	Properties []Property
	Brushes    []Brush
	Patches    []Patch
}

// Property returns the value for key and whether it was present. Keys are
// unique within an entity (duplicates are dropped at parse time, first wins).
func (e *Entity) Property(key string) (string, bool) {
	for _, p := range e.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Classname returns the entity's classname property, or "" when absent.
func (e *Entity) Classname() string {
	v, _ := e.Property("classname")
	return v
}
