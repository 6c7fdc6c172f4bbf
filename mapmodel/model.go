// Package mapmodel builds the persistent object graph from a successful
// parse. Nodes own their records by value, so handing a World to a consumer
// carries no aliasing into parser state.
package mapmodel

import (
	"github.com/google/uuid"

	"github.com/s3thra/TrenchBroom/mapparser"
)

// Standard entity property keys.
const (
	PropClassname  = "classname"
	PropOrigin     = "origin"
	PropSpawnflags = "spawnflags"
	PropTargetname = "targetname"
	PropTarget     = "target"
	PropAngle      = "angle"
	PropWad        = "wad"
	PropMessage    = "message"
)

// Worldspawn is the classname of the world entity.
const Worldspawn = "worldspawn"

// World is the root of the built object graph.
type World struct {
	ID       string
	Game     string
	Dialect  mapparser.Dialect
	Entities []*EntityNode
}

// EntityNode wraps one parsed entity with a stable identity.
type EntityNode struct {
	ID         string
	Line       int
	Properties []mapparser.Property
	Brushes    []*BrushNode
	Patches    []*PatchNode
}

// BrushNode wraps one parsed brush with a stable identity.
type BrushNode struct {
	ID    string
	Line  int
	Brush mapparser.Brush
}

// PatchNode wraps one parsed patch with a stable identity.
type PatchNode struct {
	ID    string
	Line  int
	Patch mapparser.Patch
}

// BuildOptions carries metadata recorded on the built world.
type BuildOptions struct {
	Game    string
	Dialect mapparser.Dialect
}

// Build constructs the object graph from a complete parsed document. It is
// called only after a successful parse, so the all-or-nothing contract holds
// by construction: either every entity is built or Build is never reached.
func Build(entities []mapparser.Entity, opts BuildOptions) *World {
	world := &World{
		ID:       newID("world"),
		Game:     opts.Game,
		Dialect:  opts.Dialect,
		Entities: make([]*EntityNode, 0, len(entities)),
	}
	for _, entity := range entities {
		node := &EntityNode{
			ID:         newID("entity"),
			Line:       entity.Line,
			Properties: entity.Properties,
			Brushes:    make([]*BrushNode, 0, len(entity.Brushes)),
			Patches:    make([]*PatchNode, 0, len(entity.Patches)),
		}
		for _, brush := range entity.Brushes {
			node.Brushes = append(node.Brushes, &BrushNode{
				ID:    newID("brush"),
				Line:  brush.Line,
				Brush: brush,
			})
		}
		for _, patch := range entity.Patches {
			node.Patches = append(node.Patches, &PatchNode{
				ID:    newID("patch"),
				Line:  patch.Line,
				Patch: patch,
			})
		}
		world.Entities = append(world.Entities, node)
	}
	return world
}

func newID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

// Property returns the value for key and whether it was present.
func (e *EntityNode) Property(key string) (string, bool) {
	for _, p := range e.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Classname returns the node's classname property, or "" when absent.
func (e *EntityNode) Classname() string {
	v, _ := e.Property(PropClassname)
	return v
}

// Worldspawn returns the world entity, or nil when the document had none.
func (w *World) Worldspawn() *EntityNode {
	for _, e := range w.Entities {
		if e.Classname() == Worldspawn {
			return e
		}
	}
	return nil
}

// EntitiesByClass returns all entities with the given classname, in document
// order.
func (w *World) EntitiesByClass(name string) []*EntityNode {
	var out []*EntityNode
	for _, e := range w.Entities {
		if e.Classname() == name {
			out = append(out, e)
		}
	}
	return out
}

// BrushCount returns the total number of brushes across all entities.
func (w *World) BrushCount() int {
	n := 0
	for _, e := range w.Entities {
		n += len(e.Brushes)
	}
	return n
}

// FaceCount returns the total number of faces across all brushes.
func (w *World) FaceCount() int {
	n := 0
	for _, e := range w.Entities {
		for _, b := range e.Brushes {
			n += len(b.Brush.Faces)
		}
	}
	return n
}

// PatchCount returns the total number of patches across all entities.
func (w *World) PatchCount() int {
	n := 0
	for _, e := range w.Entities {
		n += len(e.Patches)
	}
	return n
}
