// Package feature describes multi-block decorations (trees, cacti) and routes the
// parts that spill over a chunk border to the chunk that owns them.
package feature

import (
	"fmt"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
)

// Kind is the type tag of a feature.
type Kind uint8

const (
	None Kind = iota
	Tree
	Cactus
	SnowTree
)

func (k Kind) String() string {
	switch k {
	case Tree:
		return "tree"
	case Cactus:
		return "cactus"
	case SnowTree:
		return "snow_tree"
	default:
		return "none"
	}
}

// ParseKind resolves a config name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "tree":
		return Tree, nil
	case "cactus":
		return Cactus, nil
	case "snow_tree":
		return SnowTree, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("unknown feature kind %q", s)
}

// Vec is a small integer offset.
type Vec struct {
	X, Y, Z int
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Placement is one block of a feature, relative to the feature origin.
type Placement struct {
	Offset Vec
	ID     block.ID
}

// Feature is a decorative structure pending placement in one chunk.
type Feature struct {
	// Origin is local to the chunk the feature is applied to; routed fragments carry
	// an origin translated into the receiving chunk's frame, which may lie outside it.
	Origin Vec
	Kind   Kind
	Blocks []Placement
	// Home is true in the chunk that spawned the feature, false for routed fragments.
	Home bool
	// Source is the spawning chunk.
	Source chunk.Pos
}

// Translate returns the fragment as seen from the chunk one step in direction d:
// the origin shifts by one chunk width against d.
func (f Feature) Translate(d chunk.Direction) Feature {
	o := d.Offset()
	f.Origin = Vec{
		X: f.Origin.X - o[0]*chunk.Size,
		Y: f.Origin.Y - o[1]*chunk.Size,
		Z: f.Origin.Z - o[2]*chunk.Size,
	}
	f.Home = false
	return f
}

// Height returns the vertical extent of the feature above its origin.
func (f Feature) Height() int {
	h := 0
	for _, p := range f.Blocks {
		if p.Offset.Y+1 > h {
			h = p.Offset.Y + 1
		}
	}
	return h
}
