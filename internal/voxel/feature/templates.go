package feature

import (
	"github.com/Faultbox/voxelworld/internal/voxel/block"
)

// Build returns the block list of a feature kind. variant selects trunk height and
// canopy shape deterministically.
func Build(kind Kind, variant uint64) []Placement {
	switch kind {
	case Tree:
		return oak(4 + int(variant%3))
	case Cactus:
		return cactus(2 + int(variant%3))
	case SnowTree:
		return spruce(5 + int(variant%3))
	default:
		return nil
	}
}

func oak(trunk int) []Placement {
	out := make([]Placement, 0, trunk+48)
	for y := 0; y < trunk; y++ {
		out = append(out, Placement{Offset: Vec{0, y, 0}, ID: block.Log})
	}
	// Two wide canopy rings around the top of the trunk, then a narrow cap.
	for dy := trunk - 2; dy <= trunk+1; dy++ {
		r := 2
		if dy >= trunk {
			r = 1
		}
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if dx == 0 && dz == 0 && dy < trunk {
					continue
				}
				if r == 2 && abs(dx) == 2 && abs(dz) == 2 {
					continue
				}
				out = append(out, Placement{Offset: Vec{dx, dy, dz}, ID: block.Leaves})
			}
		}
	}
	return out
}

func spruce(trunk int) []Placement {
	out := make([]Placement, 0, trunk+40)
	for y := 0; y < trunk; y++ {
		out = append(out, Placement{Offset: Vec{0, y, 0}, ID: block.SpruceLog})
	}
	// Cone: radius shrinks every two layers toward the tip.
	for dy := 2; dy <= trunk; dy++ {
		r := (trunk - dy + 1) / 2
		if r > 2 {
			r = 2
		}
		for dz := -r; dz <= r; dz++ {
			for dx := -r; dx <= r; dx++ {
				if dx == 0 && dz == 0 && dy < trunk {
					continue
				}
				if abs(dx)+abs(dz) > r+1 {
					continue
				}
				out = append(out, Placement{Offset: Vec{dx, dy, dz}, ID: block.SpruceLeaves})
			}
		}
	}
	return out
}

func cactus(height int) []Placement {
	out := make([]Placement, 0, height)
	for y := 0; y < height; y++ {
		out = append(out, Placement{Offset: Vec{0, y, 0}, ID: block.Cactus})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
