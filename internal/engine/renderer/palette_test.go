package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
)

func TestPaletteCoversBlocks(t *testing.T) {
	p := Palette()
	if len(p) != block.MaxMeshable {
		t.Fatalf("len(Palette()) = %d, want %d", len(p), block.MaxMeshable)
	}
	magenta := mgl32.Vec3{1, 0, 1}
	for id := 1; id < block.Count(); id++ {
		if p[id] == magenta {
			t.Errorf("block %s has no color", block.Name(block.ID(id)))
		}
	}
	if p[block.MaxMeshable-1] != magenta {
		t.Errorf("unused id color = %v, want magenta", p[block.MaxMeshable-1])
	}
}
