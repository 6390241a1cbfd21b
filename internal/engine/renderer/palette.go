package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/voxelworld/internal/voxel/block"
)

// Palette maps block IDs to flat colors. Unlisted IDs draw magenta.
func Palette() []mgl32.Vec3 {
	p := make([]mgl32.Vec3, block.MaxMeshable)
	for i := range p {
		p[i] = mgl32.Vec3{1, 0, 1}
	}
	for id, c := range colors {
		p[id] = c
	}
	return p
}

var colors = map[block.ID]mgl32.Vec3{
	block.Air:          {0, 0, 0},
	block.Grass:        {0.36, 0.62, 0.25},
	block.Dirt:         {0.47, 0.33, 0.21},
	block.Stone:        {0.50, 0.50, 0.52},
	block.Sand:         {0.86, 0.80, 0.55},
	block.Snow:         {0.95, 0.96, 0.98},
	block.Log:          {0.42, 0.30, 0.17},
	block.Leaves:       {0.20, 0.48, 0.16},
	block.Cactus:       {0.27, 0.55, 0.22},
	block.Water:        {0.20, 0.38, 0.78},
	block.SnowGrass:    {0.78, 0.86, 0.80},
	block.SpruceLog:    {0.30, 0.22, 0.14},
	block.SpruceLeaves: {0.13, 0.33, 0.22},
	block.Gravel:       {0.56, 0.53, 0.50},
	block.Bedrock:      {0.16, 0.16, 0.17},
}
