package worldgen

import (
	"math"

	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/noise"
)

// Area is the number of columns in a chunk.
const Area = chunk.Size * chunk.Size

// densityOffset decorrelates feature density from the height map.
const densityOffset = 4096

// caveOffset decorrelates the cave detail noise from the primary cave noise.
const caveOffset = 8192

// Maps holds the per-column noise samples of one chunk column. Index i = z*Size+x.
type Maps struct {
	Height   [Area]float64 // Surface height in world blocks
	Heat     [Area]float64 // [0,1]
	Humidity [Area]float64 // [0,1]
	Density  [Area]float64 // [-1,1], zero near the chunk border
}

// Surface returns the world y of the topmost terrain block of column i.
func (m *Maps) Surface(i int) int {
	return int(math.Floor(m.Height[i]))
}

// SampleMaps computes the noise maps for the column whose world origin is
// (originX, originZ).
func (g *Generator) SampleMaps(originX, originZ int) *Maps {
	m := &Maps{}
	margin := g.cfg.FeatureEdgeMargin
	for z := 0; z < chunk.Size; z++ {
		for x := 0; x < chunk.Size; x++ {
			i := z*chunk.Size + x
			wx, wz := float64(originX+x), float64(originZ+z)

			m.Height[i] = g.height(wx, wz)
			m.Heat[i] = g.climate(wx+g.cfg.HeatOffset, wz+g.cfg.HeatOffset, g.heat)
			m.Humidity[i] = g.climate(wx+g.cfg.HumidityOffset, wz+g.cfg.HumidityOffset, g.humidity)

			if x < margin || z < margin || x >= chunk.Size-margin || z >= chunk.Size-margin {
				continue
			}
			m.Density[i] = noise.Fractal2D(g.field, wx+densityOffset, wz+densityOffset, g.density)
		}
	}
	return m
}

// height shapes the fractal sum: positive excursions flatten into plateaus, negative
// ones deepen into valleys.
func (g *Generator) height(wx, wz float64) float64 {
	v := noise.Fractal2D(g.field, wx+g.heightOffset, wz+g.heightOffset, g.heightOct)
	if v >= 0 {
		v = math.Pow(v, g.cfg.PlateauExponent)
	} else {
		v = -math.Pow(-v, g.cfg.ValleyExponent)
	}
	return g.cfg.BaseHeight + v*g.cfg.HeightAmplitude
}

// climate maps a fractal sample into [0,1], stretched by ClimateContrast so the sum's
// bunching around zero still reaches the outer biome bands.
func (g *Generator) climate(x, y float64, o noise.Octaves) float64 {
	v := noise.Fractal2D(g.field, x, y, o)
	v = (v*g.cfg.ClimateContrast + 1) / 2
	return math.Max(0, math.Min(1, v))
}
