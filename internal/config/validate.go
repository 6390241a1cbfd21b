package config

import (
	"errors"
	"fmt"
)

// ChunkSize is the only chunk edge length the bitmask mesher supports.
const ChunkSize = 32

// Validate checks the config for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.World.ChunkWidth != ChunkSize || c.World.ChunkHeight != ChunkSize {
		errs = append(errs, fmt.Errorf("world: chunk size %dx%d unsupported, must be %d",
			c.World.ChunkWidth, c.World.ChunkHeight, ChunkSize))
	}
	if c.World.MaxWorldSize <= 0 {
		errs = append(errs, fmt.Errorf("world: max_world_size must be positive, got %d", c.World.MaxWorldSize))
	}

	g := &c.Generation
	switch g.NoiseBackend {
	case "gradient", "perlin":
	default:
		errs = append(errs, fmt.Errorf("generation: unknown noise_backend %q", g.NoiseBackend))
	}
	if len(g.Biomes) == 0 {
		errs = append(errs, errors.New("generation: biome table is empty"))
	}
	for _, b := range g.Biomes {
		if b.HeatMin > b.HeatMax || b.HumidityMin > b.HumidityMax {
			errs = append(errs, fmt.Errorf("generation: biome %q has an inverted range", b.Name))
		}
		if b.TopsoilDepth < 0 || b.SubsoilDepth < 0 {
			errs = append(errs, fmt.Errorf("generation: biome %q has a negative soil depth", b.Name))
		}
	}
	if g.Height.Octaves <= 0 || g.Heat.Octaves <= 0 || g.Humidity.Octaves <= 0 || g.Density.Octaves <= 0 {
		errs = append(errs, errors.New("generation: octave counts must be positive"))
	}
	if g.FeatureEdgeMargin < 0 || g.FeatureEdgeMargin*2 >= ChunkSize {
		errs = append(errs, fmt.Errorf("generation: feature_edge_margin %d out of range", g.FeatureEdgeMargin))
	}

	s := &c.Scheduler
	if s.WorkerFraction <= 0 || s.WorkerFraction > 1 {
		errs = append(errs, fmt.Errorf("scheduler: worker_fraction %v must be in (0,1]", s.WorkerFraction))
	}
	if s.GenBatch <= 0 || s.MeshBatch <= 0 {
		errs = append(errs, errors.New("scheduler: batch sizes must be positive"))
	}
	if s.PollInterval <= 0 {
		errs = append(errs, errors.New("scheduler: poll_interval must be positive"))
	}
	if s.MinChunkY > s.MaxChunkY {
		errs = append(errs, fmt.Errorf("scheduler: min_chunk_y %d above max_chunk_y %d", s.MinChunkY, s.MaxChunkY))
	}
	if len(s.LODBands) == 0 {
		errs = append(errs, errors.New("scheduler: lod_bands is empty"))
	}
	prev := -1.0
	for _, band := range s.LODBands {
		if band.LOD <= 0 || band.LOD > ChunkSize || band.LOD&(band.LOD-1) != 0 {
			errs = append(errs, fmt.Errorf("scheduler: lod %d must be a power of two up to %d", band.LOD, ChunkSize))
		}
		if band.MaxDistance <= prev {
			errs = append(errs, errors.New("scheduler: lod_bands must have ascending max_distance"))
		}
		prev = band.MaxDistance
	}

	return errors.Join(errs...)
}

// LODFor returns the meshing stride for a camera distance in blocks. Distances past
// the last band use the last band's LOD.
func (s *SchedulerConfig) LODFor(distance float64) int {
	for _, band := range s.LODBands {
		if distance <= band.MaxDistance {
			return band.LOD
		}
	}
	if n := len(s.LODBands); n > 0 {
		return s.LODBands[n-1].LOD
	}
	return 1
}
