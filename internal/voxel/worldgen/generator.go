// Package worldgen fills chunks with terrain, caves and decorative features.
//
// Generation is a pure function of the seed and chunk position, except for feature
// fragments routed in from neighbors that were generated earlier.
package worldgen

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/voxel/block"
	"github.com/Faultbox/voxelworld/internal/voxel/chunk"
	"github.com/Faultbox/voxelworld/internal/voxel/feature"
	"github.com/Faultbox/voxelworld/internal/voxel/noise"
)

// ErrOutsideWorld is returned for chunk positions beyond the configured world size.
var ErrOutsideWorld = errors.New("worldgen: chunk outside world bounds")

// Salts for per-column hash rolls.
const (
	spawnSalt   = 0xA24BAED4963EE407
	variantSalt = 0x9FB21C651E98DF25
)

// Stats counts feature placement work done for one chunk.
type Stats struct {
	Applied   int // Blocks written from features
	Forwarded int // Fragments pushed to neighbors
	Dropped   int // Placements discarded at the world edge
	Drained   int // Fragments received from the router
}

func (s *Stats) add(o Stats) {
	s.Applied += o.Applied
	s.Forwarded += o.Forwarded
	s.Dropped += o.Dropped
	s.Drained += o.Drained
}

// Result is a generated chunk plus what generation did to it.
type Result struct {
	Chunk    *chunk.Chunk
	Maps     *Maps
	Biomes   [Area]Biome
	Features []feature.Feature // Spawned in this chunk, before splitting
	Stats
}

type spawnRule struct {
	threshold float64
	chance    float64
}

// Generator produces chunks. It is safe for concurrent use; the only shared state is
// the router.
type Generator struct {
	cfg          config.GenerationConfig
	seed         uint64
	worldSize    int
	heightOffset float64

	field     noise.Field
	heightOct noise.Octaves
	heat      noise.Octaves
	humidity  noise.Octaves
	density   noise.Octaves
	cave      noise.Octaves
	detail    noise.Octaves

	table  Table
	spawns map[feature.Kind]spawnRule
	router *feature.Router
	log    *zap.Logger
}

// New creates a generator for seed. Pending fragments are exchanged through router.
func New(cfg *config.Config, seed uint64, router *feature.Router, log *zap.Logger) (*Generator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gen := cfg.Generation

	table, err := NewTable(gen.Biomes)
	if err != nil {
		return nil, fmt.Errorf("worldgen: %w", err)
	}

	spawns := make(map[feature.Kind]spawnRule, len(gen.Features))
	for _, f := range gen.Features {
		kind, err := feature.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("worldgen: %w", err)
		}
		spawns[kind] = spawnRule{threshold: f.Threshold, chance: f.Chance}
	}

	var field noise.Field
	switch gen.NoiseBackend {
	case "", "gradient":
		field = noise.New(seed)
	case "perlin":
		field = noise.NewPerlin(seed, 2, 2, 1)
	default:
		return nil, fmt.Errorf("worldgen: unknown noise backend %q", gen.NoiseBackend)
	}

	g := &Generator{
		cfg:          gen,
		seed:         seed,
		worldSize:    cfg.World.MaxWorldSize,
		heightOffset: float64(cfg.World.MaxWorldSize * chunk.Size),
		field:        field,
		heightOct:    octaves(gen.Height),
		heat:         octaves(gen.Heat),
		humidity:     octaves(gen.Humidity),
		density:      octaves(gen.Density),
		cave:         octaves(gen.Cave),
		detail:       octaves(gen.CaveDetail),
		table:        table,
		spawns:       spawns,
		router:       router,
		log:          log,
	}
	log.Debug("generator ready",
		zap.Uint64("seed", seed),
		zap.String("backend", gen.NoiseBackend),
		zap.Int("biomes", len(table)),
		zap.Bool("caves", gen.Caves))
	return g, nil
}

func octaves(o config.OctaveConfig) noise.Octaves {
	return noise.Octaves{
		Count:       o.Octaves,
		Frequency:   o.Frequency,
		Lacunarity:  o.Lacunarity,
		Persistence: o.Persistence,
	}
}

// Seed returns the world seed.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Table returns the biome table.
func (g *Generator) Table() Table {
	return g.table
}

// InWorld reports whether pos lies within the world. Chunks span [-size,size) on X
// and Z and [0,size) on Y.
func (g *Generator) InWorld(pos chunk.Pos) bool {
	n := int32(g.worldSize)
	return pos.X >= -n && pos.X < n && pos.Z >= -n && pos.Z < n && pos.Y >= 0 && pos.Y < n
}

// Generate builds the chunk at pos.
func (g *Generator) Generate(pos chunk.Pos) (*Result, error) {
	if !g.InWorld(pos) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideWorld, pos)
	}

	ox, oy, oz := pos.Origin()
	res := &Result{
		Chunk: chunk.New(pos),
		Maps:  g.SampleMaps(ox, oz),
	}
	for i := range res.Biomes {
		res.Biomes[i] = g.table.Classify(res.Maps.Heat[i], res.Maps.Humidity[i])
	}

	g.fillTerrain(res, oy)
	if g.cfg.Caves {
		g.carveCaves(res.Chunk, res.Maps, ox, oy, oz)
	}
	res.Features = g.spawnFeatures(res, ox, oy, oz)

	// Fragments routed in from earlier neighbors go first.
	res.Stats = g.ApplyPending(res.Chunk)
	local, routed := g.Place(res.Chunk, res.Features)
	res.Stats.add(local)
	g.Forward(routed)

	res.Chunk.Compact()
	return res, nil
}

// ApplyPending drains the fragments queued for c and writes them.
func (g *Generator) ApplyPending(c *chunk.Chunk) Stats {
	if g.router == nil {
		return Stats{}
	}
	frags := g.router.Drain(c.Pos())
	st, routed := g.Place(c, frags)
	st.Drained = len(frags)
	g.Forward(routed)
	return st
}

// Routed is a fragment bound for another chunk.
type Routed struct {
	Target  chunk.Pos
	Feature feature.Feature
}

// Place writes fragments into c and returns the parts that belong to neighbors. It
// touches nothing but c, so callers can run it under the chunk owner's lock and
// Forward the remainder afterwards.
func (g *Generator) Place(c *chunk.Chunk, frags []feature.Feature) (Stats, []Routed) {
	var st Stats
	var routed []Routed
	for _, f := range frags {
		st.add(g.place(c, f, &routed))
	}
	return st, routed
}

// Forward hands routed fragments to the router.
func (g *Generator) Forward(routed []Routed) {
	if g.router == nil {
		return
	}
	for _, r := range routed {
		g.router.Push(r.Target, r.Feature)
	}
}

// rule returns the soil rule for a biome.
func (g *Generator) rule(b Biome) *Rule {
	if r, ok := g.table.Rule(b); ok {
		return r
	}
	return &fallback
}

// columnBlock derives the block at world height y of a column with the given surface.
func (g *Generator) columnBlock(r *Rule, surface, y int) block.ID {
	if y == 0 {
		return block.Bedrock
	}
	if y > surface {
		if y <= g.cfg.SeaLevel {
			return block.Water
		}
		return block.Air
	}
	depth := surface - y
	switch {
	case depth < r.TopsoilDepth:
		if surface < g.cfg.SeaLevel {
			return block.Sand
		}
		return r.Topsoil
	case depth < r.TopsoilDepth+r.SubsoilDepth:
		return r.Subsoil
	default:
		return block.Stone
	}
}

// fillTerrain writes soil, stone and water one layer at a time. Homogeneous layers
// stay Uniform.
func (g *Generator) fillTerrain(res *Result, oy int) {
	var rules [Area]*Rule
	var surfaces [Area]int
	for i := range rules {
		rules[i] = g.rule(res.Biomes[i])
		surfaces[i] = res.Maps.Surface(i)
	}

	var row [Area]block.ID
	for y := 0; y < chunk.Size; y++ {
		uniform := true
		for i := range row {
			row[i] = g.columnBlock(rules[i], surfaces[i], oy+y)
			if row[i] != row[0] {
				uniform = false
			}
		}
		if uniform {
			_ = res.Chunk.FillLayer(y, row[0])
			continue
		}
		for i, id := range row {
			_ = res.Chunk.Set(i%chunk.Size, y, i/chunk.Size, id)
		}
	}
}

// carveCaves turns solid cells to air where the cave noise difference crosses the
// threshold. The height of column 0 bounds the whole chunk, so caves can open at the
// surface of columns lower than that one and stay buried in higher ones.
func (g *Generator) carveCaves(c *chunk.Chunk, m *Maps, ox, oy, oz int) {
	ceiling := m.Surface(0)
	for y := 0; y < chunk.Size; y++ {
		wy := oy + y
		if wy >= ceiling {
			break
		}
		if wy == 0 {
			continue
		}
		for z := 0; z < chunk.Size; z++ {
			for x := 0; x < chunk.Size; x++ {
				id := c.At(x, y, z)
				if !block.IsSolid(id) || id == block.Bedrock {
					continue
				}
				wx, wyf, wz := float64(ox+x), float64(wy), float64(oz+z)
				n1 := noise.Fractal3D(g.field, wx, wyf, wz, g.cave)
				n2 := noise.Fractal3D(g.field, wx+caveOffset, wyf, wz+caveOffset, g.detail)
				if n1-n2*g.cfg.CaveMix > g.cfg.CaveThreshold {
					_ = c.Set(x, y, z, block.Air)
				}
			}
		}
	}
}

// spawnFeatures rolls one feature per qualifying surface column.
func (g *Generator) spawnFeatures(res *Result, ox, oy, oz int) []feature.Feature {
	var out []feature.Feature
	for i := 0; i < Area; i++ {
		kind := g.rule(res.Biomes[i]).Feature
		if kind == feature.None {
			continue
		}
		sr, ok := g.spawns[kind]
		if !ok || res.Maps.Density[i] <= sr.threshold {
			continue
		}
		surface := res.Maps.Surface(i)
		ly := surface - oy
		if ly < 0 || ly >= chunk.Size || surface <= g.cfg.SeaLevel {
			continue
		}
		x, z := i%chunk.Size, i/chunk.Size
		if !block.IsSolid(res.Chunk.At(x, ly, z)) {
			continue
		}
		wx, wz := int64(ox+x), int64(oz+z)
		if noise.Unit(noise.Hash2(g.seed^spawnSalt, wx, wz)) >= sr.chance {
			continue
		}
		out = append(out, feature.Feature{
			Origin: feature.Vec{X: x, Y: ly + 1, Z: z},
			Kind:   kind,
			Blocks: feature.Build(kind, noise.Hash2(g.seed^variantSalt, wx, wz)),
			Home:   true,
			Source: res.Chunk.Pos(),
		})
	}
	return out
}

// place writes the in-range placements of f into c. Each out-of-range placement joins
// the fragment for its first out-of-range axis (X, then Y, then Z); the receiving
// chunk forwards what is still out of range along the next axis.
// This splits one feature into up to six fragments instead of forwarding the whole
// remainder in a single direction, and reaches diagonal chunks in several hops.
func (g *Generator) place(c *chunk.Chunk, f feature.Feature, routed *[]Routed) Stats {
	var st Stats
	var frags [len(chunk.Directions)]*feature.Feature

	for _, p := range f.Blocks {
		x, y, z := f.Origin.X+p.Offset.X, f.Origin.Y+p.Offset.Y, f.Origin.Z+p.Offset.Z
		d, out := overflow(x, y, z)
		if !out {
			if block.IsReplaceable(c.At(x, y, z)) {
				_ = c.Set(x, y, z, p.ID)
				st.Applied++
			}
			continue
		}
		if frags[d] == nil {
			frags[d] = &feature.Feature{Origin: f.Origin, Kind: f.Kind, Source: f.Source}
		}
		frags[d].Blocks = append(frags[d].Blocks, p)
	}

	for i, frag := range frags {
		if frag == nil {
			continue
		}
		d := chunk.Direction(i)
		target := c.Pos().Neighbor(d)
		if g.router == nil || !g.InWorld(target) {
			st.Dropped += len(frag.Blocks)
			continue
		}
		*routed = append(*routed, Routed{Target: target, Feature: frag.Translate(d)})
		st.Forwarded++
	}
	if st.Dropped > 0 {
		g.log.Debug("feature clipped at world edge",
			zap.Stringer("chunk", c.Pos()),
			zap.Stringer("kind", f.Kind),
			zap.Int("blocks", st.Dropped))
	}
	return st
}

// overflow returns the direction of the first axis on which the local coordinate
// leaves the chunk.
func overflow(x, y, z int) (chunk.Direction, bool) {
	for axis, v := range [3]int{x, y, z} {
		if v < 0 {
			return chunk.Along(axis, false), true
		}
		if v >= chunk.Size {
			return chunk.Along(axis, true), true
		}
	}
	return 0, false
}
