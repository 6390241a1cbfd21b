// Package noise provides seeded gradient noise for terrain generation.
//
// Every generator is an explicit value carrying its seed. Nothing here holds global
// mutable state, so separate generation goroutines can sample concurrently and with
// different seeds.
package noise

import "math"

// Field is a deterministic 2D/3D noise source.
type Field interface {
	Noise2D(x, y float64) float64
	Noise3D(x, y, z float64) float64
}

// Gradient is Perlin-style gradient noise over an integer lattice. Gradients are derived
// from a hash of the lattice coordinate and the seed.
type Gradient struct {
	seed uint64
}

// New creates a gradient noise generator for seed.
func New(seed uint64) *Gradient {
	return &Gradient{seed: seed}
}

// Seed returns the generator seed.
func (g *Gradient) Seed() uint64 {
	return g.seed
}

// Noise2D implements Field.
func (g *Gradient) Noise2D(x, y float64) float64 {
	return g.Perlin2D(x, y)
}

// Noise3D implements Field.
func (g *Gradient) Noise3D(x, y, z float64) float64 {
	return g.Perlin3D(x, y, z)
}

// Perlin2D samples 2D gradient noise. The result is in [-1,1].
func (g *Gradient) Perlin2D(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	ix, iy := int64(x0), int64(y0)
	fx, fy := x-x0, y-y0

	n00 := g.dot2(ix, iy, fx, fy)
	n10 := g.dot2(ix+1, iy, fx-1, fy)
	n01 := g.dot2(ix, iy+1, fx, fy-1)
	n11 := g.dot2(ix+1, iy+1, fx-1, fy-1)

	u, v := smooth(fx), smooth(fy)
	// Unit gradients bound the raw value by sqrt(2)/2.
	return clamp(lerp(lerp(n00, n10, u), lerp(n01, n11, u), v)*math.Sqrt2, -1, 1)
}

// Perlin3D samples 3D gradient noise. The result is in [-1,1].
func (g *Gradient) Perlin3D(x, y, z float64) float64 {
	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)
	fx, fy, fz := x-x0, y-y0, z-z0

	n000 := g.dot3(ix, iy, iz, fx, fy, fz)
	n100 := g.dot3(ix+1, iy, iz, fx-1, fy, fz)
	n010 := g.dot3(ix, iy+1, iz, fx, fy-1, fz)
	n110 := g.dot3(ix+1, iy+1, iz, fx-1, fy-1, fz)
	n001 := g.dot3(ix, iy, iz+1, fx, fy, fz-1)
	n101 := g.dot3(ix+1, iy, iz+1, fx-1, fy, fz-1)
	n011 := g.dot3(ix, iy+1, iz+1, fx, fy-1, fz-1)
	n111 := g.dot3(ix+1, iy+1, iz+1, fx-1, fy-1, fz-1)

	u, v, w := smooth(fx), smooth(fy), smooth(fz)
	x00 := lerp(n000, n100, u)
	x10 := lerp(n010, n110, u)
	x01 := lerp(n001, n101, u)
	x11 := lerp(n011, n111, u)
	return clamp(lerp(lerp(x00, x10, v), lerp(x01, x11, v), w), -1, 1)
}

func (g *Gradient) dot2(ix, iy int64, dx, dy float64) float64 {
	h := hash2(g.seed, ix, iy)
	angle := float64(h>>11) * (2 * math.Pi / (1 << 53))
	return math.Cos(angle)*dx + math.Sin(angle)*dy
}

// Cube edge directions, pre-normalized.
var gradients3 = func() [12][3]float64 {
	raw := [12][3]float64{
		{1, 1, 0}, {-1, 1, 0}, {1, -1, 0}, {-1, -1, 0},
		{1, 0, 1}, {-1, 0, 1}, {1, 0, -1}, {-1, 0, -1},
		{0, 1, 1}, {0, -1, 1}, {0, 1, -1}, {0, -1, -1},
	}
	for i := range raw {
		for j := range raw[i] {
			raw[i][j] /= math.Sqrt2
		}
	}
	return raw
}()

func (g *Gradient) dot3(ix, iy, iz int64, dx, dy, dz float64) float64 {
	gr := gradients3[hash3(g.seed, ix, iy, iz)%12]
	return gr[0]*dx + gr[1]*dy + gr[2]*dz
}

// smooth is the cubic Hermite interpolant 3t^2 - 2t^3.
func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mix64 is the SplitMix64 finalizer.
func mix64(v uint64) uint64 {
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

func hash2(seed uint64, x, y int64) uint64 {
	return mix64(uint64(x)*0x9E3779B97F4A7C15 ^ mix64(uint64(y)*0x517CC1B727220A95^seed))
}

func hash3(seed uint64, x, y, z int64) uint64 {
	return mix64(uint64(z)*0x6C62272E07BB0142 ^ hash2(seed, x, y))
}

// Hash2 exposes the lattice hash for deterministic per-column rolls.
func Hash2(seed uint64, x, y int64) uint64 {
	return hash2(seed, x, y)
}

// Unit maps a hash to [0,1).
func Unit(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}
