package noise

import (
	perlin "github.com/aquilax/go-perlin"
)

// Perlin adapts github.com/aquilax/go-perlin to Field. It is the "perlin" backend in
// the generation config.
type Perlin struct {
	p *perlin.Perlin
}

// NewPerlin builds the go-perlin backend. alpha is the per-octave weight divisor,
// beta the frequency multiplier and n the octave count of the library's own sum.
func NewPerlin(seed uint64, alpha, beta float64, n int32) *Perlin {
	return &Perlin{p: perlin.NewPerlin(alpha, beta, n, int64(seed))}
}

// Noise2D implements Field.
func (p *Perlin) Noise2D(x, y float64) float64 {
	return clamp(p.p.Noise2D(x, y), -1, 1)
}

// Noise3D implements Field.
func (p *Perlin) Noise3D(x, y, z float64) float64 {
	return clamp(p.p.Noise3D(x, y, z), -1, 1)
}
