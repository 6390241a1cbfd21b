package noise

// Octaves configures a fractal (multi-octave) noise sum.
type Octaves struct {
	Count       int
	Frequency   float64
	Lacunarity  float64
	Persistence float64
}

func (o Octaves) normalized() Octaves {
	if o.Count <= 0 {
		o.Count = 1
	}
	if o.Lacunarity == 0 {
		o.Lacunarity = 2
	}
	if o.Persistence == 0 {
		o.Persistence = 0.5
	}
	return o
}

// Fractal2D sums Count octaves of f, halving (Persistence) amplitude and doubling
// (Lacunarity) frequency per octave. The sum is normalized back to [-1,1].
func Fractal2D(f Field, x, y float64, o Octaves) float64 {
	o = o.normalized()
	amp, freq := 1.0, o.Frequency
	sum, norm := 0.0, 0.0
	for i := 0; i < o.Count; i++ {
		sum += f.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= o.Persistence
		freq *= o.Lacunarity
	}
	return sum / norm
}

// Fractal3D is the 3D counterpart of Fractal2D.
func Fractal3D(f Field, x, y, z float64, o Octaves) float64 {
	o = o.normalized()
	amp, freq := 1.0, o.Frequency
	sum, norm := 0.0, 0.0
	for i := 0; i < o.Count; i++ {
		sum += f.Noise3D(x*freq, y*freq, z*freq) * amp
		norm += amp
		amp *= o.Persistence
		freq *= o.Lacunarity
	}
	return sum / norm
}
