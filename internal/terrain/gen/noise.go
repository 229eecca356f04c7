package gen

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"
)

// Noise2D is a deterministic 2D gradient noise source.
// Eval2 returns values roughly in [-1, 1].
type Noise2D interface {
	Eval2(x, y float64) float64
}

const (
	NoiseOpenSimplex = "opensimplex"
	NoiseSimplex     = "simplex"
)

// NewNoise returns the noise source named kind, seeded with seed.
// An empty kind selects OpenSimplex.
func NewNoise(kind string, seed int64) (Noise2D, error) {
	switch kind {
	case "", NoiseOpenSimplex:
		return NewOpenSimplex(seed), nil
	case NoiseSimplex:
		return NewSimplex(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// NewOpenSimplex returns an OpenSimplex noise source.
func NewOpenSimplex(seed int64) Noise2D {
	return opensimplex.New(seed)
}

// Octave layers octaves of n for natural-looking terrain. Each octave doubles
// the frequency and scales the amplitude by persistence. The result is
// normalised back to roughly [-1, 1]; one octave is n itself.
func Octave(n Noise2D, x, y float64, octaves int, persistence float64) float64 {
	if octaves <= 1 {
		return n.Eval2(x, y)
	}

	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}
