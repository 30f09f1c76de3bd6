package synth

import (
	"math"
	"math/rand"

	"github.com/kiransth77/musicpad/catalog"
)

const twoPi = 2 * math.Pi

// waveSample evaluates one oscillator sample for a phase in [-π, π).
func waveSample(w catalog.Waveform, phase float64) float64 {
	switch w {
	case catalog.WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case catalog.WaveSawtooth:
		return phase / math.Pi
	case catalog.WaveSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}

// noiseSource produces white or pink-ish noise. Pink noise is white noise
// through a one-pole lowpass, the same shaping used for diffuse tails.
type noiseSource struct {
	color catalog.NoiseColor
	rng   *rand.Rand
	lp    float64
}

func newNoiseSource(color catalog.NoiseColor, seed int64) *noiseSource {
	return &noiseSource{
		color: color,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (n *noiseSource) next() float64 {
	x := n.rng.Float64()*2 - 1
	if n.color == catalog.NoisePink {
		n.lp = 0.94*n.lp + 0.06*x
		return n.lp * 4.0
	}
	return x
}
