package catalog

import "sync"

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the built-in instrument registry. The table below is
// validated on first use and shared read-only afterwards.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		r, err := NewRegistry(builtinDefs)
		if err != nil {
			// The table is static; a validation failure here is a
			// programming error, not a runtime condition.
			panic("catalog: invalid builtin instrument table: " + err.Error())
		}
		builtin = r
	})
	return builtin
}

var builtinDefs = []Instrument{
	{
		Name:     "kick",
		Category: "drums",
		Family:   FamilyKick,
		Wave:     WaveSine,
		Envelope: Envelope{Attack: 0.002, Decay: 0.18, Sustain: 0, Release: 0.08},
	},
	{
		Name:     "snare",
		Category: "drums",
		Family:   FamilySnare,
		Noise:    NoiseWhite,
		Envelope: Envelope{Attack: 0.001, Decay: 0.12, Sustain: 0, Release: 0.06},
		Filter:   &Filter{Type: FilterHighpass, Cutoff: 1800, Q: 0.9},
	},
	{
		Name:     "hat-closed",
		Category: "drums",
		Family:   FamilyHat,
		Noise:    NoiseWhite,
		Envelope: Envelope{Attack: 0.001, Decay: 0.045, Sustain: 0, Release: 0.02},
		Filter:   &Filter{Type: FilterHighpass, Cutoff: 7000, Q: 1.1},
	},
	{
		Name:     "hat-open",
		Category: "drums",
		Family:   FamilyHat,
		Noise:    NoiseWhite,
		Envelope: Envelope{Attack: 0.001, Decay: 0.35, Sustain: 0, Release: 0.18},
		Filter:   &Filter{Type: FilterHighpass, Cutoff: 6000, Q: 0.9},
	},
	{
		Name:     "clap",
		Category: "drums",
		Family:   FamilyClap,
		Noise:    NoiseWhite,
		Envelope: Envelope{Attack: 0.002, Decay: 0.14, Sustain: 0, Release: 0.08},
		Filter:   &Filter{Type: FilterBandpass, Cutoff: 1200, Q: 1.4},
	},
	{
		Name:     "cymbal",
		Category: "drums",
		Family:   FamilyCymbal,
		Noise:    NoiseWhite,
		Envelope: Envelope{Attack: 0.002, Decay: 1.1, Sustain: 0, Release: 0.6},
		Filter:   &Filter{Type: FilterHighpass, Cutoff: 4500, Q: 0.8},
		Volume:   0.8,
	},
	{
		Name:     "tom-low",
		Category: "drums",
		Family:   FamilyTom,
		Wave:     WaveSine,
		Envelope: Envelope{Attack: 0.002, Decay: 0.28, Sustain: 0, Release: 0.12},
	},
	{
		Name:     "tom-high",
		Category: "drums",
		Family:   FamilyTom,
		Wave:     WaveSine,
		Envelope: Envelope{Attack: 0.002, Decay: 0.2, Sustain: 0, Release: 0.1},
	},
	{
		Name:     "piano",
		Category: "keys",
		Family:   FamilyPitched,
		Wave:     WaveTriangle,
		Envelope: Envelope{Attack: 0.004, Decay: 1.2, Sustain: 0.25, Release: 0.5},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 5200, Q: 0.7},
	},
	{
		Name:     "epiano",
		Category: "keys",
		Family:   FamilyPitched,
		Wave:     WaveSine,
		Envelope: Envelope{Attack: 0.006, Decay: 0.9, Sustain: 0.35, Release: 0.6},
		Mod:      &Modulation{Target: ModTremolo, RateHz: 5.5, Depth: 0.25},
	},
	{
		Name:     "organ",
		Category: "keys",
		Family:   FamilyPitched,
		Wave:     WaveSquare,
		Envelope: Envelope{Attack: 0.01, Decay: 0.05, Sustain: 0.9, Release: 0.12},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 3800, Q: 0.7},
		Volume:   0.7,
	},
	{
		Name:     "saw-lead",
		Category: "synth",
		Family:   FamilyPitched,
		Wave:     WaveSawtooth,
		Envelope: Envelope{Attack: 0.01, Decay: 0.2, Sustain: 0.7, Release: 0.2},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 2600, Q: 1.2},
		Mod:      &Modulation{Target: ModFilterSweep, RateHz: 0.8, Depth: 0.4},
	},
	{
		Name:     "square-lead",
		Category: "synth",
		Family:   FamilyPitched,
		Wave:     WaveSquare,
		Envelope: Envelope{Attack: 0.008, Decay: 0.15, Sustain: 0.6, Release: 0.18},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 3200, Q: 1.0},
		Volume:   0.8,
	},
	{
		Name:     "bass",
		Category: "synth",
		Family:   FamilyPitched,
		Wave:     WaveSawtooth,
		Envelope: Envelope{Attack: 0.005, Decay: 0.3, Sustain: 0.5, Release: 0.15},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 700, Q: 1.1},
	},
	{
		Name:     "pad-warm",
		Category: "synth",
		Family:   FamilyPitched,
		Wave:     WaveTriangle,
		Envelope: Envelope{Attack: 0.6, Decay: 1.0, Sustain: 0.8, Release: 2.5},
		Filter:   &Filter{Type: FilterLowpass, Cutoff: 1800, Q: 0.7},
		Mod:      &Modulation{Target: ModVibrato, RateHz: 4.5, Depth: 0.12},
	},
	{
		Name:     "wind",
		Category: "texture",
		Family:   FamilyNoise,
		Noise:    NoisePink,
		Envelope: Envelope{Attack: 0.8, Decay: 0.5, Sustain: 0.7, Release: 1.5},
		Filter:   &Filter{Type: FilterBandpass, Cutoff: 900, Q: 0.6},
		Mod:      &Modulation{Target: ModFilterSweep, RateHz: 0.3, Depth: 0.5},
		Volume:   0.6,
	},
}
