// Package synth builds per-note signal chains from instrument definitions:
// an oscillator or noise source, an optional biquad filter, an ADSR
// envelope, and a gain stage. The same builder serves live one-shot voices,
// sustained voices, and offline rendering.
package synth

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/kiransth77/musicpad/catalog"
)

// Family timing defaults, in seconds.
const (
	percussionGate  = 0.0 // percussive envelopes end on their own
	pitchedGate     = 0.35
	padGateRelease  = 1.5 // release at or above this gets pad treatment
	padGate         = 1.2
	oneShotMargin   = 0.25
	oneShotMinLife  = 1.0
	oneShotMaxLife  = 8.0
	sustainWatchdog = 30.0
	gainSmoothTime  = 0.005

	// Percussive envelopes have no sustain segment and would end right
	// after their decay. Held chains floor the level here so the voice
	// stays alive until Release or the watchdog, with the modulation
	// gain as the loudness control.
	sustainFloor = 0.3
)

// Default drum fundamentals for families whose pitch is implied.
func defaultFrequency(f catalog.Family) float64 {
	switch f {
	case catalog.FamilyKick:
		return 52
	case catalog.FamilyTom:
		return 110
	default:
		return 440
	}
}

// pitchSweep returns the initial pitch multiplier and decay time constant
// giving kicks and toms their punch.
func pitchSweep(f catalog.Family) (mult, tauSec float64) {
	switch f {
	case catalog.FamilyKick:
		return 4.0, 0.025
	case catalog.FamilyTom:
		return 1.6, 0.035
	default:
		return 1.0, 0
	}
}

// defaultFilter supplies the per-family filter used when the definition has
// none: highpass for the bright percussion, lowpass elsewhere.
func defaultFilter(f catalog.Family) *catalog.Filter {
	switch f {
	case catalog.FamilyHat, catalog.FamilyCymbal:
		return &catalog.Filter{Type: catalog.FilterHighpass, Cutoff: 5000, Q: 0.8}
	case catalog.FamilySnare:
		return &catalog.Filter{Type: catalog.FilterHighpass, Cutoff: 1500, Q: 0.9}
	case catalog.FamilyKick:
		return &catalog.Filter{Type: catalog.FilterLowpass, Cutoff: 500, Q: 0.707}
	case catalog.FamilyTom, catalog.FamilyClap, catalog.FamilyNoise:
		return &catalog.Filter{Type: catalog.FilterLowpass, Cutoff: 2500, Q: 0.707}
	default:
		return nil
	}
}

var noiseSeed atomic.Int64

// NewVoice constructs a wired chain for one note or drum hit.
//
// freq is the requested fundamental; pass 0 to use the family default.
// velocity is clamped to [0,1]. busGain is the caller-composed layer×global
// gain. sustained voices hold their sustain level until Release (bounded by
// the sustain watchdog); one-shot voices gate themselves after a
// family-appropriate duration.
func NewVoice(def *catalog.Instrument, sampleRate int, freq, velocity, busGain float64, sustained bool) (*Voice, error) {
	if def == nil {
		return nil, fmt.Errorf("synth: nil instrument definition")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("synth: invalid sample rate %d", sampleRate)
	}
	velocity = clamp(velocity, 0, 1)
	if busGain < 0 || math.IsNaN(busGain) || math.IsInf(busGain, 0) {
		return nil, fmt.Errorf("synth: invalid bus gain %f", busGain)
	}
	if freq <= 0 || math.IsNaN(freq) {
		freq = defaultFrequency(def.Family)
	}

	sr := float64(sampleRate)
	env := def.Envelope
	if sustained && env.Sustain < sustainFloor {
		env.Sustain = sustainFloor
	}
	v := &Voice{
		sampleRate: sampleRate,
		def:        def,
		amp:        velocity * busGain * def.Volume,
		gain:       1,
		gainTarget: 1,
		bend:       1,
		bendTarget: 1,
		smooth:     1 - math.Exp(-1/(gainSmoothTime*sr)),
		baseFreq:   freq,
		sweepMult:  1,
		env:        newADSR(env, sampleRate),
		active:     true,
	}

	if def.Family.Tonal() {
		if mult, tau := pitchSweep(def.Family); tau > 0 {
			v.sweepMult = mult
			v.sweepPole = math.Exp(-1 / (tau * sr))
		}
	} else {
		v.noise = newNoiseSource(def.Noise, noiseSeed.Add(1))
	}

	spec := def.Filter
	if spec == nil {
		spec = defaultFilter(def.Family)
	}
	if spec != nil {
		v.filterType = spec.Type
		v.filterQ = spec.Q
		v.cutoff = spec.Cutoff
		v.rebuildFilter(spec.Cutoff)
	}

	if m := def.Mod; m != nil {
		v.lfoStep = twoPi * m.RateHz / sr
	}

	if sustained {
		v.gateAfter = -1
		v.watchdog = int(sustainWatchdog * sr)
		v.maxLife = v.watchdog + int((env.Release+oneShotMargin)*sr)
	} else {
		gate := gateSeconds(def.Family, env)
		v.gateAfter = int(gate * sr)
		if v.gateAfter < 1 {
			v.gateAfter = 1
		}
		life := gate + env.Release + oneShotMargin
		life = clamp(life, oneShotMinLife, oneShotMaxLife)
		v.maxLife = int(life * sr)
	}

	v.env.gateOn()
	return v, nil
}

// gateSeconds picks the musical duration of a one-shot voice: percussive
// envelopes run out on their own, pitched notes gate after a short hold,
// pad-like instruments hold longer.
func gateSeconds(f catalog.Family, env catalog.Envelope) float64 {
	if env.Sustain <= 0 {
		return env.Attack + env.Decay
	}
	if f == catalog.FamilyPitched || f == catalog.FamilyNoise {
		if env.Release >= padGateRelease {
			return math.Max(padGate, env.Attack+0.5)
		}
		return math.Max(pitchedGate, env.Attack+0.4)
	}
	return math.Max(percussionGate, env.Attack+env.Decay)
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
