package synth

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/kiransth77/musicpad/catalog"
)

// controlInterval is the block size, in samples, at which LFO state and
// filter coefficients are refreshed.
const controlInterval = 64

// Voice is one playing chain: source → [filter] → envelope → gain. A voice
// owns its nodes exclusively and deactivates itself once its envelope has
// finished or its lifetime cap is hit.
type Voice struct {
	sampleRate int
	def        *catalog.Instrument

	// Amplitude fixed at build time: velocity × bus gain × instrument volume.
	amp float64

	// Live modulation, smoothed toward the targets to avoid zipper noise.
	gain       float64
	gainTarget float64
	bend       float64
	bendTarget float64
	smooth     float64

	baseFreq  float64
	phase     float64
	sweepMult float64 // pitch-sweep multiplier decaying toward 1
	sweepPole float64
	noise     *noiseSource

	filter      *biquad.Section
	filterType  catalog.FilterType
	cutoff      float64
	filterQ     float64
	filterDirty bool

	lfoStep  float64
	lfoPhase float64
	lfoFreq  float64 // per-block frequency multiplier
	lfoAmp   float64 // per-block amplitude multiplier

	env *adsr

	age       int
	gateAfter int // one-shot: release after this many samples; <0 holds
	watchdog  int // held voices are force-released at this age
	maxLife   int // hard cap independent of envelope state
	active    bool
}

// Active reports whether the voice still produces output. Inactive voices
// are swept out by their owner and never revive.
func (v *Voice) Active() bool { return v.active }

// Releasing reports whether the envelope is in its release phase.
func (v *Voice) Releasing() bool { return v.env.releasing() }

// Release starts the envelope release. Safe to call repeatedly.
func (v *Voice) Release() { v.env.gateOff() }

// Pitched reports whether the voice tracks a base frequency.
func (v *Voice) Pitched() bool { return v.def.Family.Tonal() }

// BaseFrequency returns the frequency the voice was built at.
func (v *Voice) BaseFrequency() float64 { return v.baseFreq }

// SetGain sets the modulation gain immediately, without ramping. Used once
// at note start; later writes should go through SetGainTarget.
func (v *Voice) SetGain(g float64) {
	if g < 0 {
		g = 0
	}
	v.gain = g
	v.gainTarget = g
}

// SetGainTarget sets the modulation gain multiplier the voice ramps toward.
// Pure parameter write, no allocation.
func (v *Voice) SetGainTarget(g float64) {
	if g < 0 {
		g = 0
	}
	v.gainTarget = g
}

// SetPitchBend sets the target frequency ratio for pitched sources.
// Unpitched voices ignore it.
func (v *Voice) SetPitchBend(ratio float64) {
	if !v.Pitched() || ratio <= 0 {
		return
	}
	v.bendTarget = ratio
}

// SetCutoff moves the filter cutoff. Takes effect at the next control
// block; voices without a filter ignore it.
func (v *Voice) SetCutoff(hz float64) {
	if v.filter == nil || hz <= 0 {
		return
	}
	nyquist := 0.47 * float64(v.sampleRate)
	if hz > nyquist {
		hz = nyquist
	}
	if hz == v.cutoff {
		return
	}
	v.cutoff = hz
	v.filterDirty = true
}

// rebuildFilter swaps in coefficients for a new cutoff while carrying the
// section's delay state over, so continuous sweeps stay click-free.
func (v *Voice) rebuildFilter(cutoff float64) {
	sr := float64(v.sampleRate)
	var sec *biquad.Section
	switch v.filterType {
	case catalog.FilterHighpass:
		sec = biquad.NewSection(design.Highpass(cutoff, v.filterQ, sr))
	case catalog.FilterBandpass:
		sec = biquad.NewSection(design.Bandpass(cutoff, v.filterQ, sr))
	default:
		sec = biquad.NewSection(design.Lowpass(cutoff, v.filterQ, sr))
	}
	if v.filter != nil {
		sec.SetState(v.filter.State())
	}
	v.filter = sec
}

// controlTick refreshes block-rate state: LFO outputs and any pending
// filter coefficients.
func (v *Voice) controlTick() {
	v.lfoFreq = 1
	v.lfoAmp = 1
	sweepCutoff := v.cutoff

	if m := v.def.Mod; m != nil {
		s := math.Sin(v.lfoPhase)
		v.lfoPhase += v.lfoStep * controlInterval
		if v.lfoPhase > math.Pi {
			v.lfoPhase -= twoPi
		}
		switch m.Target {
		case catalog.ModVibrato:
			// Up to ±50 cents at full depth.
			v.lfoFreq = math.Exp2(m.Depth * s * 50.0 / 1200.0)
		case catalog.ModTremolo:
			v.lfoAmp = 1 - m.Depth*0.5*(0.5+0.5*s)
		case catalog.ModFilterSweep:
			if v.filter != nil {
				sweepCutoff = v.cutoff * math.Exp2(m.Depth*s)
				v.filterDirty = true
			}
		}
	}

	if v.filterDirty && v.filter != nil {
		nyquist := 0.47 * float64(v.sampleRate)
		if sweepCutoff > nyquist {
			sweepCutoff = nyquist
		}
		if sweepCutoff < 10 {
			sweepCutoff = 10
		}
		v.rebuildFilter(sweepCutoff)
		v.filterDirty = false
	}
}

// ProcessAdd renders len(dst) samples and adds them into dst. It returns
// false once the voice has gone inactive.
func (v *Voice) ProcessAdd(dst []float64) bool {
	if !v.active {
		return false
	}
	pitched := v.Pitched()

	for i := range dst {
		if v.age%controlInterval == 0 {
			v.controlTick()
		}

		level := v.env.next()
		if v.env.idle() {
			v.active = false
			return false
		}

		var s float64
		if pitched {
			freq := v.baseFreq * v.bend * v.sweepMult * v.lfoFreq
			v.phase += twoPi * freq / float64(v.sampleRate)
			if v.phase > math.Pi {
				v.phase -= twoPi
			}
			s = waveSample(v.def.Wave, v.phase)
			v.sweepMult = 1 + (v.sweepMult-1)*v.sweepPole
		} else {
			s = v.noise.next()
		}

		if v.filter != nil {
			s = v.filter.ProcessSample(s)
		}

		dst[i] += s * level * v.amp * v.gain * v.lfoAmp

		v.gain += (v.gainTarget - v.gain) * v.smooth
		v.bend += (v.bendTarget - v.bend) * v.smooth

		v.age++
		if v.gateAfter >= 0 && v.age >= v.gateAfter {
			v.env.gateOff()
		}
		if v.gateAfter < 0 && v.watchdog > 0 && v.age >= v.watchdog {
			v.env.gateOff()
		}
		if v.age >= v.maxLife {
			v.active = false
			return false
		}
	}
	return true
}
