package synth

import (
	"github.com/cwbudde/algo-approx"

	"github.com/kiransth77/musicpad/catalog"
)

type envState int

const (
	envIdle envState = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// adsr is a per-voice amplitude envelope. Attack and decay are linear
// segments, release is an exponential tail bounded by the configured
// release time.
type adsr struct {
	attackRate   float64 // level per sample
	decayRate    float64
	sustain      float64
	releaseSamps int

	state   envState
	val     float64
	relFrom float64
	relTau  float64
	relAge  int
}

func newADSR(e catalog.Envelope, sampleRate int) *adsr {
	sr := float64(sampleRate)
	a := &adsr{sustain: e.Sustain}

	attackSamps := e.Attack * sr
	if attackSamps < 1 {
		attackSamps = 1
	}
	a.attackRate = 1.0 / attackSamps

	decaySamps := e.Decay * sr
	if decaySamps < 1 {
		decaySamps = 1
	}
	a.decayRate = (1.0 - e.Sustain) / decaySamps

	a.releaseSamps = int(e.Release * sr)
	if a.releaseSamps < 1 {
		a.releaseSamps = 1
	}
	// Six time constants puts the tail ~52 dB down at the release bound.
	a.relTau = float64(a.releaseSamps) / 6.0
	return a
}

// gateOn (re)triggers the attack phase from the current level.
func (a *adsr) gateOn() {
	a.state = envAttack
}

// gateOff starts the release phase. Calling it while already releasing or
// idle has no effect.
func (a *adsr) gateOff() {
	if a.state == envIdle || a.state == envRelease {
		return
	}
	a.state = envRelease
	a.relFrom = a.val
	a.relAge = 0
}

func (a *adsr) idle() bool {
	return a.state == envIdle
}

func (a *adsr) releasing() bool {
	return a.state == envRelease
}

// next advances the envelope one sample and returns its level in [0,1].
func (a *adsr) next() float64 {
	switch a.state {
	case envIdle:
		return 0
	case envAttack:
		a.val += a.attackRate
		if a.val >= 1 {
			a.val = 1
			a.state = envDecay
		}
	case envDecay:
		a.val -= a.decayRate
		if a.val <= a.sustain {
			a.val = a.sustain
			if a.sustain <= 0 {
				a.val = 0
				a.state = envIdle
			} else {
				a.state = envSustain
			}
		}
	case envSustain:
		a.val = a.sustain
	case envRelease:
		if a.relAge >= a.releaseSamps {
			a.val = 0
			a.state = envIdle
			return 0
		}
		a.val = a.relFrom * float64(approx.FastExp(float32(-float64(a.relAge)/a.relTau)))
		a.relAge++
	}
	return a.val
}
