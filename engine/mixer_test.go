package engine

import (
	"math"
	"testing"
)

func TestMasterGainScalesOutput(t *testing.T) {
	render := func(gain float64) float64 {
		e := newTestEngine(t, Config{MasterGain: gain})
		e.AddLayer(Layer{ID: "keys", Instrument: "organ", Volume: 1})
		e.PlaySyntheticNote("A4", "", "keys", 0.4)
		return rms32(renderSeconds(e, 0.3))
	}
	full := render(0.8)
	half := render(0.4)
	if full == 0 {
		t.Fatal("no output")
	}
	if ratio := half / full; math.Abs(ratio-0.5) > 0.05 {
		t.Fatalf("master gain not linear below the ceiling: ratio=%.3f", ratio)
	}
}

func TestUpdateMasterGainTakesEffectLive(t *testing.T) {
	e := newTestEngine(t, Config{MasterGain: 0.8})
	e.AddLayer(Layer{ID: "keys", Instrument: "organ", Volume: 1})

	id := e.StartSustainedNote("A4", "keys", 0.5)
	renderSeconds(e, 0.4)
	before := rms32(renderSeconds(e, 0.2))
	e.UpdateMasterGain(0.2)
	after := rms32(renderSeconds(e, 0.2))
	e.StopSustainedNote(id)

	if before == 0 {
		t.Fatal("no output")
	}
	if ratio := after / before; math.Abs(ratio-0.25) > 0.05 {
		t.Fatalf("master gain update not applied to live audio: ratio=%.3f", ratio)
	}
}

func TestUpdateLimiterThresholdLowersCeiling(t *testing.T) {
	render := func(thresholdDB float64) []float32 {
		e := newTestEngine(t, Config{MasterGain: 3.0})
		e.AddLayer(Layer{ID: "keys", Instrument: "organ", Volume: 1})
		e.UpdateLimiterThreshold(thresholdDB)
		for i := 0; i < 4; i++ {
			e.PlaySyntheticNote("A3", "", "keys", 1.0)
		}
		return renderSeconds(e, 0.4)
	}

	loud := render(-0.3)
	quiet := render(-12)
	if rms32(loud) == 0 {
		t.Fatal("no output")
	}
	if rms32(quiet) >= rms32(loud)*0.7 {
		t.Fatalf("lowered threshold did not reduce level: %.5f vs %.5f",
			rms32(quiet), rms32(loud))
	}
	// Whatever slips through the limiter's attack window, the bus clamp
	// keeps the output legal.
	for _, s := range quiet {
		if s > 1.0 || s < -1.0 || math.IsNaN(float64(s)) {
			t.Fatalf("out-of-range sample %f", s)
		}
	}
}

func TestMasterEffectsChainStaysBounded(t *testing.T) {
	e := newTestEngine(t, Config{
		SampleRate:   44100,
		MasterChorus: true,
		MasterReverb: true,
		MasterGain:   1.4,
	})
	e.AddLayer(Layer{ID: "keys", Instrument: "pad-warm", Volume: 1})
	e.PlaySyntheticNote("A4", "", "keys", 0.9)

	out := renderSeconds(e, 0.5)
	if rms32(out) == 0 {
		t.Fatal("effects chain silenced the bus")
	}
	for _, s := range out {
		if s > 1.0 || s < -1.0 || math.IsNaN(float64(s)) {
			t.Fatalf("effects chain produced out-of-range sample %f", s)
		}
	}
}
