package synth

import (
	"math"
	"testing"

	"github.com/kiransth77/musicpad/catalog"
)

func testSine() *catalog.Instrument {
	return &catalog.Instrument{
		Name:     "test-sine",
		Family:   catalog.FamilyPitched,
		Wave:     catalog.WaveSine,
		Envelope: catalog.Envelope{Attack: 0.005, Decay: 0.05, Sustain: 0.8, Release: 0.1},
		Volume:   1,
	}
}

func renderVoice(v *Voice, frames int) []float64 {
	out := make([]float64, frames)
	v.ProcessAdd(out)
	return out
}

// measureFrequency estimates pitch from zero crossings, skipping the first
// tenth of the buffer so the attack does not skew the count.
func measureFrequency(samples []float64, sampleRate int) float64 {
	start := len(samples) / 10
	crossings := 0
	for i := start + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float64(len(samples)-start) / float64(sampleRate)
	return float64(crossings) / (2.0 * duration)
}

func windowRMS(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func TestOscillatorPitchAccuracy(t *testing.T) {
	const sampleRate = 48000
	tests := []struct {
		freq      float64
		tolerance float64
	}{
		{220.0, 2.0},
		{440.0, 3.0},
		{523.25, 4.0},
	}
	for _, tt := range tests {
		v, err := NewVoice(testSine(), sampleRate, tt.freq, 1.0, 1.0, true)
		if err != nil {
			t.Fatalf("NewVoice: %v", err)
		}
		samples := renderVoice(v, sampleRate)
		got := measureFrequency(samples, sampleRate)
		if math.Abs(got-tt.freq) > tt.tolerance {
			t.Errorf("freq %.2f: measured %.2f Hz (tolerance %.1f)", tt.freq, got, tt.tolerance)
		}
	}
}

func TestVelocityScalesAmplitude(t *testing.T) {
	const sampleRate = 48000
	loud, err := NewVoice(testSine(), sampleRate, 440, 1.0, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := NewVoice(testSine(), sampleRate, 440, 0.25, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	rmsLoud := windowRMS(renderVoice(loud, sampleRate/2))
	rmsQuiet := windowRMS(renderVoice(quiet, sampleRate/2))
	ratio := rmsQuiet / rmsLoud
	if math.Abs(ratio-0.25) > 0.02 {
		t.Errorf("expected quarter amplitude at velocity 0.25, got ratio %.3f", ratio)
	}
}

func TestOneShotVoiceSelfDisposes(t *testing.T) {
	const sampleRate = 8000
	def := &catalog.Instrument{
		Name:     "hit",
		Family:   catalog.FamilySnare,
		Noise:    catalog.NoiseWhite,
		Envelope: catalog.Envelope{Attack: 0.001, Decay: 0.1, Sustain: 0, Release: 0.05},
		Volume:   1,
	}
	v, err := NewVoice(def, sampleRate, 0, 1.0, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 256)
	blocks := 0
	for v.Active() {
		v.ProcessAdd(buf)
		blocks++
		if blocks > sampleRate { // far past any sane bound
			t.Fatal("one-shot voice never went inactive")
		}
	}
	elapsed := float64(blocks*len(buf)) / sampleRate
	if elapsed > oneShotMaxLife+0.5 {
		t.Errorf("voice lived %.2fs, cap is %.2fs", elapsed, oneShotMaxLife)
	}
}

func TestSustainedVoiceHoldsUntilRelease(t *testing.T) {
	const sampleRate = 8000
	v, err := NewVoice(testSine(), sampleRate, 220, 0.8, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	// Two seconds in, a one-shot of this definition would be long gone.
	samples := renderVoice(v, 2*sampleRate)
	if !v.Active() {
		t.Fatal("sustained voice went inactive while held")
	}
	tail := samples[len(samples)-sampleRate/10:]
	if windowRMS(tail) < 1e-4 {
		t.Fatal("held voice decayed to silence")
	}

	v.Release()
	buf := make([]float64, 256)
	deadline := 2 * sampleRate / len(buf)
	for i := 0; v.Active(); i++ {
		v.ProcessAdd(buf)
		if i > deadline {
			t.Fatal("voice did not dispose after release")
		}
	}
}

func TestSustainWatchdogReclaimsHeldVoice(t *testing.T) {
	const sampleRate = 4000
	v, err := NewVoice(testSine(), sampleRate, 220, 0.8, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 1024)
	limitBlocks := (int((sustainWatchdog+2)*sampleRate) + len(buf) - 1) / len(buf)
	blocks := 0
	for v.Active() {
		v.ProcessAdd(buf)
		blocks++
		if blocks > limitBlocks {
			t.Fatalf("watchdog never reclaimed voice after %.1fs", float64(blocks*len(buf))/sampleRate)
		}
	}
	elapsed := float64(blocks*len(buf)) / sampleRate
	if elapsed < sustainWatchdog-1 {
		t.Errorf("voice reclaimed too early at %.1fs", elapsed)
	}
}

func TestKickPitchSweepSettles(t *testing.T) {
	const sampleRate = 48000
	def := &catalog.Instrument{
		Name:     "test-kick",
		Family:   catalog.FamilyKick,
		Wave:     catalog.WaveSine,
		Envelope: catalog.Envelope{Attack: 0.002, Decay: 0.3, Sustain: 0, Release: 0.1},
		Volume:   1,
	}
	v, err := NewVoice(def, sampleRate, 50, 1.0, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	if v.sweepMult <= 1.5 {
		t.Fatalf("kick should start well above its fundamental, sweepMult=%.2f", v.sweepMult)
	}
	renderVoice(v, sampleRate/4)
	if v.sweepMult > 1.05 {
		t.Errorf("pitch sweep should settle near 1 after 250ms, got %.3f", v.sweepMult)
	}
}

func TestModulationWritesAreSmoothedParameterSets(t *testing.T) {
	const sampleRate = 48000
	v, err := NewVoice(testSine(), sampleRate, 440, 0.8, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	renderVoice(v, sampleRate/4)

	v.SetGainTarget(0.1)
	low := windowRMS(renderVoice(v, sampleRate/4))
	v.SetGainTarget(1.0)
	high := windowRMS(renderVoice(v, sampleRate/4))
	if high <= low*2 {
		t.Errorf("gain target had no effect: low=%.5f high=%.5f", low, high)
	}

	// Bend stays within the narrow band the caller asked for.
	v.SetPitchBend(1.02)
	samples := renderVoice(v, sampleRate)
	got := measureFrequency(samples, sampleRate)
	if got < 440 || got > 440*1.03 {
		t.Errorf("bent frequency %.2f outside [440, 453.2]", got)
	}
}

func TestUnpitchedVoiceIgnoresBend(t *testing.T) {
	const sampleRate = 8000
	def := &catalog.Instrument{
		Name:     "n",
		Family:   catalog.FamilyNoise,
		Noise:    catalog.NoiseWhite,
		Envelope: catalog.Envelope{Attack: 0.01, Decay: 0.1, Sustain: 0.5, Release: 0.1},
		Volume:   1,
	}
	v, err := NewVoice(def, sampleRate, 0, 1.0, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	v.SetPitchBend(1.5)
	if v.bendTarget != 1 {
		t.Error("noise voice accepted a pitch bend")
	}
}

func TestHeldZeroSustainVoiceOutlivesDecay(t *testing.T) {
	const sampleRate = 8000
	def := &catalog.Instrument{
		Name:     "held-hit",
		Family:   catalog.FamilySnare,
		Noise:    catalog.NoiseWhite,
		Envelope: catalog.Envelope{Attack: 0.001, Decay: 0.1, Sustain: 0, Release: 0.05},
		Volume:   1,
	}
	v, err := NewVoice(def, sampleRate, 0, 1.0, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	// Half a second in, the one-shot envelope would long be idle.
	samples := renderVoice(v, sampleRate/2)
	if !v.Active() {
		t.Fatal("held percussive voice went inactive after its decay")
	}
	tail := samples[len(samples)-sampleRate/10:]
	if windowRMS(tail) < 1e-4 {
		t.Fatal("held percussive voice decayed to silence")
	}
	v.Release()
	buf := make([]float64, 256)
	deadline := 2 * sampleRate / len(buf)
	for i := 0; v.Active(); i++ {
		v.ProcessAdd(buf)
		if i > deadline {
			t.Fatal("voice did not dispose after release")
		}
	}
}

func TestCutoffChangeKeepsFilterState(t *testing.T) {
	v := &Voice{sampleRate: 48000, filterType: catalog.FilterLowpass, filterQ: 0.707}
	v.rebuildFilter(1000)
	for i := 0; i < 64; i++ {
		v.filter.ProcessSample(math.Sin(float64(i) * 0.3))
	}
	before := v.filter.State()
	if before == ([2]float64{}) {
		t.Fatal("expected nonzero delay state after processing")
	}
	v.rebuildFilter(1400)
	if got := v.filter.State(); got != before {
		t.Fatalf("delay state reset on cutoff change: %v, want %v", got, before)
	}
}

func TestNewVoiceRejectsBadInput(t *testing.T) {
	if _, err := NewVoice(nil, 48000, 440, 1, 1, false); err == nil {
		t.Error("nil definition accepted")
	}
	if _, err := NewVoice(testSine(), 0, 440, 1, 1, false); err == nil {
		t.Error("zero sample rate accepted")
	}
	if _, err := NewVoice(testSine(), 48000, 440, 1, math.NaN(), false); err == nil {
		t.Error("NaN bus gain accepted")
	}
}

func TestDefaultFiltersByFamily(t *testing.T) {
	highpassed := []catalog.Family{catalog.FamilyHat, catalog.FamilySnare, catalog.FamilyCymbal}
	for _, f := range highpassed {
		spec := defaultFilter(f)
		if spec == nil || spec.Type != catalog.FilterHighpass {
			t.Errorf("family %v should default to highpass", f)
		}
	}
	for _, f := range []catalog.Family{catalog.FamilyKick, catalog.FamilyTom, catalog.FamilyClap} {
		spec := defaultFilter(f)
		if spec == nil || spec.Type != catalog.FilterLowpass {
			t.Errorf("family %v should default to lowpass", f)
		}
	}
	if defaultFilter(catalog.FamilyPitched) != nil {
		t.Error("pitched family should have no default filter")
	}
}
