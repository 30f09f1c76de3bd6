package engine

import (
	"fmt"
	"log"
	"math"

	"github.com/kiransth77/musicpad/catalog"
	"github.com/kiransth77/musicpad/pitch"
	"github.com/kiransth77/musicpad/synth"
)

// Sustained notes hold their envelope at the sustain level until stopped,
// while pressure updates rewrite gain, filter cutoff, and (for pitched
// sources) a narrow pitch bend on the live chain. Every entry leaves the
// registry once its voice finishes disposing; a watchdog inside the voice
// bounds the hold time, so a lost stop event cannot leak the chain.

// Pressure-to-cutoff mapping range.
const (
	pressureCutoffLow  = 200.0
	pressureCutoffHigh = 4000.0

	// Maximum pitch bend at the pressure extremes, in cents (≈2%).
	pressureBendCents = 35.0
)

func pressureCutoff(p float64) float64 {
	return pressureCutoffLow * math.Pow(pressureCutoffHigh/pressureCutoffLow, p)
}

func pressureBend(p float64) float64 {
	return math.Exp2(2 * pressureBendCents * (p - 0.5) / 1200.0)
}

// StartSustainedNote begins a held note on a layer and returns its opaque
// id. The empty id is returned when the layer is unknown or muted, or when
// chain construction fails; the caller may pass it to Modulate/Stop, which
// treat it as any other unknown id.
func (e *Engine) StartSustainedNote(note, layerID string, initialVelocity float64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.readyLocked() {
		return ""
	}
	def := e.instrumentForLayerLocked(layerID, "")
	if def == nil {
		return ""
	}
	freq := 0.0
	if def.Family.Tonal() {
		freq = pitch.NoteToFrequency(note)
	}
	return e.startSustainedLocked(def, freq, layerID, initialVelocity)
}

// StartSustainedDrum is the sustained protocol for drum pads: same state
// machine, with the definition picked by drum family tag ("kick", "hat"…).
func (e *Engine) StartSustainedDrum(drumType, layerID string, initialVelocity float64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.readyLocked() {
		return ""
	}
	def, ok := e.registry.Lookup(drumType)
	if !ok {
		if family, found := catalog.FamilyByName(drumType); found {
			def = e.instrumentForFamilyLocked(family)
		}
	}
	if def == nil {
		return ""
	}
	return e.startSustainedLocked(def, 0, layerID, initialVelocity)
}

func (e *Engine) startSustainedLocked(def *catalog.Instrument, freq float64, layerID string, velocity float64) string {
	busGain, ok := e.busGainLocked(layerID)
	if !ok {
		return ""
	}
	// The chain is built at unit gain; velocity composed with the current
	// bus gain seeds the modulation gain, and later pressure writes
	// recompose against the live layer volume rather than stack on it.
	v, err := synth.NewVoice(def, e.sampleRate, freq, 1.0, 1.0, true)
	if err != nil {
		log.Printf("engine: sustained voice construction failed: %v", err)
		return ""
	}
	v.SetGain(clamp01(velocity) * busGain)

	if !e.addVoiceLocked(v) {
		return ""
	}
	e.susSeq++
	id := fmt.Sprintf("sus-%d", e.susSeq)
	e.sus[id] = &sustainedNote{voice: v, layerID: layerID}
	return id
}

// ModulateSustainedNote rewrites the live parameters of a held note from a
// pressure value in [0,1]. Unknown ids are silent no-ops: pressure events
// routinely arrive after a note has been disposed. Each call is O(1) and
// only overwrites current targets, so bursts cannot accumulate state. The
// gain recomposes against the owning layer's current volume, so mid-hold
// layer edits reach held notes on their next pressure event.
func (e *Engine) ModulateSustainedNote(id string, pressure float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.sus[id]
	if !ok {
		return
	}
	p := clamp01(pressure)
	busGain, live := e.busGainLocked(n.layerID)
	if !live {
		busGain = 0 // layer removed or muted mid-hold
	}
	n.voice.SetGainTarget(p * busGain)
	n.voice.SetCutoff(pressureCutoff(p))
	if n.voice.Pitched() {
		n.voice.SetPitchBend(pressureBend(p))
	}
}

// StopSustainedNote releases a held note. The registry entry survives until
// the release tail has fully disposed; stopping an unknown or already
// stopped id is a no-op.
func (e *Engine) StopSustainedNote(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.sus[id]
	if !ok {
		return
	}
	n.voice.Release()
}

// HasSustainedNote reports whether the id is still registered (live or
// releasing, not yet disposed).
func (e *Engine) HasSustainedNote(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sus[id]
	return ok
}

// SustainedCount returns the number of registered sustained notes.
func (e *Engine) SustainedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sus)
}
