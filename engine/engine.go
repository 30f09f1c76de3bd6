// Package engine is the real-time sound engine: a façade owning the audio
// output, the mixer layers, the sustained-note registry, and the sample
// pool. All playback entry points are best-effort: expected races (unknown
// layer, already-disposed note id, suspended device) degrade to silence for
// the affected trigger and never to an error or a panic.
package engine

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/kiransth77/musicpad/catalog"
	"github.com/kiransth77/musicpad/pitch"
	"github.com/kiransth77/musicpad/synth"
)

var (
	// ErrAudioUnavailable reports that no audio device could be opened.
	ErrAudioUnavailable = errors.New("engine: audio unavailable")

	errResumeFailed = errors.New("engine: output resume failed")
)

// RunState tracks the audio context lifecycle.
type RunState int

const (
	StateUninitialized RunState = iota
	StateInitializing
	StateRunning
	StateSuspended
	StateClosed
)

func (s RunState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Config holds engine construction parameters. Zero values select the
// defaults noted per field.
type Config struct {
	SampleRate int               // default 44100
	Registry   *catalog.Registry // default catalog.Builtin()

	MasterGain         float64 // default 1.4 (headroom above per-voice attenuation)
	LimiterThresholdDB float64 // default -0.3 dBFS
	LimiterReleaseMs   float64 // default 80
	MasterChorus       bool
	MasterReverb       bool

	GlobalVolume float64 // default 1
	MaxVoices    int     // default 64

	Output OutputFactory // default: oto/v3 device
}

func (cfg *Config) fillDefaults() {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Registry == nil {
		cfg.Registry = catalog.Builtin()
	}
	if cfg.MasterGain <= 0 {
		cfg.MasterGain = 1.4
	}
	if cfg.LimiterThresholdDB == 0 {
		cfg.LimiterThresholdDB = -0.3
	}
	if cfg.LimiterReleaseMs < 1 {
		cfg.LimiterReleaseMs = 80
	}
	if cfg.GlobalVolume <= 0 {
		cfg.GlobalVolume = 1
	}
	if cfg.MaxVoices <= 0 {
		cfg.MaxVoices = 64
	}
	if cfg.Output == nil {
		cfg.Output = newOtoOutput
	}
}

// chainNode is one playing chain mixed by Process: a synthesized voice or a
// sample-buffer voice.
type chainNode interface {
	ProcessAdd(dst []float64) bool
	Active() bool
}

type sustainedNote struct {
	voice   *synth.Voice
	layerID string
}

// Engine is the singleton audio façade.
type Engine struct {
	mu    sync.Mutex
	state RunState

	sampleRate int
	registry   *catalog.Registry
	mix        *mixer
	pool       *samplePool

	voices []chainNode
	sus    map[string]*sustainedNote
	susSeq uint64

	globalVolume float64
	maxVoices    int

	newOutput OutputFactory
	out       Output

	taps []*Tap

	janitorStop chan struct{}
}

// New constructs an engine. The instance is inert until Initialize opens
// the output device (or the configured factory).
func New(cfg Config) *Engine {
	cfg.fillDefaults()
	mix, err := newMixer(cfg.SampleRate, cfg)
	if err != nil {
		// Master effects are optional polish; fall back to the plain chain.
		log.Printf("engine: master effects unavailable: %v", err)
		plain := cfg
		plain.MasterChorus = false
		plain.MasterReverb = false
		mix, _ = newMixer(cfg.SampleRate, plain)
	}
	return &Engine{
		sampleRate:   cfg.SampleRate,
		registry:     cfg.Registry,
		mix:          mix,
		pool:         newSamplePool(),
		sus:          make(map[string]*sustainedNote),
		globalVolume: cfg.GlobalVolume,
		maxVoices:    cfg.MaxVoices,
		newOutput:    cfg.Output,
	}
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine instance. Every call returns the
// same engine, so re-running composition code cannot fork mixer or registry
// state.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(Config{})
	})
	return defaultEngine
}

// Initialize opens the audio output and starts the stream. It is
// idempotent and safe to race: concurrent callers serialize on the engine
// lock, and every call after the first successful one returns nil.
// A closed engine stays closed.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateRunning, StateSuspended, StateInitializing:
		return nil
	case StateClosed:
		return fmt.Errorf("%w: engine closed", ErrAudioUnavailable)
	}

	e.state = StateInitializing
	out, err := e.newOutput(e, e.sampleRate)
	if err != nil {
		e.state = StateUninitialized
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	if err := out.Start(); err != nil {
		e.state = StateUninitialized
		return fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
	}
	e.out = out
	e.state = StateRunning

	e.janitorStop = make(chan struct{})
	go e.janitor(e.janitorStop)
	return nil
}

// Close tears down the output. Playback APIs become no-ops afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateClosed {
		return nil
	}
	if e.janitorStop != nil {
		close(e.janitorStop)
		e.janitorStop = nil
	}
	var err error
	if e.out != nil {
		err = e.out.Close()
		e.out = nil
	}
	e.voices = nil
	e.sus = make(map[string]*sustainedNote)
	e.state = StateClosed
	return err
}

// Suspend pauses the output device, keeping all engine state.
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateRunning {
		return nil
	}
	if err := e.out.Suspend(); err != nil {
		return err
	}
	e.state = StateSuspended
	return nil
}

// Resume restarts a suspended output.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateSuspended {
		return nil
	}
	if err := e.out.Resume(); err != nil {
		return err
	}
	e.state = StateRunning
	return nil
}

// State returns the current run state.
func (e *Engine) State() RunState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SampleRate returns the engine's fixed sample rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// readyLocked gates the hot playback path: running passes, suspended gets
// one resume-then-retry, anything else drops the trigger.
func (e *Engine) readyLocked() bool {
	switch e.state {
	case StateRunning:
		return true
	case StateSuspended:
		if err := e.out.Resume(); err != nil {
			log.Printf("engine: resume failed, dropping trigger: %v", err)
			return false
		}
		e.state = StateRunning
		return true
	default:
		return false
	}
}

// janitor periodically sweeps disposed chains so resources are reclaimed
// even when nothing is pulling audio. It only inspects and repairs state
// under the engine lock.
func (e *Engine) janitor(stop chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			e.sweepLocked()
			e.mu.Unlock()
		}
	}
}

func (e *Engine) sweepLocked() {
	write := 0
	for _, v := range e.voices {
		if v.Active() {
			e.voices[write] = v
			write++
		}
	}
	for i := write; i < len(e.voices); i++ {
		e.voices[i] = nil
	}
	e.voices = e.voices[:write]
	for id, n := range e.sus {
		if !n.voice.Active() {
			delete(e.sus, id)
		}
	}
	e.dropClosedTapsLocked()
}

// Layer management. All operations are silent no-ops for unknown ids:
// callers may race with layer setup and dropped triggers are acceptable.

func (e *Engine) AddLayer(l Layer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mix.addLayer(l)
}

func (e *Engine) RemoveLayer(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mix.removeLayer(id)
}

func (e *Engine) HasLayer(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.mix.layer(id)
	return ok
}

func (e *Engine) UpdateLayerVolume(id string, v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mix.updateVolume(id, v)
}

func (e *Engine) ToggleLayerMute(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mix.toggleMute(id)
}

func (e *Engine) ToggleLayerSolo(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mix.toggleSolo(id)
}

// Master bus controls.

func (e *Engine) UpdateMasterGain(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v >= 0 {
		e.mix.masterGain = v
	}
}

func (e *Engine) UpdateLimiterThreshold(db float64) {
	if math.IsNaN(db) || math.IsInf(db, 0) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.mix.limiter.SetThreshold(limiterCeilingDB(db)); err != nil {
		log.Printf("engine: limiter threshold update rejected: %v", err)
	}
}

func (e *Engine) UpdateGlobalInstrumentVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v >= 0 {
		e.globalVolume = v
	}
}

// busGainLocked composes the gain contribution above velocity for a layer.
// ok=false means the trigger must short-circuit: unknown or muted layer, or
// another layer holds solo.
func (e *Engine) busGainLocked(layerID string) (float64, bool) {
	l, ok := e.mix.layer(layerID)
	if !ok || l.Muted {
		return 0, false
	}
	if !l.Solo && e.mix.anySolo() {
		return 0, false
	}
	return l.Volume * e.globalVolume, true
}

func (e *Engine) addVoiceLocked(v chainNode) bool {
	if len(e.voices) >= e.maxVoices {
		log.Printf("engine: voice limit reached, dropping trigger")
		return false
	}
	e.voices = append(e.voices, v)
	return true
}

// instrumentForLayerLocked resolves the definition a layer plays, falling
// back to name lookup and then to the first pitched instrument.
func (e *Engine) instrumentForLayerLocked(layerID, override string) *catalog.Instrument {
	name := override
	if name == "" {
		if l, ok := e.mix.layer(layerID); ok {
			name = l.Instrument
		}
	}
	if name != "" {
		if def, ok := e.registry.Lookup(name); ok {
			return def
		}
	}
	return e.instrumentForFamilyLocked(catalog.FamilyPitched)
}

func (e *Engine) instrumentForFamilyLocked(f catalog.Family) *catalog.Instrument {
	for _, name := range e.registry.Names() {
		if def, ok := e.registry.Lookup(name); ok && def.Family == f {
			return def
		}
	}
	return nil
}

// PlaySyntheticNote triggers a one-shot synthesized note on a layer.
// instrument may be empty to use the layer's configured instrument.
func (e *Engine) PlaySyntheticNote(note, instrument, layerID string, velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.readyLocked() {
		return
	}
	busGain, ok := e.busGainLocked(layerID)
	if !ok {
		return
	}
	def := e.instrumentForLayerLocked(layerID, instrument)
	if def == nil {
		return
	}
	freq := 0.0
	if def.Family.Tonal() {
		freq = pitch.NoteToFrequency(note)
	}
	e.spawnLocked(def, freq, velocity, busGain)
}

// PlayAdvancedSynth triggers a one-shot voice at an explicit frequency.
// params overrides the instrument definition; pass nil to use the first
// catalog instrument of the family.
func (e *Engine) PlayAdvancedSynth(frequency float64, layerID string, velocity float64, family catalog.Family, params *catalog.Instrument) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.readyLocked() {
		return
	}
	busGain, ok := e.busGainLocked(layerID)
	if !ok {
		return
	}
	def := params
	if def == nil {
		def = e.instrumentForFamilyLocked(family)
	}
	if def == nil {
		return
	}
	e.spawnLocked(def, frequency, velocity, busGain)
}

// PlaySample plays a loaded sample buffer, falling back to synthesis when
// the pool has no entry for the id. Never returns an error: a failed
// trigger is a missing sound, not a crash.
func (e *Engine) PlaySample(sampleID, layerID string, velocity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.readyLocked() {
		return
	}
	busGain, ok := e.busGainLocked(layerID)
	if !ok {
		return
	}
	velocity = clamp01(velocity)

	if buf, ok := e.pool.lookup(sampleID); ok {
		e.addVoiceLocked(&sampleVoice{
			buf:    buf,
			amp:    velocity * busGain,
			active: true,
		})
		return
	}

	// Fall back to synthesis: sample ids name catalog instruments or
	// drum families.
	def, ok := e.registry.Lookup(sampleID)
	if !ok {
		if family, found := catalog.FamilyByName(sampleID); found {
			def = e.instrumentForFamilyLocked(family)
		}
	}
	if def == nil {
		log.Printf("engine: no sample or instrument %q, dropping trigger", sampleID)
		return
	}
	e.spawnLocked(def, 0, velocity, busGain)
}

// spawnLocked builds and registers a one-shot chain. Construction failures
// degrade to silence for this voice only.
func (e *Engine) spawnLocked(def *catalog.Instrument, freq, velocity, busGain float64) {
	v, err := synth.NewVoice(def, e.sampleRate, freq, clamp01(velocity), busGain, false)
	if err != nil {
		log.Printf("engine: voice construction failed: %v", err)
		return
	}
	e.addVoiceLocked(v)
}

// Process renders numFrames of the mixed master output. The audio backend
// pulls this; offline callers (tests, tools) may call it directly, which
// also advances every disposal and watchdog clock.
func (e *Engine) Process(numFrames int) []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	mix := make([]float64, numFrames)
	for _, v := range e.voices {
		v.ProcessAdd(mix)
	}
	e.sweepLocked()

	out := make([]float32, numFrames)
	for i, x := range mix {
		out[i] = float32(e.mix.masterSample(x))
	}
	for _, t := range e.taps {
		t.push(out)
	}
	return out
}

// ActiveVoices reports how many chains are currently mixed.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
