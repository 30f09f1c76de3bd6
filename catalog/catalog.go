// Package catalog defines the immutable instrument definitions consumed by
// the synthesis engine and a static registry grouping them by category.
package catalog

import (
	"fmt"
	"sort"
)

// Family identifies the synthesis recipe for an instrument.
type Family int

const (
	FamilyKick Family = iota
	FamilySnare
	FamilyHat
	FamilyClap
	FamilyCymbal
	FamilyTom
	FamilyPitched
	FamilyNoise
)

var familyNames = map[Family]string{
	FamilyKick:    "kick",
	FamilySnare:   "snare",
	FamilyHat:     "hat",
	FamilyClap:    "clap",
	FamilyCymbal:  "cymbal",
	FamilyTom:     "tom",
	FamilyPitched: "pitched",
	FamilyNoise:   "noise",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// Tonal reports whether the family tracks a requested pitch. Kick and tom
// are tonal too: they ride a low sine whose pitch is swept for punch.
func (f Family) Tonal() bool {
	switch f {
	case FamilyKick, FamilyTom, FamilyPitched:
		return true
	}
	return false
}

// FamilyByName resolves a drum-type tag like "kick" to its family.
func FamilyByName(name string) (Family, bool) {
	for f, n := range familyNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Waveform is the oscillator shape for pitched families.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

func (w Waveform) String() string {
	switch w {
	case WaveSquare:
		return "square"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	default:
		return "sine"
	}
}

// WaveformByName resolves a waveform name; unknown names report ok=false.
func WaveformByName(name string) (Waveform, bool) {
	switch name {
	case "sine":
		return WaveSine, true
	case "square":
		return WaveSquare, true
	case "sawtooth", "saw":
		return WaveSawtooth, true
	case "triangle":
		return WaveTriangle, true
	}
	return WaveSine, false
}

// NoiseColor selects the spectrum of a noise source.
type NoiseColor int

const (
	NoiseWhite NoiseColor = iota
	NoisePink
)

// FilterType is the biquad response used for a voice filter.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterHighpass
	FilterBandpass
)

// ModTarget selects what a modulation LFO acts on.
type ModTarget int

const (
	ModVibrato ModTarget = iota
	ModTremolo
	ModFilterSweep
)

// Envelope holds ADSR parameters. Times are in seconds, sustain is a level
// in [0,1].
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Filter is an optional per-voice filter stage.
type Filter struct {
	Type   FilterType
	Cutoff float64 // Hz
	Q      float64
}

// Modulation is an optional LFO applied to a voice.
type Modulation struct {
	Target ModTarget
	RateHz float64
	Depth  float64 // normalized 0..1
}

// Instrument is an immutable synthesis definition. Many concurrent voices
// may reference the same definition.
type Instrument struct {
	Name     string
	Category string
	Family   Family

	Wave  Waveform   // pitched-oscillator, kick, tom
	Noise NoiseColor // snare, hat, clap, cymbal, noise

	Envelope Envelope
	Filter   *Filter
	Mod      *Modulation

	// Volume scales every voice of this instrument, default 1.
	Volume float64
}

// Validate checks parameter ranges. Definitions are validated once when the
// registry is built, never at play time.
func (ins *Instrument) Validate() error {
	if ins.Name == "" {
		return fmt.Errorf("instrument has no name")
	}
	if _, ok := familyNames[ins.Family]; !ok {
		return fmt.Errorf("%s: unknown family %d", ins.Name, int(ins.Family))
	}
	e := ins.Envelope
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return fmt.Errorf("%s: envelope times must be >= 0", ins.Name)
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("%s: sustain must be in [0,1]", ins.Name)
	}
	if f := ins.Filter; f != nil {
		if f.Cutoff <= 0 {
			return fmt.Errorf("%s: filter cutoff must be > 0", ins.Name)
		}
		if f.Q <= 0 {
			return fmt.Errorf("%s: filter Q must be > 0", ins.Name)
		}
	}
	if m := ins.Mod; m != nil {
		if m.RateHz <= 0 {
			return fmt.Errorf("%s: modulation rate must be > 0", ins.Name)
		}
		if m.Depth < 0 || m.Depth > 1 {
			return fmt.Errorf("%s: modulation depth must be in [0,1]", ins.Name)
		}
	}
	if ins.Volume < 0 {
		return fmt.Errorf("%s: volume must be >= 0", ins.Name)
	}
	return nil
}

// Registry is a read-only lookup over instrument definitions.
type Registry struct {
	byName     map[string]*Instrument
	byCategory map[string][]*Instrument
}

// NewRegistry validates every definition and indexes it by name and
// category. Duplicate names are rejected.
func NewRegistry(defs []Instrument) (*Registry, error) {
	r := &Registry{
		byName:     make(map[string]*Instrument, len(defs)),
		byCategory: make(map[string][]*Instrument),
	}
	for i := range defs {
		ins := defs[i]
		if ins.Volume == 0 {
			ins.Volume = 1.0
		}
		if err := ins.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.byName[ins.Name]; dup {
			return nil, fmt.Errorf("duplicate instrument %q", ins.Name)
		}
		p := &ins
		r.byName[ins.Name] = p
		r.byCategory[ins.Category] = append(r.byCategory[ins.Category], p)
	}
	return r, nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (*Instrument, bool) {
	ins, ok := r.byName[name]
	return ins, ok
}

// Category returns the definitions in a category, in registration order.
func (r *Registry) Category(name string) []*Instrument {
	return r.byCategory[name]
}

// Names returns all instrument names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Categories returns all category names, sorted.
func (r *Registry) Categories() []string {
	cats := make([]string, 0, len(r.byCategory))
	for c := range r.byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}
