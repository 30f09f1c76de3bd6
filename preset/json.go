package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kiransth77/musicpad/catalog"
)

// File is the JSON schema for pad presets.
type File struct {
	MasterGain         *float64                     `json:"master_gain"`
	LimiterThresholdDB *float64                     `json:"limiter_threshold_db"`
	GlobalVolume       *float64                     `json:"global_volume"`
	MasterChorus       *bool                        `json:"master_chorus"`
	MasterReverb       *bool                        `json:"master_reverb"`
	Samples            map[string]string            `json:"samples"`
	Instruments        map[string]InstrumentSetting `json:"instruments"`
}

// InstrumentSetting is a partial override entry applied onto a catalog
// instrument of the same name.
type InstrumentSetting struct {
	Volume  *float64 `json:"volume"`
	Attack  *float64 `json:"attack"`
	Decay   *float64 `json:"decay"`
	Sustain *float64 `json:"sustain"`
	Release *float64 `json:"release"`
	Filter  *string  `json:"filter"`
	Cutoff  *float64 `json:"cutoff"`
	Q       *float64 `json:"q"`
}

// Settings is a preset resolved against the built-in catalog, ready to
// hand to the engine.
type Settings struct {
	MasterGain         float64
	LimiterThresholdDB float64
	GlobalVolume       float64
	MasterChorus       bool
	MasterReverb       bool
	Samples            map[string]string // id -> WAV path
	Instruments        []catalog.Instrument
}

// NewDefaultSettings returns the engine defaults with the built-in catalog.
func NewDefaultSettings() *Settings {
	return &Settings{
		MasterGain:         1.4,
		LimiterThresholdDB: -0.3,
		GlobalVolume:       1,
		Instruments:        builtinInstruments(),
	}
}

func builtinInstruments() []catalog.Instrument {
	reg := catalog.Builtin()
	names := reg.Names()
	out := make([]catalog.Instrument, 0, len(names))
	for _, name := range names {
		def, _ := reg.Lookup(name)
		out = append(out, *def)
	}
	return out
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
// Relative sample paths are resolved against the preset file's directory.
func LoadJSON(path string) (*Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	s := NewDefaultSettings()
	if err := ApplyFile(s, &f); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for id, p := range s.Samples {
		if !filepath.IsAbs(p) {
			s.Samples[id] = filepath.Clean(filepath.Join(base, p))
		}
	}
	return s, nil
}

// ApplyFile applies a parsed preset file onto existing settings.
func ApplyFile(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.MasterGain != nil {
		if *f.MasterGain <= 0 {
			return fmt.Errorf("master_gain must be > 0")
		}
		dst.MasterGain = *f.MasterGain
	}
	if f.LimiterThresholdDB != nil {
		if *f.LimiterThresholdDB > 0 {
			return fmt.Errorf("limiter_threshold_db must be <= 0")
		}
		dst.LimiterThresholdDB = *f.LimiterThresholdDB
	}
	if f.GlobalVolume != nil {
		if *f.GlobalVolume < 0 || *f.GlobalVolume > 1 {
			return fmt.Errorf("global_volume must be in [0,1]")
		}
		dst.GlobalVolume = *f.GlobalVolume
	}
	if f.MasterChorus != nil {
		dst.MasterChorus = *f.MasterChorus
	}
	if f.MasterReverb != nil {
		dst.MasterReverb = *f.MasterReverb
	}

	if len(f.Samples) > 0 {
		if dst.Samples == nil {
			dst.Samples = make(map[string]string)
		}
		for id, p := range f.Samples {
			if strings.TrimSpace(id) == "" || strings.TrimSpace(p) == "" {
				return fmt.Errorf("samples entries need a non-empty id and path")
			}
			dst.Samples[strings.TrimSpace(id)] = strings.TrimSpace(p)
		}
	}

	if len(f.Instruments) == 0 {
		return nil
	}

	keys := make([]string, 0, len(f.Instruments))
	for k := range f.Instruments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		idx := -1
		for i := range dst.Instruments {
			if dst.Instruments[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown instrument %q", name)
		}
		if err := applyInstrument(&dst.Instruments[idx], name, f.Instruments[name]); err != nil {
			return err
		}
	}
	return nil
}

func applyInstrument(dst *catalog.Instrument, name string, o InstrumentSetting) error {
	if o.Volume != nil {
		if *o.Volume <= 0 || *o.Volume > 1 {
			return fmt.Errorf("instruments[%s].volume must be in (0,1]", name)
		}
		dst.Volume = *o.Volume
	}
	if o.Attack != nil {
		if *o.Attack < 0 {
			return fmt.Errorf("instruments[%s].attack must be >= 0", name)
		}
		dst.Envelope.Attack = *o.Attack
	}
	if o.Decay != nil {
		if *o.Decay < 0 {
			return fmt.Errorf("instruments[%s].decay must be >= 0", name)
		}
		dst.Envelope.Decay = *o.Decay
	}
	if o.Sustain != nil {
		if *o.Sustain < 0 || *o.Sustain > 1 {
			return fmt.Errorf("instruments[%s].sustain must be in [0,1]", name)
		}
		dst.Envelope.Sustain = *o.Sustain
	}
	if o.Release != nil {
		if *o.Release < 0 {
			return fmt.Errorf("instruments[%s].release must be >= 0", name)
		}
		dst.Envelope.Release = *o.Release
	}

	if o.Filter != nil || o.Cutoff != nil || o.Q != nil {
		if dst.Filter == nil {
			dst.Filter = &catalog.Filter{Type: catalog.FilterLowpass, Cutoff: 1000, Q: 0.707}
		} else {
			// The catalog defaults share filter pointers; copy before editing.
			cp := *dst.Filter
			dst.Filter = &cp
		}
		if o.Filter != nil {
			ft, ok := filterTypeByName(*o.Filter)
			if !ok {
				return fmt.Errorf("instruments[%s].filter %q is not lowpass/highpass/bandpass", name, *o.Filter)
			}
			dst.Filter.Type = ft
		}
		if o.Cutoff != nil {
			if *o.Cutoff <= 0 {
				return fmt.Errorf("instruments[%s].cutoff must be > 0", name)
			}
			dst.Filter.Cutoff = *o.Cutoff
		}
		if o.Q != nil {
			if *o.Q <= 0 {
				return fmt.Errorf("instruments[%s].q must be > 0", name)
			}
			dst.Filter.Q = *o.Q
		}
	}
	return dst.Validate()
}

func filterTypeByName(name string) (catalog.FilterType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowpass":
		return catalog.FilterLowpass, true
	case "highpass":
		return catalog.FilterHighpass, true
	case "bandpass":
		return catalog.FilterBandpass, true
	}
	return 0, false
}
