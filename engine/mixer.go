package engine

import (
	"github.com/cwbudde/algo-dsp/dsp/effects"
)

// Layer is a named mixer channel. While any layer is soloed, triggers on
// non-solo layers are silenced; Effects is advisory metadata for the UI.
//
// A zero Volume means "unset" and gets the unity default when the layer
// is added. Silencing a layer goes through Muted, not a zero fader.
type Layer struct {
	ID         string
	Name       string
	Instrument string // catalog instrument name played by this layer
	Volume     float64
	Muted      bool
	Solo       bool
	Effects    []string
}

// mixer owns the layer map and the shared master chain:
// master gain → [chorus] → [reverb] → limiter → output.
type mixer struct {
	layers map[string]*Layer

	masterGain float64
	chorus     *effects.Chorus
	reverb     *effects.Reverb
	limiter    *effects.Limiter
}

func newMixer(sampleRate int, cfg Config) (*mixer, error) {
	lim, err := effects.NewLimiter(float64(sampleRate))
	if err != nil {
		return nil, err
	}
	if err := lim.SetThreshold(limiterCeilingDB(cfg.LimiterThresholdDB)); err != nil {
		return nil, err
	}
	if err := lim.SetRelease(cfg.LimiterReleaseMs); err != nil {
		return nil, err
	}
	m := &mixer{
		layers:     make(map[string]*Layer),
		masterGain: cfg.MasterGain,
		limiter:    lim,
	}
	if cfg.MasterChorus {
		chorus, err := effects.NewChorus()
		if err != nil {
			return nil, err
		}
		if err := chorus.SetSampleRate(float64(sampleRate)); err != nil {
			return nil, err
		}
		if err := chorus.SetMix(0.18); err != nil {
			return nil, err
		}
		if err := chorus.SetDepth(0.003); err != nil {
			return nil, err
		}
		if err := chorus.SetSpeedHz(0.35); err != nil {
			return nil, err
		}
		m.chorus = chorus
	}
	if cfg.MasterReverb {
		reverb := effects.NewReverb()
		reverb.SetWet(0.2)
		reverb.SetDry(1.0)
		reverb.SetRoomSize(0.6)
		reverb.SetDamp(0.45)
		reverb.SetGain(0.015)
		m.reverb = reverb
	}
	return m, nil
}

func (m *mixer) addLayer(l Layer) {
	if l.ID == "" {
		return
	}
	if l.Volume == 0 {
		l.Volume = 1 // unset fader, see the Layer doc
	}
	m.layers[l.ID] = &l
}

// removeLayer is a no-op for unknown ids.
func (m *mixer) removeLayer(id string) {
	delete(m.layers, id)
}

func (m *mixer) layer(id string) (*Layer, bool) {
	l, ok := m.layers[id]
	return l, ok
}

func (m *mixer) updateVolume(id string, v float64) {
	if l, ok := m.layers[id]; ok && v >= 0 {
		l.Volume = v
	}
}

func (m *mixer) toggleMute(id string) {
	if l, ok := m.layers[id]; ok {
		l.Muted = !l.Muted
	}
}

func (m *mixer) toggleSolo(id string) {
	if l, ok := m.layers[id]; ok {
		l.Solo = !l.Solo
	}
}

func (m *mixer) anySolo() bool {
	for _, l := range m.layers {
		if l.Solo {
			return true
		}
	}
	return false
}

// limiterCeilingDB keeps the limiter a ceiling: thresholds above 0 dBFS
// make no sense for a clip guard.
func limiterCeilingDB(db float64) float64 {
	if db > 0 {
		return 0
	}
	return db
}

// masterSample runs one summed sample through the master chain. The final
// clamp catches what slips through the limiter's attack window.
func (m *mixer) masterSample(x float64) float64 {
	x *= m.masterGain
	if m.chorus != nil {
		x = m.chorus.ProcessSample(x)
	}
	if m.reverb != nil {
		x = m.reverb.ProcessSample(x)
	}
	x = m.limiter.ProcessSample(x)
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return x
}
