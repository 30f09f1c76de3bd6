// Package export renders notes and drum hits offline and writes them as
// 16-bit mono WAV files. It drives the same mixer and chain code the live
// engine uses, against a silent output backend.
package export

import (
	"fmt"
	"math"

	"github.com/kiransth77/musicpad/catalog"
	"github.com/kiransth77/musicpad/engine"
	"github.com/kiransth77/musicpad/internal/wavio"
)

const renderLayerID = "render"

// Options controls an offline render.
type Options struct {
	SampleRate  int     // default 44100
	Velocity    float64 // default 1.0
	MasterGain  float64 // default 1.0, headroom-friendly for bounces
	MaxDuration float64 // seconds, default 10; hard stop for long tails

	// DecayDBFS stops the render early once block RMS stays below this
	// level. Zero disables early stop.
	DecayDBFS float64

	Registry *catalog.Registry // default catalog.Builtin()
}

func (o *Options) fillDefaults() {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.Velocity <= 0 {
		o.Velocity = 1.0
	}
	if o.MasterGain <= 0 {
		o.MasterGain = 1.0
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 10
	}
	if o.Registry == nil {
		o.Registry = catalog.Builtin()
	}
}

// RenderNote renders a single one-shot note on the named instrument.
func RenderNote(note, instrument string, opt Options) ([]float32, error) {
	opt.fillDefaults()
	if _, ok := opt.Registry.Lookup(instrument); !ok {
		return nil, fmt.Errorf("unknown instrument %q", instrument)
	}
	return render(opt, func(e *engine.Engine) {
		e.PlaySyntheticNote(note, instrument, renderLayerID, opt.Velocity)
	})
}

// RenderDrum renders a single drum hit by family tag or catalog name.
func RenderDrum(drumType string, opt Options) ([]float32, error) {
	opt.fillDefaults()
	if _, ok := opt.Registry.Lookup(drumType); !ok {
		if _, found := catalog.FamilyByName(drumType); !found {
			return nil, fmt.Errorf("unknown drum %q", drumType)
		}
	}
	return render(opt, func(e *engine.Engine) {
		e.PlaySample(drumType, renderLayerID, opt.Velocity)
	})
}

func render(opt Options, trigger func(*engine.Engine)) ([]float32, error) {
	e := engine.New(engine.Config{
		SampleRate: opt.SampleRate,
		Registry:   opt.Registry,
		MasterGain: opt.MasterGain,
		Output:     engine.NullOutputFactory,
	})
	if err := e.Initialize(); err != nil {
		return nil, err
	}
	defer e.Close()

	e.AddLayer(engine.Layer{ID: renderLayerID, Name: "Render", Volume: 1})
	trigger(e)
	if e.ActiveVoices() == 0 {
		return nil, fmt.Errorf("trigger produced no chain")
	}

	const blockSize = 256
	maxFrames := int(opt.MaxDuration * float64(opt.SampleRate))
	out := make([]float32, 0, maxFrames)

	for len(out) < maxFrames {
		block := e.Process(blockSize)
		out = append(out, block...)
		if e.ActiveVoices() == 0 {
			break
		}
		if opt.DecayDBFS != 0 && blockDBFS(block) < opt.DecayDBFS {
			break
		}
	}
	if len(out) > maxFrames {
		out = out[:maxFrames]
	}
	return out, nil
}

func blockDBFS(block []float32) float64 {
	var sum float64
	for _, s := range block {
		v := float64(s)
		sum += v * v
	}
	if sum == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(math.Sqrt(sum/float64(len(block))))
}

// WriteWAV writes a rendered buffer as a 16-bit mono WAV file.
func WriteWAV(path string, buf []float32, sampleRate int) error {
	if len(buf) == 0 {
		return fmt.Errorf("nothing to write")
	}
	return wavio.WriteMono(path, buf, sampleRate)
}
