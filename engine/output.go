package engine

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"
)

// Output is the audio device behind the master bus. The engine drives its
// run-state machine through this interface; tests swap in a null output.
type Output interface {
	Start() error
	Suspend() error
	Resume() error
	Close() error
}

// OutputFactory builds an Output during Initialize. The factory receives
// the engine so pull-based backends can read the mixed stream.
type OutputFactory func(e *Engine, sampleRate int) (Output, error)

// otoOutput plays the master bus through an oto/v3 context, one mono
// float32 stream pulled via the reader.
type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player
}

func newOtoOutput(e *Engine, sampleRate int) (Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	o := &otoOutput{ctx: ctx}
	o.player = ctx.NewPlayer(&engineReader{engine: e})
	return o, nil
}

func (o *otoOutput) Start() error {
	o.player.Play()
	return nil
}

func (o *otoOutput) Suspend() error { return o.ctx.Suspend() }
func (o *otoOutput) Resume() error  { return o.ctx.Resume() }

func (o *otoOutput) Close() error {
	return o.player.Close()
}

// engineReader adapts the engine's block renderer to oto's pull model.
type engineReader struct {
	engine *Engine
}

func (r *engineReader) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	samples := r.engine.Process(frames)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return frames * 4, nil
}

// nullOutput satisfies Output without a device. Used by tests and offline
// tooling; Resume failures can be injected to exercise the retry path.
type nullOutput struct {
	suspended  bool
	failResume bool
}

func (n *nullOutput) Start() error   { return nil }
func (n *nullOutput) Suspend() error { n.suspended = true; return nil }
func (n *nullOutput) Resume() error {
	if n.failResume {
		return errResumeFailed
	}
	n.suspended = false
	return nil
}
func (n *nullOutput) Close() error { return nil }

// NullOutputFactory builds an engine with no audio device; Process must be
// driven by the caller. Offline tools and tests use this.
func NullOutputFactory(e *Engine, sampleRate int) (Output, error) {
	return &nullOutput{}, nil
}
