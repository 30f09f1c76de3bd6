package engine

import (
	"fmt"
	"sync"

	"github.com/kiransth77/musicpad/internal/wavio"
)

// tapLimitSeconds caps how much audio a tap buffers before old samples are
// dropped, so an abandoned tap cannot grow without bound.
const tapLimitSeconds = 600

// Tap is a read-only view of the post-limiter master output. It receives
// every mixed block without altering the signal path.
type Tap struct {
	mu     sync.Mutex
	buf    []float32
	limit  int
	closed bool
}

// MasterBusTap registers and returns a tap on the master bus. The caller
// owns the tap and should Close it when done.
func (e *Engine) MasterBusTap() *Tap {
	t := &Tap{limit: tapLimitSeconds * e.sampleRate}
	e.mu.Lock()
	e.taps = append(e.taps, t)
	e.mu.Unlock()
	return t
}

func (t *Tap) push(block []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.buf = append(t.buf, block...)
	if len(t.buf) > t.limit {
		drop := len(t.buf) - t.limit
		t.buf = append(t.buf[:0], t.buf[drop:]...)
	}
}

// Drain returns the samples captured since the previous Drain and clears
// the tap's buffer.
func (t *Tap) Drain() []float32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.buf
	t.buf = nil
	return out
}

// Close detaches the tap from future pushes. The engine drops closed taps
// during its sweep.
func (t *Tap) Close() {
	t.mu.Lock()
	t.closed = true
	t.buf = nil
	t.mu.Unlock()
}

func (t *Tap) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// dropClosedTapsLocked compacts the tap list.
func (e *Engine) dropClosedTapsLocked() {
	write := 0
	for _, t := range e.taps {
		if !t.isClosed() {
			e.taps[write] = t
			write++
		}
	}
	e.taps = e.taps[:write]
}

// Recorder captures the master mix into an in-memory clip via a bus tap.
type Recorder struct {
	engine *Engine

	mu        sync.Mutex
	tap       *Tap
	clip      []float32
	recording bool
}

// NewRecorder creates a recorder bound to an engine. Nothing is captured
// until Start.
func NewRecorder(e *Engine) *Recorder {
	return &Recorder{engine: e}
}

// Start begins capturing. Starting twice restarts the clip.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tap != nil {
		r.tap.Close()
	}
	r.tap = r.engine.MasterBusTap()
	r.clip = nil
	r.recording = true
}

// Stop ends the capture and finalizes the clip.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	r.clip = append(r.clip, r.tap.Drain()...)
	r.tap.Close()
	r.tap = nil
	r.recording = false
}

// Clip returns the recorded samples. Valid after Stop; while recording it
// returns what has been captured so far.
func (r *Recorder) Clip() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording && r.tap != nil {
		r.clip = append(r.clip, r.tap.Drain()...)
	}
	out := make([]float32, len(r.clip))
	copy(out, r.clip)
	return out
}

// WriteWAV encodes the clip as 16-bit PCM at the engine's sample rate.
func (r *Recorder) WriteWAV(path string) error {
	clip := r.Clip()
	if len(clip) == 0 {
		return fmt.Errorf("recorder: empty clip")
	}
	return wavio.WriteMono(path, clip, r.engine.sampleRate)
}
