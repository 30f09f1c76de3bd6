package engine

import (
	"log"

	"github.com/kiransth77/musicpad/internal/wavio"
)

// samplePool caches decoded, rate-converted audio buffers. Lookups that
// miss fall back to synthesis at the call site; the pool itself never
// fails a playback path.
type samplePool struct {
	buffers map[string][]float64
}

func newSamplePool() *samplePool {
	return &samplePool{buffers: make(map[string][]float64)}
}

func (p *samplePool) store(id string, buf []float64) {
	if id == "" || len(buf) == 0 {
		return
	}
	p.buffers[id] = buf
}

func (p *samplePool) lookup(id string) ([]float64, bool) {
	buf, ok := p.buffers[id]
	return buf, ok
}

// LoadSample decodes a WAV file into the pool, resampling to the engine
// rate. Best-effort: on failure the id stays absent and playback falls
// back to synthesis, so the caller gets a log line, not an error.
func (e *Engine) LoadSample(id, path string) {
	samples, rate, err := wavio.ReadMono(path)
	if err != nil {
		log.Printf("engine: sample %q load failed (will synthesize): %v", id, err)
		return
	}
	samples, err = wavio.Resample(samples, rate, e.sampleRate)
	if err != nil {
		log.Printf("engine: sample %q resample failed (will synthesize): %v", id, err)
		return
	}
	e.mu.Lock()
	e.pool.store(id, samples)
	e.mu.Unlock()
}

// HasSample reports whether the pool holds a buffer for id.
func (e *Engine) HasSample(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pool.lookup(id)
	return ok
}

// sampleVoice plays a pooled buffer once, then deactivates. The buffer is
// shared read-only with the pool; only the cursor is per-voice.
type sampleVoice struct {
	buf    []float64
	pos    int
	amp    float64
	active bool
}

func (sv *sampleVoice) Active() bool { return sv.active }

func (sv *sampleVoice) ProcessAdd(dst []float64) bool {
	if !sv.active {
		return false
	}
	for i := range dst {
		if sv.pos >= len(sv.buf) {
			sv.active = false
			return false
		}
		dst[i] += sv.buf[sv.pos] * sv.amp
		sv.pos++
	}
	return true
}
