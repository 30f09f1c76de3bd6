package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	const sampleRate = 44100
	const freq = 440.0

	src := make([]float32, sampleRate)
	for i := range src {
		src[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}

	path := filepath.Join(t.TempDir(), "sine.wav")
	if err := WriteMono(path, src, sampleRate); err != nil {
		t.Fatalf("WriteMono: %v", err)
	}

	got, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sampleRate {
		t.Fatalf("sample rate %d, want %d", rate, sampleRate)
	}
	if len(got) != len(src) {
		t.Fatalf("frame count %d, want %d", len(got), len(src))
	}

	// 16-bit quantization allows one LSB of error per sample.
	const lsb = 1.0 / 32768.0
	for i := range got {
		if diff := math.Abs(got[i] - float64(src[i])); diff > lsb {
			t.Fatalf("sample %d differs by %.8f (> 1 LSB)", i, diff)
		}
	}
}

func TestReadMonoAveragesToExpectedLevel(t *testing.T) {
	const sampleRate = 8000
	src := make([]float32, sampleRate/10)
	for i := range src {
		src[i] = 0.25
	}
	path := filepath.Join(t.TempDir(), "dc.wav")
	if err := WriteMono(path, src, sampleRate); err != nil {
		t.Fatal(err)
	}
	got, _, err := ReadMono(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		if math.Abs(s-0.25) > 1e-3 {
			t.Fatalf("sample %d = %.5f, want ~0.25", i, s)
		}
	}
}

func TestReadMonoRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ReadMono(path); err == nil {
		t.Fatal("expected error for invalid file")
	}
	if _, _, err := ReadMono(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResamplePassThrough(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	out, err := Resample(in, 48000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if &out[0] != &in[0] {
		t.Error("matching rates should pass the buffer through")
	}
}

func TestResampleChangesLength(t *testing.T) {
	in := make([]float64, 48000)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 48000)
	}
	out, err := Resample(in, 48000, 24000)
	if err != nil {
		t.Fatal(err)
	}
	want := len(in) / 2
	if len(out) < want-64 || len(out) > want+64 {
		t.Errorf("resampled length %d, want ~%d", len(out), want)
	}
}
