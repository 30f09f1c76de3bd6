package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kiransth77/musicpad/catalog"
	"github.com/kiransth77/musicpad/export"
	"github.com/kiransth77/musicpad/preset"
)

func main() {
	// Command-line flags
	note := flag.String("note", "A4", "Note name for pitched instruments (e.g. C#4)")
	instrument := flag.String("instrument", "piano", "Catalog instrument name")
	drum := flag.String("drum", "", "Render a drum hit by family tag or name instead of a note")
	velocity := flag.Float64("velocity", 1.0, "Trigger velocity (0-1)")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	maxDuration := flag.Float64("max-duration", 10.0, "Maximum render duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", 0, "Auto-stop when block RMS falls below this dBFS (e.g. -90). Disabled by default")
	gain := flag.Float64("gain", 1.0, "Master gain applied to the bounce")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	opt := export.Options{
		SampleRate:  *sampleRate,
		Velocity:    *velocity,
		MasterGain:  *gain,
		MaxDuration: *maxDuration,
		DecayDBFS:   *decayDBFS,
	}

	if *presetPath != "" {
		settings, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		reg, err := catalog.NewRegistry(settings.Instruments)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building catalog from preset: %v\n", err)
			os.Exit(1)
		}
		opt.Registry = reg
		opt.MasterGain = settings.MasterGain
	}

	var (
		buf []float32
		err error
	)
	if *drum != "" {
		fmt.Printf("Rendering drum %q at %d Hz...\n", *drum, *sampleRate)
		buf, err = export.RenderDrum(*drum, opt)
	} else {
		fmt.Printf("Rendering %s on %q at %d Hz...\n", *note, *instrument, *sampleRate)
		buf, err = export.RenderNote(*note, *instrument, opt)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering: %v\n", err)
		os.Exit(1)
	}

	if err := export.WriteWAV(*output, buf, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %q: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d samples (%.2f s) to %s\n", len(buf), float64(len(buf))/float64(*sampleRate), *output)
}
