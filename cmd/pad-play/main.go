package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kiransth77/musicpad/catalog"
	"github.com/kiransth77/musicpad/engine"
	"github.com/kiransth77/musicpad/preset"
)

func main() {
	// Command-line flags
	notes := flag.String("notes", "C4,E4,G4,C5", "Comma-separated notes to arpeggiate")
	instrument := flag.String("instrument", "piano", "Catalog instrument name")
	tempo := flag.Float64("tempo", 120, "Arpeggio tempo in BPM")
	hold := flag.Float64("hold", 2.0, "Seconds to hold the final sustained note")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	flag.Parse()

	cfg := engine.Config{}
	var samples map[string]string
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
		cfg.Registry = reg
		cfg.MasterGain = settings.MasterGain
		cfg.LimiterThresholdDB = settings.LimiterThresholdDB
		cfg.GlobalVolume = settings.GlobalVolume
		cfg.MasterChorus = settings.MasterChorus
		cfg.MasterReverb = settings.MasterReverb
		samples = settings.Samples
	}

	e := engine.New(cfg)
	if err := e.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting audio: %v\n", err)
		os.Exit(1)
	}
	defer e.Close()
	for id, path := range samples {
		e.LoadSample(id, path)
	}

	e.AddLayer(engine.Layer{ID: "demo", Name: "Demo", Instrument: *instrument, Volume: 1})

	beat := time.Duration(60.0 / *tempo * float64(time.Second))
	seq := strings.Split(*notes, ",")
	fmt.Printf("Playing %s on %q at %.0f BPM...\n", *notes, *instrument, *tempo)
	for _, n := range seq {
		e.PlaySyntheticNote(strings.TrimSpace(n), "", "demo", 0.9)
		time.Sleep(beat)
	}

	// Finish on a held note with a pressure swell.
	last := strings.TrimSpace(seq[len(seq)-1])
	id := e.StartSustainedNote(last, "demo", 0.5)
	if id == "" {
		fmt.Fprintln(os.Stderr, "Error starting sustained note")
		os.Exit(1)
	}
	steps := 20
	for i := 0; i <= steps; i++ {
		e.ModulateSustainedNote(id, 0.2+0.7*float64(i)/float64(steps))
		time.Sleep(time.Duration(*hold * float64(time.Second) / float64(steps+1)))
	}
	e.StopSustainedNote(id)
	time.Sleep(1500 * time.Millisecond) // release tail
}
