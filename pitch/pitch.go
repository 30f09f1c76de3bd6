// Package pitch converts between note names and frequencies using
// 12-tone equal temperament with A4 = 440 Hz.
package pitch

import (
	"fmt"
	"log"
	"math"
)

const (
	// A4Freq is the reference tuning frequency.
	A4Freq = 440.0

	// c4Freq is derived from the A4 reference: 440 * 2^(-9/12).
	c4Freq = A4Freq * 0.5946035575013605
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// semitoneFromC maps a note letter to its offset from C within an octave.
var semitoneFromC = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// NoteToFrequency converts a note name like "C#4" to a frequency in Hz.
// Malformed input returns A4 (440 Hz) and logs a warning; it never fails
// the caller.
func NoteToFrequency(note string) float64 {
	semi, ok := parseNote(note)
	if !ok {
		log.Printf("pitch: malformed note %q, defaulting to A4", note)
		return A4Freq
	}
	return frequencyForSemitone(semi)
}

// FrequencyToNote returns the name of the 12-TET note nearest to freq.
// Frequencies out of the nameable range clamp to the nearest endpoint.
func FrequencyToNote(freq float64) string {
	if freq <= 0 {
		return "A4"
	}
	semi := int(math.Round(12.0 * math.Log2(freq/c4Freq)))
	// Keep the octave digit non-negative so the name re-parses.
	minSemi := -4 * 12
	if semi < minSemi {
		semi = minSemi
	}
	octave := 4 + int(math.Floor(float64(semi)/12.0))
	offset := ((semi % 12) + 12) % 12
	return fmt.Sprintf("%s%d", noteNames[offset], octave)
}

// frequencyForSemitone converts a semitone distance from C4 to Hz.
func frequencyForSemitone(semisFromC4 int) float64 {
	return c4Freq * math.Exp2(float64(semisFromC4)/12.0)
}

// parseNote returns the semitone distance from C4 for names matching
// [A-G](#)?[0-9]+.
func parseNote(note string) (int, bool) {
	if len(note) < 2 {
		return 0, false
	}
	offset, ok := semitoneFromC[note[0]]
	if !ok {
		return 0, false
	}
	rest := note[1:]
	if rest[0] == '#' {
		offset++
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return 0, false
	}
	octave := 0
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		octave = octave*10 + int(c-'0')
	}
	return (octave-4)*12 + offset, true
}
