package harmony

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// Note names for the 12-tone ring (0=C, 1=C#, ..., 11=B)
var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Scale step patterns, as intervals from the tonic
var (
	majorSteps         = []int{0, 2, 4, 5, 7, 9, 11}
	naturalMinorSteps  = []int{0, 2, 3, 5, 7, 8, 10}
	harmonicMinorSteps = []int{0, 2, 3, 5, 7, 8, 11}
	chromaticSteps     = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
)

var scaleModes = map[string][]int{
	"major":          majorSteps,
	"ionian":         majorSteps,
	"minor":          naturalMinorSteps,
	"aeolian":        naturalMinorSteps,
	"natural-minor":  naturalMinorSteps,
	"harmonic-minor": harmonicMinorSteps,
	"chromatic":      chromaticSteps,
}

// NoteName returns the 12-tone name of a pitch class (reduced modulo 12)
func NoteName(pc int) string {
	return pitchClassNames[common.Wrap(pc, 12)]
}

// ParseNoteName maps "C", "c#", "Db", "E#" and similar to a 12-tone pitch class
func ParseNoteName(name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("empty note name")
	}

	var pc int
	switch strings.ToUpper(name[:1]) {
	case "C":
		pc = 0
	case "D":
		pc = 2
	case "E":
		pc = 4
	case "F":
		pc = 5
	case "G":
		pc = 7
	case "A":
		pc = 9
	case "B":
		pc = 11
	default:
		return 0, fmt.Errorf("unknown note name %q", name)
	}

	for _, r := range name[1:] {
		switch r {
		case '#', '♯':
			pc++
		case 'b', '♭':
			pc--
		default:
			return 0, fmt.Errorf("unknown accidental in note name %q", name)
		}
	}
	return common.Wrap(pc, 12), nil
}

// MajorScale returns the 12-tone major scale on root
func MajorScale(root int) PitchSet {
	return NewPitchSet(12, majorSteps...).Transpose(root)
}

// NaturalMinorScale returns the 12-tone natural minor scale on root
func NaturalMinorScale(root int) PitchSet {
	return NewPitchSet(12, naturalMinorSteps...).Transpose(root)
}

// ParseScale reads "C major", "f# minor", "Bb harmonic-minor" or "chromatic".
// Scales are defined on the 12-tone ring only.
func ParseScale(text string) (PitchSet, error) {
	fields := strings.Fields(strings.ToLower(text))
	switch len(fields) {
	case 1:
		if fields[0] == "chromatic" {
			return FullPitchSet(12), nil
		}
		return PitchSet{}, fmt.Errorf("scale %q needs a tonic and a mode", text)
	case 2:
	default:
		return PitchSet{}, fmt.Errorf("cannot parse scale %q", text)
	}

	root, err := ParseNoteName(fields[0])
	if err != nil {
		return PitchSet{}, fmt.Errorf("cannot parse scale %q: %w", text, err)
	}
	steps, ok := scaleModes[fields[1]]
	if !ok {
		return PitchSet{}, fmt.Errorf("unknown mode %q", fields[1])
	}
	return NewPitchSet(12, steps...).Transpose(root), nil
}
