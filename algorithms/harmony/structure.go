package harmony

import (
	"fmt"
	"strings"
)

// Behavior classifies how a structure sounds
type Behavior int

const (
	BehaviorEmpty Behavior = iota
	BehaviorConsonant
	BehaviorModal
	BehaviorDissonant
)

func (b Behavior) String() string {
	switch b {
	case BehaviorEmpty:
		return "empty"
	case BehaviorConsonant:
		return "consonant"
	case BehaviorModal:
		return "modal"
	case BehaviorDissonant:
		return "dissonant"
	default:
		return "unknown"
	}
}

// MarshalText renders the behavior by name in JSON and YAML output
func (b Behavior) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Structure is a chord read out of a field. Once returned it is never
// touched by the field again.
type Structure struct {
	Tones     PitchSet `json:"tones"`
	Selection []int    `json:"selection"` // classes in activation order
	Level     int      `json:"level"`
	Behavior  Behavior `json:"behavior"`
	Code      uint64   `json:"code"`
	Shortcut  string   `json:"shortcut"`
}

// IsEmpty reports whether no tone was activated
func (s Structure) IsEmpty() bool {
	return s.Tones.IsEmpty()
}

func (s Structure) String() string {
	if s.IsEmpty() {
		return "(none)"
	}
	var b strings.Builder
	if s.Shortcut != "" {
		b.WriteString(s.Shortcut)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "%s %s", s.Tones, s.Behavior)
	return b.String()
}

// Classifier reports the descriptive fields of a structure.
// The field calls Level, Behavior, Code and Shortcut in that order.
type Classifier interface {
	Level(tones PitchSet) int
	Behavior(tones PitchSet) Behavior
	Code(tones PitchSet) uint64
	Shortcut(tones PitchSet) string
}

// Classify fills the descriptive fields of s using c, in the fixed order
// level, behavior, code, shortcut.
func Classify(c Classifier, s Structure) Structure {
	s.Level = c.Level(s.Tones)
	s.Behavior = c.Behavior(s.Tones)
	s.Code = c.Code(s.Tones)
	s.Shortcut = c.Shortcut(s.Tones)
	return s
}
