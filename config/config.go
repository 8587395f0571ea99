package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid analysis config")

// FieldConfig selects the propagation rules of a harmonic field
type FieldConfig struct {
	// Time decay moves every band DecayStep toward zero at the start of each tick
	TimeDecay bool    `json:"time_decay" yaml:"time_decay"`
	DecayStep float64 `json:"decay_step" yaml:"decay_step"`

	// Main influence masks the ±1 neighbors and floors the ±2 neighbors of a hit band
	MainInfluence bool `json:"main_influence" yaml:"main_influence"`

	// Continuity to tonic pulls negative -7/-4 neighbors back toward zero
	ContinuityToTonic bool `json:"continuity_to_tonic" yaml:"continuity_to_tonic"`

	// Strong impulse uses factors 1/2 instead of 3/6
	StrongImpulse bool `json:"strong_impulse" yaml:"strong_impulse"`

	// NeighborFloor is the small positive floor applied to ±2 neighbors
	NeighborFloor float64 `json:"neighbor_floor" yaml:"neighbor_floor"`
}

// HarmonizeConfig holds the thresholds used when reading a structure out of a field
type HarmonizeConfig struct {
	SimpleThreshold     float64 `json:"simple_threshold" yaml:"simple_threshold"`         // simple mode: band must exceed this
	QualifyingThreshold float64 `json:"qualifying_threshold" yaml:"qualifying_threshold"` // full mode: preferred picks exceed this
	PermissiveFloor     float64 `json:"permissive_floor" yaml:"permissive_floor"`         // full mode: fallback picks exceed this
}

// SessionConfig drives an analysis session over a tick stream
type SessionConfig struct {
	DecisionTicks       int  `json:"decision_ticks" yaml:"decision_ticks"` // ticks between structure decisions
	SectionTicks        int  `json:"section_ticks" yaml:"section_ticks"`   // ticks between resets, 0 disables
	ForgetAfterDecision bool `json:"forget_after_decision" yaml:"forget_after_decision"`
	MaxTones            int  `json:"max_tones" yaml:"max_tones"`
	FullHarmonization   bool `json:"full_harmonization" yaml:"full_harmonization"`
}

// SelectionConfig weights the chord selection score
type SelectionConfig struct {
	// RelationWeight blends the relation to the previous shape into the candidate profile (0-1)
	RelationWeight float64 `json:"relation_weight" yaml:"relation_weight"`
}

// AnalysisConfig is the full configuration file
type AnalysisConfig struct {
	Field     FieldConfig     `json:"field" yaml:"field"`
	Harmonize HarmonizeConfig `json:"harmonize" yaml:"harmonize"`
	Session   SessionConfig   `json:"session" yaml:"session"`
	Selection SelectionConfig `json:"selection" yaml:"selection"`
}

// DefaultFieldConfig enables every influence with normal (non-strong) impulse
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		TimeDecay:         true,
		DecayStep:         0.1,
		MainInfluence:     true,
		ContinuityToTonic: true,
		StrongImpulse:     false,
		NeighborFloor:     0.01,
	}
}

// DefaultHarmonizeConfig returns the stock structure thresholds
func DefaultHarmonizeConfig() HarmonizeConfig {
	return HarmonizeConfig{
		SimpleThreshold:     0.1,
		QualifyingThreshold: 10.0,
		PermissiveFloor:     -10.0,
	}
}

// DefaultAnalysisConfig returns sensible defaults for a whole session
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Field:     DefaultFieldConfig(),
		Harmonize: DefaultHarmonizeConfig(),
		Session: SessionConfig{
			DecisionTicks:       4,
			SectionTicks:        0,
			ForgetAfterDecision: true,
			MaxTones:            4,
			FullHarmonization:   false,
		},
		Selection: SelectionConfig{
			RelationWeight: 0.5,
		},
	}
}

// StrongImpulseFieldConfig is the field config for passages that need sharper masking
func StrongImpulseFieldConfig() FieldConfig {
	cfg := DefaultFieldConfig()
	cfg.StrongImpulse = true
	return cfg
}

// Validate checks ranges and cross-field constraints
func (c *AnalysisConfig) Validate() error {
	if c.Field.DecayStep < 0 {
		return fmt.Errorf("%w: field.decay_step must be >= 0, got %v", ErrInvalidConfig, c.Field.DecayStep)
	}
	if c.Field.NeighborFloor < 0 {
		return fmt.Errorf("%w: field.neighbor_floor must be >= 0, got %v", ErrInvalidConfig, c.Field.NeighborFloor)
	}
	// a floored neighbor must never pass the simple threshold on its own
	if c.Field.NeighborFloor >= c.Harmonize.SimpleThreshold {
		return fmt.Errorf("%w: field.neighbor_floor (%v) must be below harmonize.simple_threshold (%v)",
			ErrInvalidConfig, c.Field.NeighborFloor, c.Harmonize.SimpleThreshold)
	}
	if c.Harmonize.PermissiveFloor >= c.Harmonize.QualifyingThreshold {
		return fmt.Errorf("%w: harmonize.permissive_floor (%v) must be below harmonize.qualifying_threshold (%v)",
			ErrInvalidConfig, c.Harmonize.PermissiveFloor, c.Harmonize.QualifyingThreshold)
	}
	if c.Session.DecisionTicks <= 0 {
		return fmt.Errorf("%w: session.decision_ticks must be > 0, got %d", ErrInvalidConfig, c.Session.DecisionTicks)
	}
	if c.Session.SectionTicks < 0 {
		return fmt.Errorf("%w: session.section_ticks must be >= 0, got %d", ErrInvalidConfig, c.Session.SectionTicks)
	}
	if c.Session.MaxTones < 0 {
		return fmt.Errorf("%w: session.max_tones must be >= 0, got %d", ErrInvalidConfig, c.Session.MaxTones)
	}
	if c.Selection.RelationWeight < 0 || c.Selection.RelationWeight > 1 {
		return fmt.Errorf("%w: selection.relation_weight must be within [0, 1], got %v", ErrInvalidConfig, c.Selection.RelationWeight)
	}
	return nil
}

// Load reads a YAML config on top of the defaults; keys missing from the file keep
// their default value and unknown keys are rejected.
func Load(path string) (*AnalysisConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := DefaultAnalysisConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// an empty file decodes to io.EOF and means "all defaults"
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
