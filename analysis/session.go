package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
)

// Decision is the chord read out of the field for ticks [Start, End)
type Decision struct {
	Start     int               `json:"start"`
	End       int               `json:"end"`
	Structure harmony.Structure `json:"structure"`

	// Change is the tonal-centroid distance from the last non-empty decision
	// of the session; 0 for the first one and outside the 12-tone ring
	Change float64 `json:"change"`
}

// Session drives one harmonic field over a chronological tick stream.
// It resets the field at section boundaries and reads a structure every
// DecisionTicks ticks. A Session is not safe for concurrent use.
type Session struct {
	id     string
	field  *harmony.Field
	cfg    config.SessionConfig
	scale  harmony.PitchSet
	logger logging.Logger

	tick      int // ticks fed so far
	openSince int // first tick not yet covered by a decision
	decisions []Decision
	last      harmony.PitchSet // tones of the last non-empty decision
}

// NewSession creates a session over sys with the given scale. cfg is validated.
func NewSession(sys *harmony.System, cfg *config.AnalysisConfig, scale harmony.PitchSet) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultAnalysisConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sys == nil {
		return nil, fmt.Errorf("%w: no harmonic system", harmony.ErrConfigurationMismatch)
	}

	id := uuid.New().String()
	logger := logging.WithFields(logging.Fields{
		"component":  "analysis_session",
		"session_id": id,
	})

	field := harmony.NewField(sys, cfg.Field,
		harmony.WithHarmonizeConfig(cfg.Harmonize),
		harmony.WithLogger(logger.WithFields(logging.Fields{"component": "harmonic_field"})),
	)
	if err := field.Reset(scale); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	logger.Debug("Analysis session started", logging.Fields{
		"order":          sys.Order(),
		"scale":          scale.String(),
		"decision_ticks": cfg.Session.DecisionTicks,
		"section_ticks":  cfg.Session.SectionTicks,
		"full":           cfg.Session.FullHarmonization,
	})

	return &Session{
		id:     id,
		field:  field,
		cfg:    cfg.Session,
		scale:  scale,
		logger: logger,
	}, nil
}

// ID identifies the session in logs
func (s *Session) ID() string {
	return s.id
}

// Ticks is the number of ticks fed so far
func (s *Session) Ticks() int {
	return s.tick
}

// Scale is the scale mask the field was last reset with
func (s *Session) Scale() harmony.PitchSet {
	return s.scale
}

// Bands returns a snapshot of the field's bands
func (s *Session) Bands() []harmony.Band {
	return s.field.Bands()
}

// Feed advances the session by one tick. It fails only when the field can no
// longer be reset onto the session's scale at a section boundary.
func (s *Session) Feed(tones []harmony.ToneEvent) error {
	if s.cfg.SectionTicks > 0 && s.tick > 0 && s.tick%s.cfg.SectionTicks == 0 {
		s.Flush()
		if err := s.field.Reset(s.scale); err != nil {
			return fmt.Errorf("section boundary at tick %d: %w", s.tick, err)
		}
		s.logger.Debug("Section boundary", logging.Fields{"tick": s.tick})
	}

	s.field.AcceptTonesOfTick(tones)
	s.tick++

	if s.tick-s.openSince >= s.cfg.DecisionTicks {
		s.decide()
	}
	return nil
}

// Flush decides the ticks fed since the last decision, if any
func (s *Session) Flush() {
	if s.tick > s.openSince {
		s.decide()
	}
}

// Modulate closes the pending window and restarts the field on a new scale
func (s *Session) Modulate(scale harmony.PitchSet) error {
	if scale.Order() != s.scale.Order() {
		return fmt.Errorf("%w: scale mask has order %d, session has order %d",
			harmony.ErrConfigurationMismatch, scale.Order(), s.scale.Order())
	}
	s.Flush()
	if err := s.field.Reset(scale); err != nil {
		return err
	}
	s.scale = scale
	s.logger.Debug("Modulated", logging.Fields{"tick": s.tick, "scale": scale.String()})
	return nil
}

// Run feeds every tick in order, flushes, and returns all decisions.
// On error the decisions taken before the failing tick are returned.
func (s *Session) Run(ticks [][]harmony.ToneEvent) ([]Decision, error) {
	for _, tones := range ticks {
		if err := s.Feed(tones); err != nil {
			return s.Decisions(), err
		}
	}
	s.Flush()
	return s.Decisions(), nil
}

// Decisions returns a copy of the decisions taken so far
func (s *Session) Decisions() []Decision {
	return append([]Decision(nil), s.decisions...)
}

func (s *Session) decide() {
	st := s.field.DetermineStructure(s.cfg.MaxTones, s.cfg.FullHarmonization)
	d := Decision{Start: s.openSince, End: s.tick, Structure: st}
	if !st.IsEmpty() {
		d.Change = harmony.HarmonicChange(s.last, st.Tones)
		s.last = st.Tones
	}
	s.decisions = append(s.decisions, d)
	s.openSince = s.tick

	s.logger.Debug("Decision", logging.Fields{
		"start":    d.Start,
		"end":      d.End,
		"tones":    st.Tones.String(),
		"shortcut": st.Shortcut,
		"behavior": st.Behavior.String(),
		"change":   d.Change,
	})

	if s.cfg.ForgetAfterDecision {
		s.field.Forget()
	}
}
