package intervals

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
)

// Candidate is one scored chord shape
type Candidate struct {
	Shape    harmony.PitchSet `json:"shape"`
	Shortcut string           `json:"shortcut,omitempty"`
	Formal   Properties       `json:"formal"`
	Relation Properties       `json:"relation"`
	Blended  Properties       `json:"blended"`
	Distance float64          `json:"distance"`
}

// Selector ranks candidate shapes by how close their interval profile comes to
// a target profile. The profile of a candidate blends its own formal
// properties with the properties of the move from the previous shape.
type Selector struct {
	system     *harmony.System
	target     Properties
	weight     float64
	combine    Combinator
	classifier harmony.Classifier
	logger     logging.Logger
}

// SelectorOption customizes a Selector
type SelectorOption func(*Selector)

// WithCombinator replaces DefaultConsonance
func WithCombinator(c Combinator) SelectorOption {
	return func(s *Selector) {
		s.combine = c
	}
}

// WithNaming sets the classifier used to fill Candidate.Shortcut
func WithNaming(c harmony.Classifier) SelectorOption {
	return func(s *Selector) {
		s.classifier = c
	}
}

// NewSelector creates a selector aiming at target
func NewSelector(sys *harmony.System, target Properties, cfg config.SelectionConfig, opts ...SelectorOption) *Selector {
	s := &Selector{
		system:  sys,
		target:  target,
		weight:  cfg.RelationWeight,
		combine: DefaultConsonance,
		logger: logging.WithFields(logging.Fields{
			"component": "chord_selector",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Target returns the profile candidates are measured against
func (s *Selector) Target() Properties {
	return s.target
}

// Evaluate scores one candidate. An empty previous shape means there is no
// move to score and only the formal profile counts.
func (s *Selector) Evaluate(previous, candidate harmony.PitchSet) (Candidate, error) {
	out := Candidate{Shape: candidate}

	formal, err := New(s.system, Formal(candidate))
	if err != nil {
		return Candidate{}, fmt.Errorf("failed to build formal intervals: %w", err)
	}
	if out.Formal, err = formal.FormalProperties(s.combine); err != nil {
		return Candidate{}, err
	}

	out.Blended = out.Formal
	if !previous.IsEmpty() {
		rel, err := New(s.system, Relation(previous, candidate))
		if err != nil {
			return Candidate{}, fmt.Errorf("failed to build relation intervals: %w", err)
		}
		if out.Relation, err = rel.FormalProperties(s.combine); err != nil {
			return Candidate{}, err
		}
		out.Blended = blend(out.Formal, out.Relation, s.weight)
	}

	out.Distance = floats.Distance(s.target.Vector(), out.Blended.Vector(), 2)
	if s.classifier != nil {
		out.Shortcut = s.classifier.Shortcut(candidate)
	}
	return out, nil
}

// Score is the distance of candidate from the target; lower is better
func (s *Selector) Score(previous, candidate harmony.PitchSet) (float64, error) {
	c, err := s.Evaluate(previous, candidate)
	if err != nil {
		return 0, err
	}
	return c.Distance, nil
}

// Rank evaluates every candidate and returns them closest first. Candidates
// at the same distance keep their input order.
func (s *Selector) Rank(previous harmony.PitchSet, candidates []harmony.PitchSet) ([]Candidate, error) {
	ranked := make([]Candidate, 0, len(candidates))
	for _, shape := range candidates {
		c, err := s.Evaluate(previous, shape)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if len(ranked) > 0 {
		s.logger.Debug("Ranked candidates", logging.Fields{
			"previous":   previous.String(),
			"candidates": len(ranked),
			"best":       ranked[0].Shape.String(),
			"distance":   ranked[0].Distance,
		})
	}
	return ranked, nil
}

func blend(formal, relation Properties, weight float64) Properties {
	f := formal.Vector()
	floats.Scale(1-weight, f)
	floats.AddScaled(f, weight, relation.Vector())
	return Properties{Continuity: f[0], Impulse: f[1], Potential: f[2], Consonance: f[3]}
}
