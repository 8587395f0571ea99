package analysis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
	"github.com/RyanBlaney/sonido-armonia/config"
)

// Section is an independent stretch of music, analyzed from a fresh field
type Section struct {
	Scale harmony.PitchSet
	Ticks [][]harmony.ToneEvent
}

// SectionResult holds the decisions of one section, in input position
type SectionResult struct {
	Index     int        `json:"index"`
	SessionID string     `json:"session_id"`
	Decisions []Decision `json:"decisions"`
}

// AnalyzeSections runs one session per section in parallel. Sections share
// only sys, which is read-only. workers <= 0 means GOMAXPROCS.
// The first failing section cancels the rest.
func AnalyzeSections(ctx context.Context, sys *harmony.System, cfg *config.AnalysisConfig, sections []Section, workers int) ([]SectionResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SectionResult, len(sections))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, sec := range sections {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			s, err := NewSession(sys, cfg, sec.Scale)
			if err != nil {
				return err
			}
			decisions, err := s.Run(sec.Ticks)
			if err != nil {
				return fmt.Errorf("section %d: %w", i, err)
			}
			results[i] = SectionResult{
				Index:     i,
				SessionID: s.ID(),
				Decisions: decisions,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
