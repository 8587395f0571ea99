package intervals

import (
	"fmt"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
)

func checkOrder(sys *harmony.System, shapes ...harmony.PitchSet) error {
	if sys == nil {
		return fmt.Errorf("%w: no harmonic system", harmony.ErrConfigurationMismatch)
	}
	for _, s := range shapes {
		if s.Order() != sys.Order() {
			return fmt.Errorf("%w: shape %s has order %d, system has order %d",
				harmony.ErrConfigurationMismatch, s, s.Order(), sys.Order())
		}
	}
	return nil
}

// FormalTo collects the intervals of shape that end on target: every on
// element below target contributes one interval. Each unordered pair inside a
// shape is therefore seen once, and never against itself.
func FormalTo(shape harmony.PitchSet, target int) BuildFunc {
	return func(sys *harmony.System) ([]harmony.Interval, error) {
		if err := checkOrder(sys, shape); err != nil {
			return nil, err
		}
		return formalTo(sys, shape, common.Wrap(target, sys.Order())), nil
	}
}

// Formal collects the intervals of shape with every on element as target in turn
func Formal(shape harmony.PitchSet) BuildFunc {
	return func(sys *harmony.System) ([]harmony.Interval, error) {
		if err := checkOrder(sys, shape); err != nil {
			return nil, err
		}
		var out []harmony.Interval
		for _, e := range shape.Elements() {
			out = append(out, formalTo(sys, shape, e)...)
		}
		return out, nil
	}
}

func formalTo(sys *harmony.System, shape harmony.PitchSet, target int) []harmony.Interval {
	var out []harmony.Interval
	for _, f := range shape.Elements() {
		if target-f > 0 {
			out = append(out, sys.Interval(f, target))
		}
	}
	return out
}

// sounding is a true tone with the ordinal it was given among the tick's
// true tones
type sounding struct {
	ordinal int
	class   int
}

func soundingTones(sys *harmony.System, tones []harmony.ToneEvent) []sounding {
	out := make([]sounding, 0, len(tones))
	for _, t := range tones {
		if t.IsTrueTone() {
			out = append(out, sounding{ordinal: len(out), class: common.Wrap(t.Pitch, sys.Order())})
		}
	}
	return out
}

// RealTo collects the intervals from every sounding tone to the target tone.
// target is the ordinal of the target among the true tones. Tones sharing the
// target's pitch class are skipped.
func RealTo(tones []harmony.ToneEvent, target int) BuildFunc {
	return func(sys *harmony.System) ([]harmony.Interval, error) {
		if err := checkOrder(sys); err != nil {
			return nil, err
		}
		snd := soundingTones(sys, tones)
		if target < 0 || target >= len(snd) {
			return nil, fmt.Errorf("target tone %d out of range: %d true tones", target, len(snd))
		}
		return realTo(sys, snd, snd[target]), nil
	}
}

// Real collects the intervals of the sounding tones with every tone as target in turn
func Real(tones []harmony.ToneEvent) BuildFunc {
	return func(sys *harmony.System) ([]harmony.Interval, error) {
		if err := checkOrder(sys); err != nil {
			return nil, err
		}
		snd := soundingTones(sys, tones)
		var out []harmony.Interval
		for _, target := range snd {
			out = append(out, realTo(sys, snd, target)...)
		}
		return out, nil
	}
}

func realTo(sys *harmony.System, snd []sounding, target sounding) []harmony.Interval {
	// a lone tone has no ordinal to compare and no partner
	if len(snd) < 2 {
		return nil
	}
	var out []harmony.Interval
	for _, s := range snd {
		if s.ordinal == target.ordinal || s.class == target.class {
			continue
		}
		out = append(out, sys.Interval(s.class, target.class))
	}
	return out
}

// Relation collects every interval from an element of from to an element of
// to, unfiltered. It scores the move between two shapes rather than the
// cohesion of either.
func Relation(from, to harmony.PitchSet) BuildFunc {
	return func(sys *harmony.System) ([]harmony.Interval, error) {
		if err := checkOrder(sys, from, to); err != nil {
			return nil, err
		}
		var out []harmony.Interval
		for _, e := range to.Elements() {
			for _, f := range from.Elements() {
				out = append(out, sys.Interval(f, e))
			}
		}
		return out, nil
	}
}
