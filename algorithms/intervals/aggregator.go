package intervals

import (
	"math"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
)

// BuildFunc produces the interval collection an Aggregator averages over.
// The formal, real and relation analyses differ only in their BuildFunc.
type BuildFunc func(sys *harmony.System) ([]harmony.Interval, error)

// Combinator derives consonance from continuity and impulse. It must be pure
// and total.
type Combinator func(continuity, impulse float64) float64

// DefaultConsonance rewards continuity and charges half the impulse
func DefaultConsonance(continuity, impulse float64) float64 {
	return continuity - impulse/2
}

// Properties are the four aggregate values of an interval collection
type Properties struct {
	Continuity float64 `json:"continuity"`
	Impulse    float64 `json:"impulse"`
	Potential  float64 `json:"potential"`
	Consonance float64 `json:"consonance"`
}

// Vector returns the properties in a fixed order for distance computations
func (p Properties) Vector() []float64 {
	return []float64{p.Continuity, p.Impulse, p.Potential, p.Consonance}
}

// Aggregator computes property means over one interval collection.
// It is not safe for concurrent use; the System it reads from is.
type Aggregator struct {
	intervals []harmony.Interval
}

// New runs build against sys and keeps the result
func New(sys *harmony.System, build BuildFunc) (*Aggregator, error) {
	ivs, err := build(sys)
	if err != nil {
		return nil, err
	}
	return &Aggregator{intervals: ivs}, nil
}

// FromIntervals wraps an existing collection
func FromIntervals(ivs []harmony.Interval) *Aggregator {
	return &Aggregator{intervals: append([]harmony.Interval(nil), ivs...)}
}

// Intervals returns a copy of the collection
func (a *Aggregator) Intervals() []harmony.Interval {
	return append([]harmony.Interval(nil), a.intervals...)
}

// Len is the number of intervals in the collection
func (a *Aggregator) Len() int {
	return len(a.intervals)
}

// MeanValueOfProperty averages property p over the collection.
//
// With eliminateZeros, values that round to 0 are left out of both the sum
// and the count. With fold, negative values count by their magnitude.
// When nothing is counted the result is exactly 0. A property missing from
// any interval fails with harmony.ErrMissingLookup.
func (a *Aggregator) MeanValueOfProperty(p harmony.Property, fold, eliminateZeros bool) (float64, error) {
	counted := make([]float64, 0, len(a.intervals))
	for _, iv := range a.intervals {
		v, err := iv.Property(p)
		if err != nil {
			return 0, err
		}
		if eliminateZeros && math.Round(v) == 0 {
			continue
		}
		if fold && v < 0 {
			v = -v
		}
		counted = append(counted, v)
	}
	return common.Mean(counted), nil
}

// propertySet names the three catalog properties one analysis averages
type propertySet struct {
	continuity harmony.Property
	impulse    harmony.Property
	potential  harmony.Property
}

var (
	formalSet = propertySet{harmony.InnerContinuity, harmony.InnerImpulse, harmony.FormalPotentialInfluence}
	realSet   = propertySet{harmony.RealContinuity, harmony.RealImpulse, harmony.RealPotentialInfluence}
)

func (a *Aggregator) properties(set propertySet, combine Combinator) (Properties, error) {
	var (
		out Properties
		err error
	)
	if out.Continuity, err = a.MeanValueOfProperty(set.continuity, false, true); err != nil {
		return Properties{}, err
	}
	if out.Impulse, err = a.MeanValueOfProperty(set.impulse, true, true); err != nil {
		return Properties{}, err
	}
	if out.Potential, err = a.MeanValueOfProperty(set.potential, true, true); err != nil {
		return Properties{}, err
	}
	if combine == nil {
		combine = DefaultConsonance
	}
	out.Consonance = combine(out.Continuity, out.Impulse)
	return out, nil
}

// FormalProperties aggregates the inner (shape) properties. An empty
// collection yields all zeros without consulting the combinator.
func (a *Aggregator) FormalProperties(combine Combinator) (Properties, error) {
	if len(a.intervals) == 0 {
		return Properties{}, nil
	}
	return a.properties(formalSet, combine)
}

// RealProperties aggregates the real (sounding tone) properties. Fewer than
// two intervals yield all zeros: a single sample says nothing about cohesion.
func (a *Aggregator) RealProperties(combine Combinator) (Properties, error) {
	if len(a.intervals) < 2 {
		return Properties{}, nil
	}
	return a.properties(realSet, combine)
}
