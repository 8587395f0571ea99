package harmony

import (
	"fmt"
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
	"github.com/RyanBlaney/sonido-armonia/config"
	"github.com/RyanBlaney/sonido-armonia/logging"
)

// Fixed shape of the propagation model
const (
	colorDivisor = 10.0 // +7/+4 neighbors receive value/colorDivisor

	normalPrimaryFactor   = 3.0
	normalSecondaryFactor = 6.0
	strongPrimaryFactor   = 1.0
	strongSecondaryFactor = 2.0

	pickPenalty      = -1000.0 // bonus on a band once activated
	neighborPenalty  = -100.0  // bonus on its ±1 neighbors
	consonanceReward = 1.0     // bonus on its ±4 and ±7 neighbors
)

// Field is the harmonic field: one band of energy per pitch class, fed tick by
// tick and read out as a chord on demand.
//
// A Field has a single owner. Ticks must arrive in ascending time order since
// decay and masking act on the state left by earlier ticks. Separate fields
// may share one System.
type Field struct {
	system     *System
	bands      []Band
	cfg        config.FieldConfig
	harmonize  config.HarmonizeConfig
	classifier Classifier
	logger     logging.Logger

	ownClassifier bool // set by WithClassifier; kept across SetSystem
}

// Option customizes a Field
type Option func(*Field)

// WithClassifier replaces the default spectral classifier
func WithClassifier(c Classifier) Option {
	return func(f *Field) {
		f.classifier = c
		f.ownClassifier = c != nil
	}
}

// WithHarmonizeConfig replaces the default structure thresholds
func WithHarmonizeConfig(h config.HarmonizeConfig) Option {
	return func(f *Field) {
		f.harmonize = h
	}
}

// WithLogger sets the logger the field reports through
func WithLogger(l logging.Logger) Option {
	return func(f *Field) {
		f.logger = l
	}
}

// NewField creates a field over sys. sys may be nil and attached later with
// SetSystem; until then the field has order 0 and ignores every tone.
func NewField(sys *System, cfg config.FieldConfig, opts ...Option) *Field {
	f := &Field{
		cfg:       cfg,
		harmonize: config.DefaultHarmonizeConfig(),
		logger: logging.WithFields(logging.Fields{
			"component": "harmonic_field",
		}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.SetSystem(sys)
	return f
}

// SetSystem attaches a system and rebuilds the bands for its order.
// The new bands are all zero and not modal.
func (f *Field) SetSystem(sys *System) {
	f.system = sys
	n := f.Order()
	f.bands = make([]Band, n)
	for i := range f.bands {
		f.bands[i].Index = i
	}
	if !f.ownClassifier && n > 0 {
		f.classifier = NewSpectralClassifier(n)
	}
}

// System returns the attached system (nil when none)
func (f *Field) System() *System {
	return f.system
}

// Order is the number of bands
func (f *Field) Order() int {
	if f.system == nil {
		return 0
	}
	return f.system.Order()
}

// Bands returns a copy of the band array
func (f *Field) Bands() []Band {
	out := make([]Band, len(f.bands))
	copy(out, f.bands)
	return out
}

// Values returns the band values indexed by pitch class
func (f *Field) Values() []float64 {
	out := make([]float64, len(f.bands))
	for i, b := range f.bands {
		out[i] = b.Value
	}
	return out
}

// Reset zeroes every band and takes the modal flags from scale
func (f *Field) Reset(scale PitchSet) error {
	if scale.Order() != f.Order() {
		return fmt.Errorf("%w: scale mask has order %d, field has order %d", ErrConfigurationMismatch, scale.Order(), f.Order())
	}
	for i := range f.bands {
		f.bands[i].Value = 0
		f.bands[i].SonanceBonus = 0
		f.bands[i].Modal = scale.IsOn(i)
	}

	f.logger.Debug("Field reset", logging.Fields{
		"order": f.Order(),
		"scale": scale.String(),
	})
	return nil
}

// Forget halves every band value
func (f *Field) Forget() {
	for i := range f.bands {
		f.bands[i].Value /= 2
	}
}

// AcceptTonesOfTick advances the field by one rhythmic tick. With time decay
// on, every band first moves DecayStep toward zero. Then every true tone adds
// 1.0 to its band with the configured influences.
//
// The influences are applied phase by phase across all tones of the tick, so
// the result does not depend on the order the tones were listed in.
func (f *Field) AcceptTonesOfTick(tones []ToneEvent) {
	n := f.Order()
	if n == 0 {
		return
	}

	if f.cfg.TimeDecay {
		for i := range f.bands {
			f.bands[i].Value = common.StepTowardZero(f.bands[i].Value, f.cfg.DecayStep)
		}
	}

	hits := make([]int, 0, len(tones))
	for _, t := range tones {
		if t.IsTrueTone() {
			hits = append(hits, common.Wrap(t.Pitch, n))
		}
	}
	f.propagate(hits, 1.0)
}

// ChangeToneValue adds value to one band and propagates the influences of that
// single hit to its neighbors. A field with no system ignores the call.
func (f *Field) ChangeToneValue(band int, value float64) {
	n := f.Order()
	if n == 0 {
		return
	}
	f.propagate([]int{common.Wrap(band, n)}, value)
}

// propagate applies one hit of size value on every listed band.
// Additive phases first (direct, masking, color), then the ±2 floor, then the
// continuity pull; each phase commutes across bands.
func (f *Field) propagate(hits []int, value float64) {
	if len(hits) == 0 {
		return
	}
	primary, secondary := f.factors()

	for _, b := range hits {
		f.bands[b].Value += value
		if f.cfg.MainInfluence {
			f.add(b, -1, -value/2)
			f.add(b, 1, -value/2)
		}
		f.add(b, 7, value/colorDivisor)
		f.add(b, 4, value/colorDivisor)
	}

	if f.cfg.MainInfluence {
		for _, b := range hits {
			f.floor(b, -2, value/primary)
			f.floor(b, 2, value/primary)
		}
	}

	if f.cfg.ContinuityToTonic {
		for _, b := range hits {
			f.pullNegative(b, -7, value/primary)
			f.pullNegative(b, -4, value/secondary)
		}
	}
}

func (f *Field) factors() (primary, secondary float64) {
	if f.cfg.StrongImpulse {
		return strongPrimaryFactor, strongSecondaryFactor
	}
	return normalPrimaryFactor, normalSecondaryFactor
}

func (f *Field) neighbor(b, k int) *Band {
	return &f.bands[common.RingOffset(b, k, len(f.bands))]
}

func (f *Field) add(b, k int, delta float64) {
	f.neighbor(b, k).Value += delta
}

// floor lowers a neighbor by amount but never below the configured floor
func (f *Field) floor(b, k int, amount float64) {
	nb := f.neighbor(b, k)
	nb.Value = math.Max(nb.Value-amount, f.cfg.NeighborFloor)
}

// pullNegative moves a negative neighbor toward zero, never past it
func (f *Field) pullNegative(b, k int, amount float64) {
	nb := f.neighbor(b, k)
	if nb.Value < 0 {
		nb.Value = common.StepTowardZero(nb.Value, math.Abs(amount))
	}
}

// DetermineStructure reads a chord of at most maxTones tones out of the field.
//
// Simple mode activates the strongest modal bands above the simple threshold.
// Full harmonization picks bands one at a time, penalizing each pick and its
// ±1 neighbors and rewarding its ±4/±7 neighbors. It takes at most as many
// steps as there are modal bands above the qualifying threshold; a step with
// no qualifying band falls back to the best band above the permissive floor. Either way the result is classified in the order level,
// behavior, code, shortcut.
func (f *Field) DetermineStructure(maxTones int, fullHarmonization bool) Structure {
	st := Structure{Tones: NewPitchSet(f.Order())}
	if maxTones <= 0 || f.Order() == 0 {
		return st
	}

	if fullHarmonization {
		st = f.harmonizeFully(st, maxTones)
	} else {
		st = f.harmonizeSimply(st, maxTones)
	}
	return Classify(f.classifier, st)
}

func (f *Field) harmonizeSimply(st Structure, maxTones int) Structure {
	candidates := make([]Band, 0, len(f.bands))
	for _, b := range f.bands {
		if b.Modal && b.Value > f.harmonize.SimpleThreshold {
			candidates = append(candidates, b)
		}
	}
	// bands are already ascending by index, stable sort keeps that for ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value > candidates[j].Value
	})

	for _, b := range candidates[:min(maxTones, len(candidates))] {
		st.Tones = st.Tones.With(b.Index)
		st.Selection = append(st.Selection, b.Index)
	}
	return st
}

func (f *Field) harmonizeFully(st Structure, maxTones int) Structure {
	for i := range f.bands {
		f.bands[i].SonanceBonus = 0
	}

	eligible := 0
	for _, b := range f.bands {
		if b.Modal && b.Score() > f.harmonize.QualifyingThreshold {
			eligible++
		}
	}

	for step := 0; step < min(maxTones, eligible); step++ {
		pick := f.bestModal(st.Tones, f.harmonize.QualifyingThreshold)
		if pick < 0 {
			pick = f.bestModal(st.Tones, f.harmonize.PermissiveFloor)
			if pick >= 0 {
				f.logger.Debug("Full harmonization fell back to permissive pick", logging.Fields{
					"step": step,
					"band": pick,
				})
			}
		}
		if pick < 0 {
			break
		}

		st.Tones = st.Tones.With(pick)
		st.Selection = append(st.Selection, pick)

		f.bands[pick].SonanceBonus += pickPenalty
		f.neighbor(pick, -1).SonanceBonus += neighborPenalty
		f.neighbor(pick, 1).SonanceBonus += neighborPenalty
		for _, k := range []int{-7, -4, 4, 7} {
			f.neighbor(pick, k).SonanceBonus += consonanceReward
		}
	}
	return st
}

// bestModal returns the highest-scoring modal band above threshold that is not
// yet active, lowest index on ties, or -1.
func (f *Field) bestModal(active PitchSet, threshold float64) int {
	best := -1
	for i, b := range f.bands {
		if !b.Modal || active.IsOn(i) || b.Score() <= threshold {
			continue
		}
		if best < 0 || b.Score() > f.bands[best].Score() {
			best = i
		}
	}
	return best
}
