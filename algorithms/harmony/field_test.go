package harmony

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-armonia/config"
)

// plainFieldConfig has every toggle off
func plainFieldConfig() config.FieldConfig {
	return config.FieldConfig{NeighborFloor: 0.01}
}

func newCMajorField(t *testing.T, cfg config.FieldConfig, opts ...Option) *Field {
	t.Helper()
	f := NewField(DefaultSystem(), cfg, opts...)
	require.NoError(t, f.Reset(MajorScale(0)))
	return f
}

type recordingClassifier struct {
	calls []string
	seen  []PitchSet
}

func (r *recordingClassifier) Level(tones PitchSet) int {
	r.calls = append(r.calls, "level")
	r.seen = append(r.seen, tones)
	return tones.Count()
}

func (r *recordingClassifier) Behavior(tones PitchSet) Behavior {
	r.calls = append(r.calls, "behavior")
	return BehaviorModal
}

func (r *recordingClassifier) Code(tones PitchSet) uint64 {
	r.calls = append(r.calls, "code")
	return tones.Bits()
}

func (r *recordingClassifier) Shortcut(tones PitchSet) string {
	r.calls = append(r.calls, "shortcut")
	return "x"
}

func TestField_TriadTickValues(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	values := f.Values()
	assert.InDelta(t, 1.0, values[0], 1e-9)
	assert.InDelta(t, 1.1, values[4], 1e-9)
	assert.InDelta(t, 1.1, values[7], 1e-9)

	// in-scale bands reached only indirectly stay at or below the floor
	for _, pc := range []int{2, 5, 9, 11} {
		assert.LessOrEqual(t, values[pc], 0.01+1e-9, "band %d", pc)
	}
}

func TestField_SimpleModeKeepsDirectHits(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	st := f.DetermineStructure(4, false)
	assert.Equal(t, []int{0, 4, 7}, st.Tones.Elements())
	assert.Equal(t, []int{4, 7, 0}, st.Selection)
	assert.Equal(t, 3, st.Level)
	assert.Equal(t, BehaviorConsonant, st.Behavior)
	assert.Equal(t, "C", st.Shortcut)
}

func TestField_SimpleModeRespectsMaxTones(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	st := f.DetermineStructure(2, false)
	assert.Equal(t, []int{4, 7}, st.Tones.Elements())
}

// feedTriad feeds the C major triad for n ticks
func feedTriad(f *Field, n int) {
	for range n {
		f.AcceptTonesOfTick(Tones(0, 4, 7))
	}
}

func TestField_FullHarmonizationPicksQualifiedBands(t *testing.T) {
	// after 12 ticks: C 10.9, E 12.1, G 12.1, every other modal band <= 0.01
	f := newCMajorField(t, config.DefaultFieldConfig())
	feedTriad(f, 12)

	st := f.DetermineStructure(4, true)
	assert.Equal(t, []int{4, 7, 0}, st.Selection)
	assert.Equal(t, []int{0, 4, 7}, st.Tones.Elements())
	assert.Equal(t, "C", st.Shortcut)

	st = f.DetermineStructure(2, true)
	assert.Equal(t, []int{4, 7}, st.Selection)
}

func TestField_FullHarmonizationBoundByQualifyingBands(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		want  []int
	}{
		{"silent field", 0, nil},
		{"single tick", 1, nil},
		{"below threshold", 9, nil},
		{"three qualifying", 12, []int{4, 7, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCMajorField(t, config.DefaultFieldConfig())
			f.AcceptTonesOfTick(nil)
			feedTriad(f, tt.ticks)

			st := f.DetermineStructure(4, true)
			assert.Equal(t, tt.want, st.Selection)
			if tt.want == nil {
				assert.True(t, st.IsEmpty())
				assert.Equal(t, BehaviorEmpty, st.Behavior)
				assert.Equal(t, "", st.Shortcut)
			}
		})
	}
}

func TestField_FullHarmonizationFallsBackToPermissivePick(t *testing.T) {
	f := newCMajorField(t, plainFieldConfig())
	f.ChangeToneValue(11, 98)
	f.ChangeToneValue(0, 95)
	// cancel the color C threw onto E and G
	f.ChangeToneValue(4, -9.5)
	f.ChangeToneValue(7, -9.5)

	// B and C qualify; once B is picked C sits at -5 and nothing exceeds 10,
	// so the second step takes the best band above the permissive floor
	st := f.DetermineStructure(4, true)
	assert.Equal(t, []int{11, 4}, st.Selection)
}

func TestField_FullHarmonizationAvoidsRepeatsAndNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		f := newCMajorField(t, config.DefaultFieldConfig())
		chord := make([]int, 1+rng.Intn(3))
		for k := range chord {
			chord[k] = rng.Intn(12)
		}
		ticks := 1 + rng.Intn(20)
		for tick := 0; tick < ticks; tick++ {
			f.AcceptTonesOfTick(Tones(chord...))
		}

		maxTones := 1 + rng.Intn(5)
		st := f.DetermineStructure(maxTones, true)
		require.LessOrEqual(t, len(st.Selection), maxTones)

		for i, pick := range st.Selection {
			for _, prev := range st.Selection[:i] {
				assert.NotEqual(t, prev, pick)
				assert.NotEqual(t, DefaultSystem().Ring(prev, 1), pick)
				assert.NotEqual(t, DefaultSystem().Ring(prev, -1), pick)
			}
		}
	}
}

func TestField_FullHarmonizationResetsBonus(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	feedTriad(f, 12)

	first := f.DetermineStructure(4, true)
	second := f.DetermineStructure(4, true)
	require.NotEmpty(t, first.Selection)
	assert.Equal(t, first.Selection, second.Selection)
}

func TestField_DefaultClassifierFollowsOrder(t *testing.T) {
	sys19, err := NewSystem(19, nil)
	require.NoError(t, err)

	f := NewField(DefaultSystem(), config.DefaultFieldConfig())
	require.Equal(t, 12, f.classifier.(*SpectralClassifier).Order)
	f.SetSystem(sys19)
	assert.Equal(t, NewSpectralClassifier(19), f.classifier)

	late := NewField(nil, config.DefaultFieldConfig())
	assert.Nil(t, late.classifier)
	late.SetSystem(sys19)
	assert.Equal(t, NewSpectralClassifier(19), late.classifier)

	rec := &recordingClassifier{}
	own := NewField(DefaultSystem(), config.DefaultFieldConfig(), WithClassifier(rec))
	own.SetSystem(sys19)
	assert.Same(t, rec, own.classifier)
}

func TestField_EmptyWhenNoModalBands(t *testing.T) {
	f := NewField(DefaultSystem(), config.DefaultFieldConfig())
	require.NoError(t, f.Reset(NewPitchSet(12)))
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	for _, full := range []bool{false, true} {
		st := f.DetermineStructure(4, full)
		assert.True(t, st.IsEmpty())
		assert.Equal(t, BehaviorEmpty, st.Behavior)
		assert.Equal(t, "", st.Shortcut)
	}
}

func TestField_NonPositiveMaxTones(t *testing.T) {
	rec := &recordingClassifier{}
	f := newCMajorField(t, config.DefaultFieldConfig(), WithClassifier(rec))
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	for _, maxTones := range []int{0, -3} {
		st := f.DetermineStructure(maxTones, true)
		assert.True(t, st.IsEmpty())
		assert.Equal(t, 12, st.Tones.Order())
	}
	assert.Empty(t, rec.calls)
}

func TestField_ClassifierCallOrder(t *testing.T) {
	rec := &recordingClassifier{}
	f := newCMajorField(t, config.DefaultFieldConfig(), WithClassifier(rec))
	f.AcceptTonesOfTick(Tones(0, 4, 7))

	st := f.DetermineStructure(3, false)
	assert.Equal(t, []string{"level", "behavior", "code", "shortcut"}, rec.calls)
	assert.True(t, rec.seen[0].Equal(st.Tones))
	assert.Equal(t, BehaviorModal, st.Behavior)
	assert.Equal(t, "x", st.Shortcut)
}

func TestField_ResetOrderMismatch(t *testing.T) {
	f := NewField(DefaultSystem(), config.DefaultFieldConfig())
	err := f.Reset(NewPitchSet(7, 0, 2, 4))
	assert.ErrorIs(t, err, ErrConfigurationMismatch)
}

func TestField_ResetClearsState(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0, 4, 7))
	f.DetermineStructure(4, true)

	require.NoError(t, f.Reset(NaturalMinorScale(9)))
	for _, b := range f.Bands() {
		assert.Zero(t, b.Value)
		assert.Zero(t, b.SonanceBonus)
		assert.Equal(t, NaturalMinorScale(9).IsOn(b.Index), b.Modal)
	}
}

func TestField_NilSystemIsNoOp(t *testing.T) {
	f := NewField(nil, config.DefaultFieldConfig())
	assert.Equal(t, 0, f.Order())

	f.ChangeToneValue(3, 1)
	f.AcceptTonesOfTick(Tones(0, 4, 7))
	f.Forget()
	assert.Empty(t, f.Bands())
	assert.True(t, f.DetermineStructure(4, true).IsEmpty())

	f.SetSystem(DefaultSystem())
	assert.Len(t, f.Bands(), 12)
	for i, b := range f.Bands() {
		assert.Equal(t, i, b.Index)
		assert.Zero(t, b.Value)
	}
}

func TestField_IgnoresRestsAndPercussion(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick([]ToneEvent{
		{Pitch: 0, Rest: true},
		{Pitch: 4, Percussive: true},
	})
	for _, v := range f.Values() {
		assert.Zero(t, v)
	}
}

func TestField_AbsoluteKeysReduceModuloOrder(t *testing.T) {
	a := newCMajorField(t, config.DefaultFieldConfig())
	b := newCMajorField(t, config.DefaultFieldConfig())
	a.AcceptTonesOfTick(Tones(60, 64, 67))
	b.AcceptTonesOfTick(Tones(0, 4, 7))
	assert.InDeltaSlice(t, b.Values(), a.Values(), 1e-12)
}

func TestField_TimeDecay(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0))
	require.InDelta(t, -0.5, f.Values()[1], 1e-12)

	f.AcceptTonesOfTick(nil)
	assert.InDelta(t, 0.9, f.Values()[0], 1e-12)
	assert.InDelta(t, -0.4, f.Values()[1], 1e-12)
	// the floor value is within one step of zero and lands exactly on it
	assert.Zero(t, f.Values()[2])
}

func TestField_NeighborFloor(t *testing.T) {
	f := newCMajorField(t, plainFieldConfig())
	f.cfg.MainInfluence = true
	f.ChangeToneValue(0, 1)

	values := f.Values()
	assert.Equal(t, 1.0, values[0])
	assert.Equal(t, -0.5, values[1])
	assert.Equal(t, -0.5, values[11])
	assert.Equal(t, 0.01, values[2])
	assert.Equal(t, 0.01, values[10])
	assert.InDelta(t, 0.1, values[4], 1e-12)
	assert.InDelta(t, 0.1, values[7], 1e-12)
}

func TestField_ContinuityPull(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.FieldConfig
		want float64
	}{
		{"off", config.FieldConfig{MainInfluence: true, NeighborFloor: 0.01}, -0.5},
		{"normal", config.FieldConfig{MainInfluence: true, ContinuityToTonic: true, NeighborFloor: 0.01}, -0.5 + 1.0/3},
		{"strong stops at zero", config.FieldConfig{MainInfluence: true, ContinuityToTonic: true, StrongImpulse: true, NeighborFloor: 0.01}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newCMajorField(t, c.cfg)
			f.ChangeToneValue(6, 1) // masks band 5
			require.Equal(t, -0.5, f.Values()[5])

			f.ChangeToneValue(0, 1) // band 5 sits a fifth below 0
			assert.InDelta(t, c.want, f.Values()[5], 1e-12)
		})
	}
}

func TestField_ContinuityPullIgnoresPositiveNeighbors(t *testing.T) {
	cfg := plainFieldConfig()
	cfg.ContinuityToTonic = true
	f := newCMajorField(t, cfg)

	f.ChangeToneValue(5, 1)
	f.ChangeToneValue(0, 1)
	assert.Equal(t, 1.0, f.Values()[5])
}

func TestField_AdditiveWithTogglesOff(t *testing.T) {
	tick := Tones(0, 4, 7, 4, 11)
	f := newCMajorField(t, plainFieldConfig())
	f.AcceptTonesOfTick(tick)

	want := make([]float64, 12)
	for _, tone := range tick {
		want[tone.Pitch] += 1
		want[(tone.Pitch+7)%12] += 0.1
		want[(tone.Pitch+4)%12] += 0.1
	}
	assert.InDeltaSlice(t, want, f.Values(), 1e-12)
}

func TestField_TickOrderIndependence(t *testing.T) {
	configs := map[string]config.FieldConfig{
		"plain":   plainFieldConfig(),
		"default": config.DefaultFieldConfig(),
		"strong":  config.StrongImpulseFieldConfig(),
	}
	ticks := [][]int{{0, 4, 7}, {2, 5, 9, 11}, {1, 6}, {0, 0, 3}}
	rng := rand.New(rand.NewSource(42))

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			ref := newCMajorField(t, cfg)
			for _, tick := range ticks {
				ref.AcceptTonesOfTick(Tones(tick...))
			}

			for trial := 0; trial < 20; trial++ {
				f := newCMajorField(t, cfg)
				for _, tick := range ticks {
					shuffled := append([]int(nil), tick...)
					rng.Shuffle(len(shuffled), func(i, j int) {
						shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
					})
					f.AcceptTonesOfTick(Tones(shuffled...))
				}
				assert.InDeltaSlice(t, ref.Values(), f.Values(), 1e-9)
			}
		})
	}
}

func TestField_ForgetConvergesWithoutSignFlips(t *testing.T) {
	f := newCMajorField(t, config.DefaultFieldConfig())
	f.AcceptTonesOfTick(Tones(0, 4, 7))
	f.AcceptTonesOfTick(Tones(1, 6))

	prev := f.Values()
	for i := 0; i < 80; i++ {
		f.Forget()
		cur := f.Values()
		for pc := range cur {
			assert.LessOrEqual(t, math.Abs(cur[pc]), math.Abs(prev[pc]))
			assert.False(t, cur[pc]*prev[pc] < 0, "band %d flipped sign", pc)
		}
		prev = cur
	}
	for _, v := range prev {
		assert.InDelta(t, 0, v, 1e-15)
	}
}

func TestField_BandCountAndFiniteness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for order := 1; order <= 24; order++ {
		sys, err := NewSystem(order, nil)
		require.NoError(t, err)

		f := NewField(sys, config.DefaultFieldConfig())
		require.NoError(t, f.Reset(FullPitchSet(order)))
		for step := 0; step < 200; step++ {
			switch rng.Intn(10) {
			case 0:
				require.NoError(t, f.Reset(NewPitchSet(order, rng.Intn(order))))
			case 1:
				f.Forget()
			default:
				pitches := make([]int, rng.Intn(5))
				for k := range pitches {
					pitches[k] = rng.Intn(128)
				}
				f.AcceptTonesOfTick(Tones(pitches...))
			}
			require.Len(t, f.Bands(), order)
		}

		for _, v := range f.Values() {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "order %d", order)
		}
		st := f.DetermineStructure(order, true)
		assert.LessOrEqual(t, st.Level, order)
	}
}

func TestField_SharedSystem(t *testing.T) {
	a := NewField(DefaultSystem(), config.DefaultFieldConfig())
	b := NewField(DefaultSystem(), config.StrongImpulseFieldConfig())
	require.NoError(t, a.Reset(MajorScale(0)))
	require.NoError(t, b.Reset(MajorScale(0)))

	a.ChangeToneValue(6, 1)
	a.ChangeToneValue(0, 1)
	b.ChangeToneValue(6, 1)
	b.ChangeToneValue(0, 1)
	assert.NotEqual(t, a.Values()[5], b.Values()[5])
}
