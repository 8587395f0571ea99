package harmony

import (
	"math/cmplx"
	"strings"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// SpectralClassifier classifies structures from the discrete Fourier spectrum
// of their pitch-class indicator vector. The magnitude of coefficient k is
// invariant under transposition: a large triadic coefficient means the set
// stacks thirds, a large diatonic coefficient means it sits inside a
// fifth-generated scale, a large first coefficient means it clusters.
type SpectralClassifier struct {
	Order      int
	Triadic    int // coefficient index measuring triadic content (3 for 12-tone)
	Diatonic   int // coefficient index measuring diatonic content (5 for 12-tone)
	Prominence float64
}

// NewSpectralClassifier returns a classifier tuned for the given ring order
func NewSpectralClassifier(order int) *SpectralClassifier {
	c := &SpectralClassifier{Order: order, Triadic: 3, Diatonic: 5, Prominence: 0.5}
	if order != 12 {
		c.Triadic = max(1, order/4)
		c.Diatonic = max(1, order*5/12)
	}
	return c
}

// Spectrum returns |X_k| for k = 0..N-1 of the set's indicator vector
func Spectrum(tones PitchSet) []float64 {
	n := tones.Order()
	if n <= 0 || n > MaxOrder {
		return nil
	}
	indicator := make([]float64, n)
	for _, pc := range tones.Elements() {
		indicator[pc] = 1
	}

	coeffs := fft.FFTReal(indicator)
	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mags[k] = cmplx.Abs(c)
	}
	return mags
}

// Level is the number of active tones
func (c *SpectralClassifier) Level(tones PitchSet) int {
	return tones.Count()
}

// Behavior reads the triadic, diatonic and cluster coefficients, each
// normalized by the number of tones
func (c *SpectralClassifier) Behavior(tones PitchSet) Behavior {
	count := tones.Count()
	if count == 0 {
		return BehaviorEmpty
	}

	mags := Spectrum(tones)
	floats.Scale(1/float64(count), mags)

	n := len(mags)
	triadic := mags[c.Triadic%n]
	diatonic := mags[c.Diatonic%n]
	cluster := mags[1%n]

	switch {
	case triadic >= c.Prominence && diatonic >= cluster:
		return BehaviorConsonant
	case diatonic >= c.Prominence:
		return BehaviorModal
	default:
		return BehaviorDissonant
	}
}

// Code is the transposition-invariant normal code of the set
func (c *SpectralClassifier) Code(tones PitchSet) uint64 {
	code, _ := tones.NormalCode()
	return code
}

// Shortcut names the chord on the 12-tone ring ("C", "Am7", "Gsus4"); other
// sets fall back to their element list joined by dashes.
func (c *SpectralClassifier) Shortcut(tones PitchSet) string {
	if tones.IsEmpty() {
		return ""
	}
	if tones.Order() == 12 {
		if name, ok := chordName(tones); ok {
			return name
		}
		names := make([]string, 0, tones.Count())
		for _, pc := range tones.Elements() {
			names = append(names, NoteName(pc))
		}
		return strings.Join(names, "-")
	}
	return strings.ReplaceAll(strings.Trim(tones.String(), "{}"), ",", "-")
}

type chordShape struct {
	suffix    string
	intervals []int
}

// Shapes are tried in order, roots ascending; the first match names the chord.
var chordShapes = []chordShape{
	{"", []int{0, 4, 7}},
	{"m", []int{0, 3, 7}},
	{"7", []int{0, 4, 7, 10}},
	{"maj7", []int{0, 4, 7, 11}},
	{"m7", []int{0, 3, 7, 10}},
	{"dim", []int{0, 3, 6}},
	{"aug", []int{0, 4, 8}},
	{"m7b5", []int{0, 3, 6, 10}},
	{"dim7", []int{0, 3, 6, 9}},
	{"sus4", []int{0, 5, 7}},
	{"add9", []int{0, 2, 4, 7}},
	{"m(add9)", []int{0, 2, 3, 7}},
	{"5", []int{0, 7}},
	{"", []int{0}},
}

func chordName(tones PitchSet) (string, bool) {
	roots := tones.Elements()
	for _, shape := range chordShapes {
		if len(shape.intervals) != len(roots) {
			continue
		}
		template := NewPitchSet(12, shape.intervals...)
		for _, root := range roots {
			if template.Transpose(root).Equal(tones) {
				return NoteName(root) + shape.suffix, true
			}
		}
	}
	return "", false
}
