package harmony

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// TonalCentroid is a point in the six-dimensional tonal space spanned by the
// circle of fifths, the circle of minor thirds and the circle of major thirds
// (x/y pair per circle). Close points are harmonically related sets.
type TonalCentroid [6]float64

// Radii of the three circles; major thirds weigh half
var tonnetzCircles = [3]struct {
	radius float64
	angle  float64 // radians per semitone
}{
	{1.0, 7 * math.Pi / 6},
	{1.0, 3 * math.Pi / 2},
	{0.5, 2 * math.Pi / 3},
}

// Centroid maps a 12-tone set to the mean position of its classes. The second
// result is false for an empty set or a ring that is not 12-tone.
func Centroid(tones PitchSet) (TonalCentroid, bool) {
	var c TonalCentroid
	if tones.Order() != 12 || tones.IsEmpty() {
		return c, false
	}

	elems := tones.Elements()
	for _, pc := range elems {
		for i, circle := range tonnetzCircles {
			theta := float64(pc) * circle.angle
			c[2*i] += circle.radius * math.Sin(theta)
			c[2*i+1] += circle.radius * math.Cos(theta)
		}
	}
	floats.Scale(1/float64(len(elems)), c[:])
	return c, true
}

// HarmonicChange is the distance between the centroids of two sets. Sets
// without a centroid report no change.
func HarmonicChange(from, to PitchSet) float64 {
	a, ok := Centroid(from)
	if !ok {
		return 0
	}
	b, ok := Centroid(to)
	if !ok {
		return 0
	}
	return floats.Distance(a[:], b[:], 2)
}
