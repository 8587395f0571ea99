package harmony

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchSet_Basics(t *testing.T) {
	s := NewPitchSet(12, 0, 4, 7, 16)
	assert.Equal(t, 12, s.Order())
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, []int{0, 4, 7}, s.Elements())
	assert.True(t, s.IsOn(4))
	assert.False(t, s.IsOn(5))
	assert.False(t, s.IsOn(-1))
	assert.False(t, s.IsOn(12))
	assert.Equal(t, "{0,4,7}", s.String())

	s = s.With(-1).Without(4)
	assert.Equal(t, []int{0, 7, 11}, s.Elements())
}

func TestPitchSet_ZeroValueAndInvalidOrder(t *testing.T) {
	var zero PitchSet
	assert.True(t, zero.IsEmpty())
	assert.Equal(t, 0, zero.Order())
	assert.Empty(t, zero.Elements())

	bad := NewPitchSet(65, 1, 2)
	assert.Equal(t, 65, bad.Order())
	assert.True(t, bad.IsEmpty())
	assert.True(t, bad.With(3).IsEmpty())
}

func TestPitchSet_FullSet(t *testing.T) {
	assert.Equal(t, 12, FullPitchSet(12).Count())
	assert.Equal(t, 64, FullPitchSet(64).Count())
	assert.True(t, FullPitchSet(64).IsOn(63))
}

func TestPitchSet_Transpose(t *testing.T) {
	c := NewPitchSet(12, 0, 4, 7)
	assert.Equal(t, []int{2, 7, 11}, c.Transpose(7).Elements())
	assert.Equal(t, []int{3, 6, 11}, c.Transpose(-1).Elements())
	assert.True(t, c.Transpose(12).Equal(c))
	assert.True(t, c.Transpose(5).Transpose(-5).Equal(c))

	wide := NewPitchSet(64, 0, 63)
	assert.Equal(t, []int{0, 1}, wide.Transpose(1).Elements())
}

func TestPitchSet_NormalCode(t *testing.T) {
	major, k := NewPitchSet(12, 0, 4, 7).NormalCode()
	assert.Equal(t, uint64(145), major)
	assert.Equal(t, 0, k)

	g, _ := MajorScale(7).NormalCode()
	cs, _ := MajorScale(1).NormalCode()
	assert.Equal(t, g, cs)

	minor, k := NewPitchSet(12, 9, 0, 4).NormalCode()
	assert.Equal(t, uint64(137), minor)
	assert.Equal(t, 9, k)
	assert.NotEqual(t, major, minor)

	empty, _ := NewPitchSet(12).NormalCode()
	assert.Zero(t, empty)
}

func TestPitchSet_Equal(t *testing.T) {
	assert.True(t, NewPitchSet(12, 0, 4).Equal(NewPitchSet(12, 4, 0)))
	assert.False(t, NewPitchSet(12, 0, 4).Equal(NewPitchSet(7, 0, 4)))
}

func TestPitchSet_JSON(t *testing.T) {
	out, err := json.Marshal(NewPitchSet(12, 7, 0, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `[0,4,7]`, string(out))
}

func TestParsePitchSet(t *testing.T) {
	cases := []struct {
		order int
		text  string
		want  []int
	}{
		{12, "0,4,7", []int{0, 4, 7}},
		{12, "{0, 4, 7}", []int{0, 4, 7}},
		{12, "C E G", []int{0, 4, 7}},
		{12, "A-C-E", []int{0, 4, 9}},
		{12, "Bb,D,F", []int{2, 5, 10}},
		{12, "14", []int{2}},
		{19, "0 6 11", []int{0, 6, 11}},
		{12, "", []int{}},
	}
	for _, c := range cases {
		s, err := ParsePitchSet(c.order, c.text)
		require.NoError(t, err, c.text)
		assert.Equal(t, c.want, s.Elements(), c.text)
		assert.Equal(t, c.order, s.Order())
	}
}

func TestParsePitchSet_Errors(t *testing.T) {
	_, err := ParsePitchSet(0, "0")
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = ParsePitchSet(19, "C")
	assert.Error(t, err)

	_, err = ParsePitchSet(12, "H")
	assert.Error(t, err)
}
