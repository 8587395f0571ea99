package harmony

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystem_Validation(t *testing.T) {
	_, err := NewSystem(0, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewSystem(MaxOrder+1, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = NewSystem(19, DefaultCatalog())
	assert.ErrorIs(t, err, ErrConfigurationMismatch)

	sys, err := NewSystem(19, nil)
	require.NoError(t, err)
	assert.Equal(t, 19, sys.Order())
	assert.Nil(t, sys.Catalog())
}

func TestSystem_Distance(t *testing.T) {
	sys := DefaultSystem()
	assert.Equal(t, 7, sys.Distance(0, 7))
	assert.Equal(t, 5, sys.Distance(7, 0))
	assert.Equal(t, 0, sys.Distance(3, 15))
	assert.Equal(t, 11, sys.FormalLength(-1))
	assert.Equal(t, 5, sys.Ring(0, -7))
}

func TestSystem_Interval(t *testing.T) {
	sys := DefaultSystem()

	fifth := sys.Interval(0, 7)
	assert.Equal(t, 0, fifth.From)
	assert.Equal(t, 7, fifth.To)
	assert.Equal(t, 7, fifth.FormalLength)
	assert.Equal(t, "perfect fifth", fifth.Name)
	v, err := fifth.Property(InnerContinuity)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	fourth := sys.Interval(19, 12)
	assert.Equal(t, 7, fourth.From)
	assert.Equal(t, 0, fourth.To)
	assert.Equal(t, 5, fourth.FormalLength)
	assert.Equal(t, "perfect fourth", fourth.Name)
}

func TestInterval_MissingProperty(t *testing.T) {
	iv := DefaultSystem().Interval(0, 4)
	_, err := iv.Property("Brightness")
	assert.ErrorIs(t, err, ErrMissingLookup)
	assert.False(t, iv.Has("Brightness"))
	assert.True(t, iv.Has(RealImpulse))

	bare, err := NewSystem(12, nil)
	require.NoError(t, err)
	_, err = bare.Interval(0, 4).Property(InnerContinuity)
	assert.ErrorIs(t, err, ErrMissingLookup)
}

func TestInterval_PropertiesIsACopy(t *testing.T) {
	iv := DefaultSystem().Interval(0, 4)
	props := iv.Properties()
	props[InnerContinuity] = 99

	v, err := iv.Property(InnerContinuity)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 12, c.Order)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, c.Lengths())

	name, ok := c.Name(6)
	assert.True(t, ok)
	assert.Equal(t, "tritone", name)

	_, ok = c.Name(12)
	assert.False(t, ok)

	// every entry carries the six properties the aggregations read
	for _, length := range c.Lengths() {
		iv := DefaultSystem().Interval(0, length)
		for _, p := range []Property{InnerContinuity, InnerImpulse, FormalPotentialInfluence, RealContinuity, RealImpulse, RealPotentialInfluence} {
			assert.True(t, iv.Has(p), "length %d lacks %s", length, p)
		}
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"bad order":    "order: 0\n",
		"out of range": "order: 5\nintervals:\n  - length: 5\n    name: x\n",
		"duplicate":    "order: 5\nintervals:\n  - length: 1\n  - length: 1\n",
		"unknown key":  "order: 5\ncolour: red\n",
	}
	for name, body := range cases {
		_, err := ParseCatalog(strings.NewReader(body))
		assert.Error(t, err, name)
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pentatonic.yaml")
	body := `
order: 5
intervals:
  - length: 1
    name: step
    properties:
      InnerContinuity: 2
      InnerImpulse: -1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	sys, err := NewSystem(5, c)
	require.NoError(t, err)

	iv := sys.Interval(4, 0)
	assert.Equal(t, 1, iv.FormalLength)
	assert.Equal(t, "step", iv.Name)
	v, err := iv.Property(InnerImpulse)
	require.NoError(t, err)
	assert.Equal(t, -1.0, v)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
