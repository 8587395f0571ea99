package harmony

import (
	"fmt"
	"maps"
	"sync"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// Property names a scalar in an interval's property table
type Property string

const (
	InnerContinuity          Property = "InnerContinuity"
	InnerImpulse             Property = "InnerImpulse"
	FormalPotentialInfluence Property = "FormalPotentialInfluence"
	RealContinuity           Property = "RealContinuity"
	RealImpulse              Property = "RealImpulse"
	RealPotentialInfluence   Property = "RealPotentialInfluence"
)

// Interval is a read-only descriptor for the step from one pitch class to another
type Interval struct {
	From         int    // pitch class the interval starts on
	To           int    // pitch class the interval ends on
	FormalLength int    // canonical lookup key of the distance From -> To
	Name         string // catalog name, empty when the catalog has no entry

	properties map[Property]float64 // shared with the catalog, never written
}

// NewInterval builds a descriptor outside any catalog, for callers that keep
// their own tables. props is copied.
func NewInterval(from, to, length int, props map[Property]float64) Interval {
	return Interval{From: from, To: to, FormalLength: length, properties: maps.Clone(props)}
}

// Property returns the named scalar. An undefined name is a catalog error and
// is reported as ErrMissingLookup rather than a silent zero.
func (iv Interval) Property(p Property) (float64, error) {
	v, ok := iv.properties[p]
	if !ok {
		return 0, fmt.Errorf("%w: %s on interval %d->%d (length %d)", ErrMissingLookup, p, iv.From, iv.To, iv.FormalLength)
	}
	return v, nil
}

// Has reports whether the property is defined for this interval
func (iv Interval) Has(p Property) bool {
	_, ok := iv.properties[p]
	return ok
}

// Properties returns a copy of the property table
func (iv Interval) Properties() map[Property]float64 {
	return maps.Clone(iv.properties)
}

// System is an immutable pitch-class ring of order N together with its
// interval catalog. A System is safe for concurrent use.
type System struct {
	order   int
	catalog *Catalog
}

// NewSystem creates a ring of the given order. The catalog may be nil, in which
// case every interval has an empty property table; otherwise its order must match.
func NewSystem(order int, catalog *Catalog) (*System, error) {
	if !validOrder(order) {
		return nil, fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidOrder, order, MaxOrder)
	}
	if catalog != nil && catalog.Order != order {
		return nil, fmt.Errorf("%w: catalog order %d, system order %d", ErrConfigurationMismatch, catalog.Order, order)
	}
	return &System{order: order, catalog: catalog}, nil
}

var (
	defaultSystemOnce sync.Once
	defaultSystem     *System
)

// DefaultSystem returns the shared 12-tone system with the embedded catalog
func DefaultSystem() *System {
	defaultSystemOnce.Do(func() {
		sys, err := NewSystem(12, DefaultCatalog())
		if err != nil {
			panic("default harmonic system is inconsistent: " + err.Error())
		}
		defaultSystem = sys
	})
	return defaultSystem
}

// Order returns N
func (s *System) Order() int {
	return s.order
}

// Catalog returns the catalog the system reads intervals from (may be nil)
func (s *System) Catalog() *Catalog {
	return s.catalog
}

// Distance is the forward ring distance from a to b: (b - a) mod N
func (s *System) Distance(a, b int) int {
	return common.ForwardDistance(a, b, s.order)
}

// FormalLength canonicalizes a raw distance (any integer) into its catalog key 0..N-1
func (s *System) FormalLength(distance int) int {
	return common.Wrap(distance, s.order)
}

// Interval returns the descriptor for the step from -> to
func (s *System) Interval(from, to int) Interval {
	from = common.Wrap(from, s.order)
	to = common.Wrap(to, s.order)
	length := s.FormalLength(s.Distance(from, to))

	iv := Interval{From: from, To: to, FormalLength: length}
	if s.catalog != nil {
		if entry, ok := s.catalog.entries[length]; ok {
			iv.Name = entry.name
			iv.properties = entry.properties
		}
	}
	return iv
}

// Ring is a convenience for RingOffset on this system's order
func (s *System) Ring(pc, k int) int {
	return common.RingOffset(pc, k, s.order)
}
