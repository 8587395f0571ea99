package harmony

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// MaxOrder is the largest ring a PitchSet (and therefore a System) can describe
const MaxOrder = 64

// PitchSet is an on/off set over the pitch classes 0..order-1.
// It serves both as scale mask and as chord shape. The zero value is an
// empty set of order 0.
type PitchSet struct {
	order int
	bits  uint64
}

// NewPitchSet builds a set of the given order with the listed classes on.
// Classes are reduced modulo order. Orders outside 1..MaxOrder produce an
// empty set that still reports the requested order.
func NewPitchSet(order int, classes ...int) PitchSet {
	s := PitchSet{order: order}
	if !validOrder(order) {
		return s
	}
	for _, c := range classes {
		s.bits |= 1 << uint(common.Wrap(c, order))
	}
	return s
}

// FullPitchSet returns a set of the given order with every class on
func FullPitchSet(order int) PitchSet {
	if !validOrder(order) {
		return PitchSet{order: order}
	}
	return PitchSet{order: order, bits: fullMask(order)}
}

func validOrder(order int) bool {
	return order >= 1 && order <= MaxOrder
}

func fullMask(order int) uint64 {
	if order == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(order)) - 1
}

// Order returns the ring size the set is defined over
func (s PitchSet) Order() int {
	return s.order
}

// IsOn reports whether class pc is in the set. Out-of-range classes are off.
func (s PitchSet) IsOn(pc int) bool {
	if pc < 0 || pc >= s.order || pc >= MaxOrder {
		return false
	}
	return s.bits&(1<<uint(pc)) != 0
}

// With returns a copy with class pc switched on
func (s PitchSet) With(pc int) PitchSet {
	if !validOrder(s.order) {
		return s
	}
	s.bits |= 1 << uint(common.Wrap(pc, s.order))
	return s
}

// Without returns a copy with class pc switched off
func (s PitchSet) Without(pc int) PitchSet {
	if !validOrder(s.order) {
		return s
	}
	s.bits &^= 1 << uint(common.Wrap(pc, s.order))
	return s
}

// Count returns the number of classes on
func (s PitchSet) Count() int {
	return bits.OnesCount64(s.bits)
}

// IsEmpty reports whether no class is on
func (s PitchSet) IsEmpty() bool {
	return s.bits == 0
}

// Bits returns the raw mask, bit i set when class i is on
func (s PitchSet) Bits() uint64 {
	return s.bits
}

// Elements returns the classes that are on, ascending
func (s PitchSet) Elements() []int {
	out := make([]int, 0, s.Count())
	for pc := 0; pc < s.order && pc < MaxOrder; pc++ {
		if s.IsOn(pc) {
			out = append(out, pc)
		}
	}
	return out
}

// Transpose shifts every class by k steps around the ring
func (s PitchSet) Transpose(k int) PitchSet {
	if !validOrder(s.order) || s.bits == 0 {
		return s
	}
	k = common.Wrap(k, s.order)
	if k == 0 {
		return s
	}
	rotated := (s.bits<<uint(k) | s.bits>>uint(s.order-k)) & fullMask(s.order)
	return PitchSet{order: s.order, bits: rotated}
}

// NormalCode returns the smallest mask among all transpositions of the set,
// and the transposition that produced it. Two sets share a code exactly when
// one is a transposition of the other.
func (s PitchSet) NormalCode() (code uint64, transposition int) {
	if s.bits == 0 || !validOrder(s.order) {
		return 0, 0
	}
	code = s.bits
	for k := 1; k < s.order; k++ {
		if c := s.Transpose(-k).bits; c < code {
			code, transposition = c, k
		}
	}
	return code, transposition
}

// Equal reports whether both sets have the same order and the same classes
func (s PitchSet) Equal(other PitchSet) bool {
	return s.order == other.order && s.bits == other.bits
}

// String renders the set as {0,4,7}
func (s PitchSet) String() string {
	elems := s.Elements()
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = strconv.Itoa(e)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON renders the set as its ascending element list
func (s PitchSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Elements())
}

// ParsePitchSet reads a comma or space separated list of classes. Each item is
// either an integer or, for order 12, a note name such as "C#" or "Bb".
func ParsePitchSet(order int, text string) (PitchSet, error) {
	if !validOrder(order) {
		return PitchSet{}, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	set := NewPitchSet(order)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '{' || r == '}' || r == '-'
	})
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			set = set.With(n)
			continue
		}
		if order != 12 {
			return PitchSet{}, fmt.Errorf("cannot parse %q as a pitch class of order %d", f, order)
		}
		pc, err := ParseNoteName(f)
		if err != nil {
			return PitchSet{}, err
		}
		set = set.With(pc)
	}
	return set, nil
}
