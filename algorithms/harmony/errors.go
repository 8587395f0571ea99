package harmony

import "errors"

var (
	// ErrConfigurationMismatch means two collaborators disagree on the ring order
	// (scale mask vs field, catalog vs system, shape vs system).
	ErrConfigurationMismatch = errors.New("configuration mismatch")

	// ErrMissingLookup means a property was requested that the interval's table does not define.
	ErrMissingLookup = errors.New("missing interval property")

	// ErrInvalidOrder means a system order outside 1..MaxOrder.
	ErrInvalidOrder = errors.New("invalid system order")
)

// ErrNoTones means a key was requested from input that holds no true tone
var ErrNoTones = errors.New("no tones to estimate a key from")
