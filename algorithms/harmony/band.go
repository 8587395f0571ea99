package harmony

// Band is the accumulated energy of one pitch class inside a Field
type Band struct {
	Index int     `json:"index"` // pitch class 0..N-1
	Value float64 `json:"value"` // may be negative: latent tension, not only activation

	// Modal marks the band as in scale; only Reset changes it
	Modal bool `json:"modal"`

	// SonanceBonus is transient: zeroed at the start of a full harmonization
	// pass and changed only during that pass
	SonanceBonus float64 `json:"sonance_bonus"`
}

// Score is the value full harmonization ranks bands by
func (b Band) Score() float64 {
	return b.Value + b.SonanceBonus
}

// ToneEvent is one tone sounding during a tick
type ToneEvent struct {
	Pitch      int  `json:"pitch"` // pitch class or absolute key; reduced modulo N by the field
	Rest       bool `json:"rest,omitempty"`
	Percussive bool `json:"percussive,omitempty"`
}

// IsTrueTone reports whether the event carries pitch (not a rest, not percussion)
func (t ToneEvent) IsTrueTone() bool {
	return !t.Rest && !t.Percussive
}

// Tones is a helper building true tone events from pitches
func Tones(pitches ...int) []ToneEvent {
	out := make([]ToneEvent, len(pitches))
	for i, p := range pitches {
		out[i] = ToneEvent{Pitch: p}
	}
	return out
}
