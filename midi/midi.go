package midi

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/RyanBlaney/sonido-armonia/algorithms/harmony"
)

// PercussionChannel is General MIDI channel 10, zero based
const PercussionChannel = 9

// Note is one sounding span in absolute ticks, End exclusive
type Note struct {
	Start    int64 `json:"start"`
	End      int64 `json:"end"`
	Key      uint8 `json:"key"`
	Channel  uint8 `json:"channel"`
	Velocity uint8 `json:"velocity"`
	Track    int   `json:"track"`
}

// IsPercussive reports whether the note sits on the percussion channel
func (n Note) IsPercussive() bool {
	return n.Channel == PercussionChannel
}

// ReadMidiFile loads a Standard MIDI File. Panics inside the decoder are
// returned as errors.
func ReadMidiFile(path string) (s *smf.SMF, e error) {
	defer func() {
		if r := recover(); r != nil {
			s, e = nil, fmt.Errorf("failed to parse midi file %s: %v", path, r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi file: %w", err)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("failed to parse midi file %s: %w", path, err)
	}
	return res, nil
}

// Resolution returns the ticks per quarter note, or 0 for SMPTE timing
func Resolution(s *smf.SMF) int64 {
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		return int64(mt.Resolution())
	}
	return 0
}

type noteKey struct {
	channel uint8
	key     uint8
}

// Notes pairs note-on and note-off events of every track into spans, sorted by
// start, then key. A note-on with velocity 0 ends a note. Notes still held
// when their track ends are closed at the track's last tick. A repeated
// note-on on a held key closes the earlier span first.
func Notes(s *smf.SMF) []Note {
	var notes []Note
	for ti, track := range s.Tracks {
		var abs int64
		held := make(map[noteKey]Note)

		for _, ev := range track {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				k := noteKey{ch, key}
				if prev, ok := held[k]; ok {
					prev.End = abs
					notes = append(notes, prev)
				}
				held[k] = Note{Start: abs, Key: key, Channel: ch, Velocity: vel, Track: ti}
			case ev.Message.GetNoteOn(&ch, &key, &vel), ev.Message.GetNoteOff(&ch, &key, &vel):
				k := noteKey{ch, key}
				if n, ok := held[k]; ok {
					n.End = abs
					notes = append(notes, n)
					delete(held, k)
				}
			}
		}

		for _, n := range held {
			n.End = abs
			notes = append(notes, n)
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		if notes[i].Key != notes[j].Key {
			return notes[i].Key < notes[j].Key
		}
		return notes[i].Channel < notes[j].Channel
	})
	return notes
}

// Ticks slices the notes into consecutive windows of step ticks starting at 0
// and returns the tones sounding in each window. A note sounds in a window
// when it overlaps it. Zero-length notes are dropped.
func Ticks(notes []Note, step int64) ([][]harmony.ToneEvent, error) {
	if step <= 0 {
		return nil, fmt.Errorf("tick step must be positive, got %d", step)
	}

	var last int64
	for _, n := range notes {
		last = max(last, n.End)
	}
	count := int((last + step - 1) / step)
	ticks := make([][]harmony.ToneEvent, count)

	for _, n := range notes {
		if n.End <= n.Start {
			continue
		}
		first := n.Start / step
		end := (n.End + step - 1) / step
		for t := first; t < end; t++ {
			ticks[t] = append(ticks[t], harmony.ToneEvent{
				Pitch:      int(n.Key),
				Percussive: n.IsPercussive(),
			})
		}
	}

	for _, tones := range ticks {
		sort.SliceStable(tones, func(i, j int) bool {
			return tones[i].Pitch < tones[j].Pitch
		})
	}
	return ticks, nil
}

// ReadTicks loads path and slices it into windows of step ticks. A step of 0
// means one sixteenth note at the file's resolution.
func ReadTicks(path string, step int64) ([][]harmony.ToneEvent, error) {
	s, err := ReadMidiFile(path)
	if err != nil {
		return nil, err
	}
	if step == 0 {
		res := Resolution(s)
		if res == 0 {
			return nil, fmt.Errorf("midi file %s uses SMPTE timing; pass an explicit tick step", path)
		}
		step = max(1, res/4)
	}
	return Ticks(Notes(s), step)
}
