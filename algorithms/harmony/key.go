package harmony

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RyanBlaney/sonido-armonia/algorithms/common"
)

// KeyProfile names a set of major/minor tonal hierarchy weights
type KeyProfile string

const (
	KrumhanslProfile KeyProfile = "krumhansl"
	TemperleyProfile KeyProfile = "temperley"
)

// KeyMode is major or minor
type KeyMode int

const (
	Major KeyMode = iota
	Minor
)

func (m KeyMode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// MarshalText lets KeyMode serialize as its name
func (m KeyMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

type keyWeights struct {
	major [12]float64
	minor [12]float64
}

var keyProfiles = map[KeyProfile]keyWeights{
	// listener ratings
	KrumhanslProfile: {
		major: [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
		minor: [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
	},
	// corpus counts
	TemperleyProfile: {
		major: [12]float64{5.0, 2.0, 3.5, 2.0, 4.5, 4.0, 2.0, 4.5, 2.0, 3.5, 1.5, 4.0},
		minor: [12]float64{5.0, 2.0, 3.5, 4.5, 2.0, 4.0, 2.0, 4.5, 3.5, 2.0, 1.5, 4.0},
	},
}

// KeyProfiles lists the supported profile names
func KeyProfiles() []string {
	return []string{string(KrumhanslProfile), string(TemperleyProfile)}
}

// ParseKeyProfile accepts a profile name in any case
func ParseKeyProfile(name string) (KeyProfile, error) {
	p := KeyProfile(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := keyProfiles[p]; !ok {
		return "", fmt.Errorf("unknown key profile %q (valid: %s)", name, strings.Join(KeyProfiles(), ", "))
	}
	return p, nil
}

// KeyCandidate is one of the 24 keys scored against the input
type KeyCandidate struct {
	Root        int     `json:"root"`
	Mode        KeyMode `json:"mode"`
	Correlation float64 `json:"correlation"`
}

// Name reads like "C major" or "F# minor"
func (k KeyCandidate) Name() string {
	return NoteName(k.Root) + " " + k.Mode.String()
}

// Scale returns the key's 12-tone scale mask (natural minor for minor keys)
func (k KeyCandidate) Scale() PitchSet {
	if k.Mode == Minor {
		return NaturalMinorScale(k.Root)
	}
	return MajorScale(k.Root)
}

// KeyEstimate is the result of EstimateKey
type KeyEstimate struct {
	KeyCandidate
	Key     string      `json:"key"`
	Profile KeyProfile  `json:"profile"`
	Chroma  [12]float64 `json:"chroma"`

	// Clarity is (best - second best) / best, 0 when the best correlation is not positive
	Clarity float64 `json:"clarity"`

	// Candidates holds all 24 keys, best first
	Candidates []KeyCandidate `json:"candidates"`
}

// EstimateKey guesses the key of a tick stream by correlating its pitch-class
// histogram with every rotation of the profile's major and minor weights.
//
// Each tick counts a sounding pitch class once, so the histogram weighs
// classes by how long they sound. Rests and percussion are ignored. Pitches are
// reduced modulo 12. Ties keep major before minor and the lower root first.
func EstimateKey(ticks [][]ToneEvent, profile KeyProfile) (KeyEstimate, error) {
	weights, ok := keyProfiles[profile]
	if !ok {
		return KeyEstimate{}, fmt.Errorf("unknown key profile %q", profile)
	}

	var chroma [12]float64
	var total int
	for _, tick := range ticks {
		seen := NewPitchSet(12)
		for _, t := range tick {
			if !t.IsTrueTone() {
				continue
			}
			seen = seen.With(common.Wrap(t.Pitch, 12))
		}
		for _, pc := range seen.Elements() {
			chroma[pc]++
			total++
		}
	}
	if total == 0 {
		return KeyEstimate{}, ErrNoTones
	}

	candidates := make([]KeyCandidate, 0, 24)
	for _, mode := range []KeyMode{Major, Minor} {
		base := weights.major
		if mode == Minor {
			base = weights.minor
		}
		for root := 0; root < 12; root++ {
			rotated := make([]float64, 12)
			for pc := range rotated {
				rotated[pc] = base[common.Wrap(pc-root, 12)]
			}
			candidates = append(candidates, KeyCandidate{
				Root:        root,
				Mode:        mode,
				Correlation: common.Correlation(chroma[:], rotated),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Correlation > candidates[j].Correlation
	})

	best := candidates[0]
	est := KeyEstimate{
		KeyCandidate: best,
		Key:          best.Name(),
		Profile:      profile,
		Chroma:       chroma,
		Candidates:   candidates,
	}
	if best.Correlation > 0 {
		est.Clarity = (best.Correlation - candidates[1].Correlation) / best.Correlation
	}
	return est, nil
}
