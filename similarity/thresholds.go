package similarity

import (
	"errors"
	"fmt"
)

// NoBound disables the average-hash bound of a tier
const NoBound = -1

// Tier is one accept rule. A pair matches the tier when every bound holds;
// bounds are inclusive.
type Tier struct {
	MaxDifference int     `toml:"max_difference" json:"max_difference"`
	MaxAverage    int     `toml:"max_average" json:"max_average"`
	MaxColor      float64 `toml:"max_color" json:"max_color"`
}

// Thresholds configures the classifier
type Thresholds struct {
	// MaxAspectDelta is the largest relative aspect ratio difference that can
	// still be the same subject.
	MaxAspectDelta float64 `toml:"max_aspect_delta" json:"max_aspect_delta"`

	// Tiers are evaluated in order; the first match wins.
	Tiers []Tier `toml:"tiers" json:"tiers"`
}

// DefaultThresholds returns the tuned defaults: a strong edge match with a
// loose color bound, a moderate match on both hashes, and a looser edge bound
// backed by strict average hash and color agreement.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxAspectDelta: 0.06,
		Tiers: []Tier{
			{MaxDifference: 6, MaxAverage: NoBound, MaxColor: 0.24},
			{MaxDifference: 10, MaxAverage: 10, MaxColor: 0.18},
			{MaxDifference: 14, MaxAverage: 8, MaxColor: 0.12},
		},
	}
}

// Validate checks that the thresholds describe a usable classifier
func (t Thresholds) Validate() error {
	if t.MaxAspectDelta < 0 || t.MaxAspectDelta > 1 {
		return fmt.Errorf("aspect delta %v outside [0,1]", t.MaxAspectDelta)
	}
	if len(t.Tiers) == 0 {
		return errors.New("at least one similarity tier is required")
	}
	for i, tier := range t.Tiers {
		if tier.MaxDifference < 0 {
			return fmt.Errorf("tier %d: negative difference hash bound %d", i+1, tier.MaxDifference)
		}
		if tier.MaxAverage < NoBound {
			return fmt.Errorf("tier %d: invalid average hash bound %d", i+1, tier.MaxAverage)
		}
		if tier.MaxColor < 0 || tier.MaxColor > 1 {
			return fmt.Errorf("tier %d: color bound %v outside [0,1]", i+1, tier.MaxColor)
		}
	}
	return nil
}

// accepts reports whether d satisfies every bound of the tier
func (t Tier) accepts(d Distances) bool {
	if d.Difference > t.MaxDifference {
		return false
	}
	if t.MaxAverage != NoBound && d.Average > t.MaxAverage {
		return false
	}
	return d.Color <= t.MaxColor
}
