// Package similarity decides whether two image records show the same visual
// subject.
package similarity

import (
	"math"

	"gallerycurator/types"

	"gonum.org/v1/gonum/floats"
)

// MaxColorDistance is the diagonal of the RGB cube, sqrt(3 * 255^2)
const MaxColorDistance = 441.67295593

// Distances between two records
type Distances struct {
	AspectDelta float64 `json:"aspect_delta"`
	Difference  int     `json:"difference"`
	Average     int     `json:"average"`
	Color       float64 `json:"color"`
}

// AspectDelta returns |a-b| / max(a,b)
func AspectDelta(a, b float64) float64 {
	m := math.Max(a, b)
	if m == 0 {
		return 0
	}
	return math.Abs(a-b) / m
}

// ColorDistance is the Euclidean distance between two mean colors scaled to [0,1]
func ColorDistance(a, b [3]float64) float64 {
	return floats.Distance(a[:], b[:], 2) / MaxColorDistance
}

// Measure computes every distance the classifier looks at
func Measure(a, b *types.ImageRecord) Distances {
	return Distances{
		AspectDelta: AspectDelta(a.Aspect, b.Aspect),
		Difference:  a.DifferenceHash.Hamming(b.DifferenceHash),
		Average:     a.AverageHash.Hamming(b.AverageHash),
		Color:       ColorDistance(a.MeanColor, b.MeanColor),
	}
}

// Classifier applies an aspect gate followed by OR'd threshold tiers. It is
// stateless after construction and safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier. Thresholds are expected to be valid.
func NewClassifier(t Thresholds) *Classifier {
	tiers := make([]Tier, len(t.Tiers))
	copy(tiers, t.Tiers)
	t.Tiers = tiers
	return &Classifier{thresholds: t}
}

// Thresholds returns a copy of the classifier configuration
func (c *Classifier) Thresholds() Thresholds {
	t := c.thresholds
	t.Tiers = append([]Tier(nil), c.thresholds.Tiers...)
	return t
}

// IsSimilar reports whether a and b show the same subject
func (c *Classifier) IsSimilar(a, b *types.ImageRecord) bool {
	_, ok := c.Match(a, b)
	return ok
}

// Match returns the 1-based index of the first tier that accepts the pair.
// Pairs failing the aspect gate never reach the hash comparison.
func (c *Classifier) Match(a, b *types.ImageRecord) (int, bool) {
	if AspectDelta(a.Aspect, b.Aspect) > c.thresholds.MaxAspectDelta {
		return 0, false
	}
	return c.MatchDistances(Measure(a, b))
}

// MatchDistances evaluates the aspect gate and tiers on precomputed distances
func (c *Classifier) MatchDistances(d Distances) (int, bool) {
	if d.AspectDelta > c.thresholds.MaxAspectDelta {
		return 0, false
	}
	for i, tier := range c.thresholds.Tiers {
		if tier.accepts(d) {
			return i + 1, true
		}
	}
	return 0, false
}
