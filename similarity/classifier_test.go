package similarity

import (
	"math/rand"
	"testing"

	"gallerycurator/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flipped returns a hash that differs from h in the first n bits
func flipped(h types.Hash, n int) types.Hash {
	for i := 0; i < n; i++ {
		h[i/64] ^= 1 << (63 - uint(i%64))
	}
	return h
}

func record(aspect float64, dBits, aBits int, color [3]float64) *types.ImageRecord {
	return &types.ImageRecord{
		Aspect:         aspect,
		DifferenceHash: flipped(types.Hash{}, dBits),
		AverageHash:    flipped(types.Hash{}, aBits),
		MeanColor:      color,
	}
}

func TestDefaultThresholdsValid(t *testing.T) {
	th := DefaultThresholds()
	require.NoError(t, th.Validate())
	assert.Equal(t, 0.06, th.MaxAspectDelta)
	assert.Len(t, th.Tiers, 3)
	assert.Equal(t, NoBound, th.Tiers[0].MaxAverage)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := map[string]Thresholds{
		"no tiers":       {MaxAspectDelta: 0.06},
		"negative d":     {MaxAspectDelta: 0.06, Tiers: []Tier{{MaxDifference: -1, MaxAverage: 1, MaxColor: 0.1}}},
		"bad average":    {MaxAspectDelta: 0.06, Tiers: []Tier{{MaxDifference: 1, MaxAverage: -2, MaxColor: 0.1}}},
		"color too high": {MaxAspectDelta: 0.06, Tiers: []Tier{{MaxDifference: 1, MaxAverage: 1, MaxColor: 1.5}}},
		"aspect":         {MaxAspectDelta: -0.1, Tiers: DefaultThresholds().Tiers},
	}
	for name, th := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, th.Validate())
		})
	}
}

func TestTierBoundariesAreInclusive(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tier, ok := c.MatchDistances(Distances{Difference: 6, Average: 200, Color: 0.24})
	assert.True(t, ok)
	assert.Equal(t, 1, tier)

	// d=7 fails tier 1 and nothing else accepts with a large average distance
	_, ok = c.MatchDistances(Distances{Difference: 7, Average: 200, Color: 0.24})
	assert.False(t, ok)

	// d=7 falls through to tier 2 when its bounds hold
	tier, ok = c.MatchDistances(Distances{Difference: 7, Average: 10, Color: 0.18})
	assert.True(t, ok)
	assert.Equal(t, 2, tier)

	// and to tier 3 with a strict average and color agreement
	tier, ok = c.MatchDistances(Distances{Difference: 14, Average: 8, Color: 0.12})
	assert.True(t, ok)
	assert.Equal(t, 3, tier)

	_, ok = c.MatchDistances(Distances{Difference: 15, Average: 0, Color: 0})
	assert.False(t, ok)
}

func TestAspectGate(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	a := record(1.0, 0, 0, [3]float64{10, 10, 10})
	b := record(1.10, 0, 0, [3]float64{10, 10, 10})
	assert.InDelta(t, 0.0909, AspectDelta(a.Aspect, b.Aspect), 1e-3)
	assert.False(t, c.IsSimilar(a, b), "identical hashes must not merge across the aspect gate")

	// exactly at the gate still passes
	_, ok := c.MatchDistances(Distances{AspectDelta: 0.06})
	assert.True(t, ok)
	_, ok = c.MatchDistances(Distances{AspectDelta: 0.0601})
	assert.False(t, ok)
}

func TestIsSimilarOnRecords(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	base := record(1.5, 0, 0, [3]float64{100, 100, 100})

	near := record(1.5, 5, 30, [3]float64{120, 110, 100})
	assert.True(t, c.IsSimilar(base, near))

	far := record(1.5, 20, 0, [3]float64{100, 100, 100})
	assert.False(t, c.IsSimilar(base, far))

	recolored := record(1.5, 3, 3, [3]float64{255, 0, 0})
	assert.False(t, c.IsSimilar(base, recolored))
}

func TestIsSimilarIsSymmetric(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	rng := rand.New(rand.NewSource(7))

	randomRecord := func() *types.ImageRecord {
		r := &types.ImageRecord{
			Aspect:    []float64{1.0, 1.02, 1.05, 1.33, 1.5}[rng.Intn(5)],
			MeanColor: [3]float64{rng.Float64() * 255, rng.Float64() * 255, rng.Float64() * 255},
		}
		// sparse bits keep many pairs within the tier bounds
		for i := 0; i < 8; i++ {
			r.DifferenceHash.SetBit(rng.Intn(types.HashBits))
			r.AverageHash.SetBit(rng.Intn(types.HashBits))
		}
		return r
	}

	records := make([]*types.ImageRecord, 40)
	for i := range records {
		records[i] = randomRecord()
	}
	for _, a := range records {
		for _, b := range records {
			assert.Equal(t, c.IsSimilar(a, b), c.IsSimilar(b, a))
			assert.Equal(t, Measure(a, b), Measure(b, a))
		}
	}
}

func TestColorDistance(t *testing.T) {
	assert.Equal(t, 0.0, ColorDistance([3]float64{1, 2, 3}, [3]float64{1, 2, 3}))
	assert.InDelta(t, 1.0, ColorDistance([3]float64{0, 0, 0}, [3]float64{255, 255, 255}), 1e-9)
}

func TestClassifierCopiesTiers(t *testing.T) {
	th := DefaultThresholds()
	c := NewClassifier(th)
	th.Tiers[0].MaxDifference = 100

	assert.Equal(t, 6, c.Thresholds().Tiers[0].MaxDifference)
}
