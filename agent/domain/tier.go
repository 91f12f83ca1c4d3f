package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ScoreTier maps a closed score range to the maximum approvable credit limit.
type ScoreTier struct {
	MinScore int     `json:"min_score"`
	MaxScore int     `json:"max_score"`
	MaxLimit float64 `json:"max_limit"`
}

// TierTable is an ordered, non-overlapping set of tiers covering 0..1000.
type TierTable []ScoreTier

var ErrNoTier = errors.New("score outside tier table")

// For returns the tier containing score. The table invariant guarantees
// exactly one match for any score in [0,1000].
func (t TierTable) For(score int) (ScoreTier, error) {
	for _, tier := range t {
		if score >= tier.MinScore && score <= tier.MaxScore {
			return tier, nil
		}
	}
	return ScoreTier{}, fmt.Errorf("%w: score=%d", ErrNoTier, score)
}

// Validate checks ordering, adjacency and full coverage of 0..1000.
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return errors.New("tier table is empty")
	}
	sorted := sort.SliceIsSorted(t, func(i, j int) bool {
		return t[i].MinScore < t[j].MinScore
	})
	if !sorted {
		return errors.New("tier table is not ordered by min score")
	}
	if t[0].MinScore != 0 {
		return fmt.Errorf("tier table starts at %d, want 0", t[0].MinScore)
	}
	if t[len(t)-1].MaxScore != 1000 {
		return fmt.Errorf("tier table ends at %d, want 1000", t[len(t)-1].MaxScore)
	}
	for i, tier := range t {
		if tier.MinScore > tier.MaxScore {
			return fmt.Errorf("tier %d has min %d > max %d", i, tier.MinScore, tier.MaxScore)
		}
		if i > 0 && tier.MinScore != t[i-1].MaxScore+1 {
			return fmt.Errorf("gap or overlap between tiers %d and %d", i-1, i)
		}
	}
	return nil
}

// DefaultTiers is the bracket table shipped with the demo dataset.
func DefaultTiers() TierTable {
	return TierTable{
		{MinScore: 0, MaxScore: 199, MaxLimit: 5_000},
		{MinScore: 200, MaxScore: 399, MaxLimit: 20_000},
		{MinScore: 400, MaxScore: 599, MaxLimit: 50_000},
		{MinScore: 600, MaxScore: 799, MaxLimit: 200_000},
		{MinScore: 800, MaxScore: 1000, MaxLimit: 500_000},
	}
}
