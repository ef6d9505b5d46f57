package matcher

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Assigner partitions a batch of markets into mutually exclusive matched
// groups using maximal greedy 1:1 pairing. This is deliberately NOT
// transitive union-find grouping: when A-B and B-C both clear the floor,
// whichever candidate sorts first wins and the third market stays an orphan
// for the next cycle.
type Assigner struct {
	minScore float64
}

// NewAssigner creates an Assigner that ignores candidates below minScore.
func NewAssigner(minScore float64) *Assigner {
	return &Assigner{minScore: minScore}
}

// Assign walks the candidates from highest to lowest score (ties keep the
// pairwise-scan discovery order) and forms a two-market group for each
// candidate whose markets are both still unused. A market never appears in
// more than one group. The canonical title and category come from the member
// with the highest popularity score.
func (a *Assigner) Assign(markets []domain.Market, candidates []domain.MatchCandidate) []domain.MarketGroup {
	byID := make(map[string]domain.Market, len(markets))
	for _, m := range markets {
		byID[m.ID] = m
	}

	eligible := make([]domain.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= a.minScore {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Score > eligible[j].Score
	})

	used := make(map[string]bool)
	var groups []domain.MarketGroup
	for _, c := range eligible {
		if used[c.MarketAID] || used[c.MarketBID] {
			continue
		}
		ma, okA := byID[c.MarketAID]
		mb, okB := byID[c.MarketBID]
		if !okA || !okB {
			continue
		}
		used[c.MarketAID] = true
		used[c.MarketBID] = true

		canonical := ma
		if mb.Popularity() > ma.Popularity() {
			canonical = mb
		}

		now := time.Now().UTC()
		groups = append(groups, domain.MarketGroup{
			ID:        uuid.New().String(),
			Title:     canonical.Title,
			Category:  canonical.Category,
			Status:    domain.GroupStatusActive,
			Markets:   []domain.Market{ma, mb},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return groups
}
