package domain

import "time"

// GroupStatus represents the lifecycle state of a matched group.
type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "active"
	GroupStatusInactive GroupStatus = "inactive"
)

// MatchCandidate is an ephemeral pairing of two markets from different venues
// together with the confidence score and the human-readable rationale the
// scorer produced. Candidates are consumed immediately by the assigner and
// never persisted.
type MatchCandidate struct {
	MarketAID string
	MarketBID string
	Score     float64
	Reasons   []string
}

// MarketGroup is a set of markets believed to represent the same real-world
// question. The matcher itself emits at most one market per venue per group;
// looser merges performed by the persistence layer may break that invariant,
// so consumers must not rely on it.
type MarketGroup struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Category  string      `json:"category,omitempty"`
	Status    GroupStatus `json:"status"`
	Markets   []Market    `json:"markets,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AvgLiquidity is the arithmetic mean of member liquidity, with missing
// liquidity counted as zero.
func (g MarketGroup) AvgLiquidity() float64 {
	if len(g.Markets) == 0 {
		return 0
	}
	var total float64
	for _, m := range g.Markets {
		total += m.Liquidity
	}
	return total / float64(len(g.Markets))
}

// Venues returns the distinct venue names contributing to the group.
func (g MarketGroup) Venues() []string {
	seen := make(map[string]bool, len(g.Markets))
	var venues []string
	for _, m := range g.Markets {
		if !seen[m.Venue] {
			seen[m.Venue] = true
			venues = append(venues, m.Venue)
		}
	}
	return venues
}
