// Package venue defines the contract for prediction-market venue clients.
// Each client fetches the venue's active markets and maps them into the
// shared domain model; paging, DTO decoding, and price normalization stay
// inside the client.
package venue

import (
	"context"
	"fmt"

	"github.com/quantcluster/marketlens/internal/domain"
)

// Client fetches the current active market listing from one venue.
type Client interface {
	// Name returns the venue identifier used in domain.Market.Venue.
	Name() string

	// FetchMarkets returns the venue's active markets. Clients page through
	// the venue's listing API internally and return the full set.
	FetchMarkets(ctx context.Context) ([]domain.Market, error)
}

// CheckHTTPStatus maps a non-2xx response to an error carrying a truncated
// copy of the venue's response body for diagnostics.
func CheckHTTPStatus(venue string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Errorf("venue %s: http %d: %s", venue, status, body)
}
