package entities

import (
	"time"

	"github.com/google/uuid"
)

// SearchCount is the all-time number of successfully authorized searches
type SearchCount struct {
	AllTimeSearchCount uint64 `json:"all_time_search_count"`
}

// SearchResult is a single result returned to an authorized caller
type SearchResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Age         string `json:"age,omitempty"`
}

// SearchEvent is the audit record of one redemption. It commits in the same
// transaction as the counter increment so the two can never diverge.
type SearchEvent struct {
	ID          uuid.UUID `json:"id"`
	TokenAmount uint64    `json:"tokenAmount"`
	QueryHash   string    `json:"queryHash"`
	CreatedAt   time.Time `json:"createdAt"`
}
