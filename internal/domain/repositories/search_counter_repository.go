package repositories

import (
	"context"

	"sat-search.backend/internal/domain/entities"
)

// SearchCounterRepository persists the single all-time search counter row.
// Increment is atomic at the store level so concurrent gates never lose an
// update.
type SearchCounterRepository interface {
	Increment(ctx context.Context) (uint64, error)
	Get(ctx context.Context) (uint64, error)
}

// SearchEventRepository persists per-redemption audit records
type SearchEventRepository interface {
	Create(ctx context.Context, event *entities.SearchEvent) error
}
