package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations. The counter
// increment and its search event commit under one Do call.
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
