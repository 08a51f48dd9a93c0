package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"sat-search.backend/internal/domain/entities"
)

// MintQuoteRepository interface. All state changes go through compare-and-swap
// on the previous state; a swap against a stale state returns
// domainerrors.ErrStateConflict.
type MintQuoteRepository interface {
	Create(ctx context.Context, quote *entities.MintQuote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.MintQuote, error)
	CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MintQuoteState) error
	// MarkIssued swaps paid -> issued and stamps issued_at; exactly one caller
	// can win this swap.
	MarkIssued(ctx context.Context, id uuid.UUID) error
	GetUnpaidUnexpired(ctx context.Context, limit int) ([]*entities.MintQuote, error)
	GetExpiredPending(ctx context.Context, limit int) ([]*entities.MintQuote, error)
	ExpireQuotes(ctx context.Context, ids []uuid.UUID) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
