package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"sat-search.backend/internal/domain/entities"
)

// MeltQuoteRepository interface
type MeltQuoteRepository interface {
	Create(ctx context.Context, quote *entities.MeltQuote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.MeltQuote, error)
	CompareAndSwapState(ctx context.Context, id uuid.UUID, from, to entities.MeltQuoteState) error
	// SetReceived records the value redeemed from the payer's token on a
	// pending quote, so a later reconciliation can compute the refund.
	SetReceived(ctx context.Context, id uuid.UUID, received uint64) error
	// MarkPaid swaps pending -> paid, recording the preimage, the fee
	// actually paid, and the change token covering the unused reserve.
	MarkPaid(ctx context.Context, id uuid.UUID, preimage string, feePaid uint64, changeToken string) error
	// MarkFailed swaps pending -> failed, recording the change token that
	// returns everything redeemed to the payer.
	MarkFailed(ctx context.Context, id uuid.UUID, changeToken string) error
	// MarkUnknown swaps pending -> unknown when the node has no record of the
	// payment. Flagged for operator follow-up, never auto-retried.
	MarkUnknown(ctx context.Context, id uuid.UUID) error
	GetPending(ctx context.Context, limit int) ([]*entities.MeltQuote, error)
	// DeleteExpiredBefore drops unpaid quotes whose expiry is older than the
	// cutoff. Only unpaid quotes are eligible; every other state is either in
	// flight or a settlement record.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
