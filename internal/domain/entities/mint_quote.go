package entities

import (
	"time"

	"github.com/google/uuid"
)

// MintQuoteState represents the lifecycle state of a mint quote
type MintQuoteState string

const (
	MintQuoteStateUnpaid  MintQuoteState = "unpaid"
	MintQuoteStatePaid    MintQuoteState = "paid"
	MintQuoteStateIssued  MintQuoteState = "issued"
	MintQuoteStateExpired MintQuoteState = "expired"
)

// MintQuote represents a request to receive an inbound Lightning payment.
// State moves forward only: unpaid -> paid -> issued, or unpaid|paid ->
// expired once ExpiresAt has passed. Issued quotes never expire.
type MintQuote struct {
	ID          uuid.UUID      `json:"id"`
	Amount      uint64         `json:"amount"` // sats
	Request     string         `json:"request"` // bolt11 invoice presented to the payer
	PaymentHash string         `json:"paymentHash"`
	State       MintQuoteState `json:"state"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	IssuedAt    *time.Time     `json:"issuedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CanTransition reports whether moving from s to the target state respects
// the forward-only lifecycle.
func (s MintQuoteState) CanTransition(to MintQuoteState) bool {
	switch s {
	case MintQuoteStateUnpaid:
		return to == MintQuoteStatePaid || to == MintQuoteStateExpired
	case MintQuoteStatePaid:
		return to == MintQuoteStateIssued || to == MintQuoteStateExpired
	default:
		return false
	}
}

// IsExpired reports whether the quote is past its expiry at the given time
func (q *MintQuote) IsExpired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// SplitAmount decomposes an amount into descending powers of two, the
// denomination set issued against a paid quote.
func SplitAmount(amount uint64) []uint64 {
	var split []uint64
	for bit := 63; bit >= 0; bit-- {
		d := uint64(1) << uint(bit)
		if amount&d != 0 {
			split = append(split, d)
		}
	}
	return split
}
