package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeltQuoteState represents the lifecycle state of a melt quote
type MeltQuoteState string

const (
	MeltQuoteStateUnpaid  MeltQuoteState = "unpaid"
	MeltQuoteStatePending MeltQuoteState = "pending"
	MeltQuoteStatePaid    MeltQuoteState = "paid"
	MeltQuoteStateFailed  MeltQuoteState = "failed"
	// MeltQuoteStateUnknown means the node could not confirm success or
	// failure. Requires operator reconciliation; the payment itself is never
	// retried from here.
	MeltQuoteStateUnknown MeltQuoteState = "unknown"
)

// MeltQuote represents a request to pay out over Lightning. A quote is
// swapped to pending before the backend pay call so that a crash between the
// two is recovered by reconciliation, never by a second pay attempt.
type MeltQuote struct {
	ID              uuid.UUID      `json:"id"`
	Request         string         `json:"request"` // target bolt11 invoice
	PaymentHash     string         `json:"paymentHash"`
	Amount          uint64         `json:"amount"` // sats
	FeeReserve      uint64         `json:"feeReserve"`
	State           MeltQuoteState `json:"state"`
	PaymentPreimage string         `json:"paymentPreimage,omitempty"` // set only when paid
	FeePaid         uint64         `json:"feePaid"`
	// AmountReceived is the total value redeemed from the payer's token,
	// recorded before the pay call so a reconciler can compute the refund.
	AmountReceived uint64 `json:"amountReceived"`
	// ChangeToken carries the value returned to the payer: the unused fee
	// reserve on a paid quote, everything redeemed on a failed one.
	ChangeToken string    `json:"changeToken,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CanTransition reports whether moving from s to the target state is legal
func (s MeltQuoteState) CanTransition(to MeltQuoteState) bool {
	switch s {
	case MeltQuoteStateUnpaid:
		return to == MeltQuoteStatePending
	case MeltQuoteStatePending:
		return to == MeltQuoteStatePaid || to == MeltQuoteStateFailed || to == MeltQuoteStateUnknown
	default:
		return false
	}
}

// IsExpired reports whether the quote is past its expiry at the given time
func (q *MeltQuote) IsExpired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}
