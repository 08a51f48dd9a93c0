package lightning

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// InvoiceState is the settlement state of an inbound invoice
type InvoiceState string

const (
	InvoiceStatePaid   InvoiceState = "paid"
	InvoiceStateUnpaid InvoiceState = "unpaid"
)

// PaymentState is the terminal state of an outbound payment attempt
type PaymentState string

const (
	PaymentStatePaid    PaymentState = "paid"
	PaymentStatePending PaymentState = "pending"
	PaymentStateFailed  PaymentState = "failed"
	// PaymentStateUnknown means the node has no record of the payment
	PaymentStateUnknown PaymentState = "unknown"
)

// Invoice is a created inbound payment request
type Invoice struct {
	PaymentHash    string
	PaymentRequest string // BOLT11 encoded invoice
}

// PaymentResult is the observed outcome of an outbound payment
type PaymentResult struct {
	State       PaymentState
	Preimage    string
	FeePaidSats uint64
}

// Client wraps the external Lightning node. Only the status lookups are
// transport-idempotent; PayInvoice must never be retried by callers — a
// transport failure there does not mean the payment was not sent.
type Client interface {
	CreateInvoice(ctx context.Context, amountSats uint64, memo string, expiry time.Duration) (*Invoice, error)
	InvoiceStatus(ctx context.Context, paymentHash string) (InvoiceState, error)
	PayInvoice(ctx context.Context, bolt11 string, maxFeeSats uint64) (*PaymentResult, error)
	PaymentStatus(ctx context.Context, paymentHash string) (*PaymentResult, error)
}

// BackendError normalizes node failures into retryable (network, timeout,
// node busy) and fatal (bad request, auth) classes so each call site can pick
// the right retry policy.
type BackendError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("lightning %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is a transient backend failure
func IsRetryable(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Retryable
}

// IsFatal reports whether the error is a non-transient backend failure
func IsFatal(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && !be.Retryable
}
