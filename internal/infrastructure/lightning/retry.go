package lightning

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times with doubling backoff, stopping early on
// success, on a fatal error, or when the context is done. Intended for
// read-only operations and invoice creation only; paying an invoice must not
// go through here.
func Retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
