package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const quoteCachePrefix = "outstanding_quote:"

// RememberQuote records the open payment quote handed to a caller so repeated
// unpaid requests reuse it instead of minting a fresh invoice each time. The
// TTL should match the quote expiry.
func RememberQuote(ctx context.Context, caller, quoteID string, ttl time.Duration) error {
	return Set(ctx, quoteCachePrefix+caller, quoteID, ttl)
}

// OutstandingQuote returns the quote last handed to the caller, or "" when
// none is cached.
func OutstandingQuote(ctx context.Context, caller string) (string, error) {
	id, err := Get(ctx, quoteCachePrefix+caller)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// ForgetQuote drops the cached quote for a caller
func ForgetQuote(ctx context.Context, caller string) error {
	return Del(ctx, quoteCachePrefix+caller)
}
