package postgresql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds how repository calls are retried.
type RetryPolicy struct {
	Attempts uint64
	Base     time.Duration
	Cap      time.Duration
	Ceiling  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 5,
		Base:     200 * time.Millisecond,
		Cap:      3200 * time.Millisecond,
		Ceiling:  30 * time.Second,
	}
}

// Retrier re-runs a database call with exponential backoff while it fails
// with a transient error.
type Retrier struct {
	policy RetryPolicy
}

func NewRetrier(policy RetryPolicy) *Retrier {
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}
	return &Retrier{policy: policy}
}

// Do runs fn. Calls made inside a transaction run once: a failed statement
// aborts the transaction, so only the caller can retry it.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	if r.policy.Ceiling > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Ceiling)
		defer cancel()
	}

	backoff := retry.NewExponential(r.policy.Base)
	if r.policy.Cap > 0 {
		backoff = retry.WithCappedDuration(r.policy.Cap, backoff)
	}
	backoff = retry.WithMaxRetries(r.policy.Attempts-1, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if IsTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// IsTransient reports whether err is worth retrying: lost connections,
// serialization failures, deadlocks and I/O timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return true
		case pgErr.Code == "57P01", pgErr.Code == "57P03":
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
