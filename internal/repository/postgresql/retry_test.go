package postgresql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Base: time.Millisecond, Cap: 4 * time.Millisecond, Ceiling: time.Second}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("update: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"no rows", pgx.ErrNoRows, false},
		{"canceled", context.Canceled, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetrier_RetriesTransientErrorsUntilSuccess(t *testing.T) {
	r := NewRetrier(fastPolicy())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrier_GivesUpAfterAttempts(t *testing.T) {
	r := NewRetrier(fastPolicy())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: "08006"}
	})

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
	assert.Equal(t, 5, calls)
}

func TestRetrier_DoesNotRetryPermanentErrors(t *testing.T) {
	r := NewRetrier(fastPolicy())
	calls := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return pgx.ErrNoRows
	})

	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 1, calls)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
