package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier() *Retrier {
	r := NewRetrier(zerolog.Nop())
	r.maxRetries = 3
	r.initialInterval = time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = 50 * time.Millisecond
	return r
}

func TestRetrier_RetriesSerializationFailures(t *testing.T) {
	for _, code := range []string{pgErrDeadlock, pgErrSerializationFailure} {
		t.Run(code, func(t *testing.T) {
			r := fastRetrier()

			attempts := 0
			err := r.Retry(context.Background(), func() error {
				attempts++
				if attempts < 2 {
					return &pgconn.PgError{Code: code}
				}
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, 2, attempts)
		})
	}
}

func TestRetrier_StopsOnPermanentError(t *testing.T) {
	r := fastRetrier()
	permanent := &pgconn.PgError{Code: pgErrUniqueViolation}

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestRetrier_GivesUpAfterMaxRetries(t *testing.T) {
	r := fastRetrier()
	r.maxRetries = 2

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&pgconn.PgError{Code: pgErrDeadlock}))
	assert.True(t, isRetryableError(&pgconn.PgError{Code: pgErrSerializationFailure}))
	assert.False(t, isRetryableError(&pgconn.PgError{Code: pgErrForeignKeyViolation}))
	assert.False(t, isRetryableError(errors.New("other")))
}
