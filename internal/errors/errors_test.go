package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := RPC("query head", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "query head: boom", err.Error())
	assert.Equal(t, ErrCodeRPC, CodeOf(err))
}

func TestCodeOfWrappedError(t *testing.T) {
	t.Parallel()

	inner := Resolution("no address", errors.New("timeout"))
	wrapped := fmt.Errorf("resolve job: %w", inner)

	assert.Equal(t, ErrCodeResolution, CodeOf(wrapped))
}

func TestCodeOfPlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
}

func TestMapDBError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want ErrorCode
	}{
		{"nil passes through", nil, ""},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"no rows", pgx.ErrNoRows, ErrCodeNotFound},
		{
			"connection failure",
			&pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			ErrCodeUnavailable,
		},
		{
			"not null violation",
			&pgconn.PgError{Code: pgerrcode.NotNullViolation},
			ErrCodeValidation,
		},
		{
			"other pg error",
			&pgconn.PgError{Code: pgerrcode.InternalError},
			ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapDBError(tt.in)
			if tt.in == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want, CodeOf(got))
			require.ErrorIs(t, got, tt.in)
		})
	}
}

func TestMapDBErrorPassesThroughUnknown(t *testing.T) {
	t.Parallel()

	err := errors.New("not a db error")
	assert.Same(t, err, MapDBError(err))
}
