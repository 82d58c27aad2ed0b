package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/marlinprotocol/oyster-watchdog/internal/errors"
)

type customError struct{}

func (customError) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error uses code", err: apperrors.RPC("head lookup failed", errors.New("dial")), want: "rpc"},
		{name: "wrapped app error", err: fmt.Errorf("tick: %w", apperrors.Resolution("gave up", nil)), want: "resolution"},
		{name: "plain error uses type", err: customError{}, want: "errors_customerror"},
		{name: "wrapped plain error unwraps", err: fmt.Errorf("outer: %w", customError{}), want: "errors_customerror"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}
