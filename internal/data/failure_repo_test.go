package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
)

func TestTableForKind(t *testing.T) {
	t.Parallel()

	table, err := tableForKind(model.FailureKindReachability)
	require.NoError(t, err)
	assert.Equal(t, "reachability_errors", table)

	table, err = tableForKind(model.FailureKindEndpoint)
	require.NoError(t, err)
	assert.Equal(t, "operator_endpoint_errors", table)

	_, err = tableForKind(model.FailureKind("bogus"))
	require.Error(t, err)
}

// Validation runs before any database access, so these paths are exercised
// without a connection.
func TestFailureRepoInsertValidation(t *testing.T) {
	t.Parallel()

	repo := NewFailureRepo(nil)

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()

		_, err := repo.Insert(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("missing kind", func(t *testing.T) {
		t.Parallel()

		_, err := repo.Insert(context.Background(), &model.CreateFailureRequest{
			Job:      "0xabc",
			Operator: "0xdef",
			Error:    "unreachable",
		})
		require.Error(t, err)
	})

	t.Run("missing job", func(t *testing.T) {
		t.Parallel()

		_, err := repo.Insert(context.Background(), &model.CreateFailureRequest{
			Kind:     model.FailureKindReachability,
			Operator: "0xdef",
			Error:    "unreachable",
		})
		require.Error(t, err)
	})
}

func TestFailureRepoListRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	repo := NewFailureRepo(nil)
	_, err := repo.List(context.Background(), model.FailureKind("bogus"), nil)
	require.Error(t, err)
}

func TestFailureListOptionsNormalize(t *testing.T) {
	t.Parallel()

	opts := model.FailureListOptions{Limit: -5, Offset: -1}
	opts.Normalize()
	assert.Equal(t, 50, opts.Limit)
	assert.Equal(t, 0, opts.Offset)

	opts = model.FailureListOptions{Limit: 10000, Offset: 20}
	opts.Normalize()
	assert.Equal(t, 500, opts.Limit)
	assert.Equal(t, 20, opts.Offset)
}
