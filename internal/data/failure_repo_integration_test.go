package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinprotocol/oyster-watchdog/internal/domain/model"
	"github.com/marlinprotocol/oyster-watchdog/internal/testutil"
)

func TestFailureRepo_Integration_InsertAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFailureRepo(db)
	ctx := context.Background()

	before := time.Now().Unix()

	first, err := repo.Insert(ctx, &model.CreateFailureRequest{
		Kind:     model.FailureKindReachability,
		Job:      "0xabc123",
		Operator: "0x2222222222222222222222222222222222222222",
		Error:    "failed to resolve instance address",
	})
	require.NoError(t, err)

	assert.Positive(t, first.ID)
	assert.Equal(t, "0xabc123", first.Job)
	// Empty IP is stored as the unknown sentinel.
	assert.Equal(t, model.IPUnknown, first.IP)
	assert.GreaterOrEqual(t, first.Timestamp, before)
	assert.Equal(t, model.FailureKindReachability, first.Kind)

	second, err := repo.Insert(ctx, &model.CreateFailureRequest{
		Kind:     model.FailureKindReachability,
		Job:      "0xdef456",
		Operator: "0x2222222222222222222222222222222222222222",
		IP:       "3.4.5.6",
		Error:    "instance reachability test failed",
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	// Newest first.
	records, err := repo.List(ctx, model.FailureKindReachability, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0xdef456", records[0].Job)
	assert.Equal(t, "0xabc123", records[1].Job)

	// The endpoint table is independent.
	records, err = repo.List(ctx, model.FailureKindEndpoint, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFailureRepo_Integration_ListPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFailureRepo(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.Insert(ctx, &model.CreateFailureRequest{
			Kind:     model.FailureKindEndpoint,
			Job:      "0xjob",
			Operator: "0xop",
			IP:       "3.4.5.6",
			Error:    "ip key not found in refresh response",
		})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, model.FailureKindEndpoint, &model.FailureListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int32(4), page[0].ID)
	assert.Equal(t, int32(3), page[1].ID)
}
