package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/backend/internal/db"
	"github.com/flowcanvas/backend/internal/model"
)

func setupRepo(t *testing.T) *ActivityRepository {
	t.Helper()

	database, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewActivityRepository(database)
}

func record(workflowID, userID, activity string, at time.Time) *model.ActivityRecord {
	return &model.ActivityRecord{
		WorkflowID: workflowID,
		UserID:     userID,
		Username:   userID,
		Activity:   activity,
		CreatedAt:  at,
	}
}

func TestActivityInsertAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		rec := record("wf-1", "alice", fmt.Sprintf("activity-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, rec))
		assert.NotZero(t, rec.ID, "insert should backfill the row ID")
	}
	require.NoError(t, repo.Insert(ctx, record("wf-2", "bob", "other-room", base)))

	records, err := repo.ListByWorkflow(ctx, "wf-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 5)

	// Newest first.
	assert.Equal(t, "activity-4", records[0].Activity)
	assert.Equal(t, "activity-0", records[4].Activity)
	for _, rec := range records {
		assert.Equal(t, "wf-1", rec.WorkflowID)
	}
}

func TestActivityListLimit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, record("wf-1", "alice", fmt.Sprintf("a-%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	records, err := repo.ListByWorkflow(ctx, "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a-4", records[0].Activity)
	assert.Equal(t, "a-3", records[1].Activity)
}

func TestActivityListUnknownWorkflow(t *testing.T) {
	repo := setupRepo(t)

	records, err := repo.ListByWorkflow(context.Background(), "wf-none", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestActivityCountAndPrune(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).UTC()
	recent := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, record("wf-1", "alice", "old", old)))
	require.NoError(t, repo.Insert(ctx, record("wf-1", "alice", "recent", recent)))

	count, err := repo.CountByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	pruned, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	records, err := repo.ListByWorkflow(ctx, "wf-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recent", records[0].Activity)
}
