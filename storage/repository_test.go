package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/task"
)

func TestInMemoryTaskRepositorySaveGetListDelete(t *testing.T) {
	repo := NewInMemoryTaskRepository()
	ctx := context.Background()
	tk := task.NewTask("task-1", "book a flight", nil)

	require.NoError(t, repo.Save(ctx, tk))

	got, err := repo.Get(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "book a flight", got.Goal)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "task-1"))
	_, err = repo.Get(ctx, "task-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryHistoryRepositoryListByGoalNewestFirst(t *testing.T) {
	repo := NewInMemoryHistoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, HistoryEntry{TaskID: "t1", Goal: "g", Status: task.StatusCompleted}))
	require.NoError(t, repo.Append(ctx, HistoryEntry{TaskID: "t2", Goal: "g", Status: task.StatusFailed}))
	require.NoError(t, repo.Append(ctx, HistoryEntry{TaskID: "t3", Goal: "other", Status: task.StatusCompleted}))

	entries, err := repo.ListByGoal(ctx, "g", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t2", entries[0].TaskID)
	assert.Equal(t, "t1", entries[1].TaskID)
}

func TestInMemoryHistoryRepositoryRespectsLimit(t *testing.T) {
	repo := NewInMemoryHistoryRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, HistoryEntry{Goal: "g"}))
	}

	entries, err := repo.ListByGoal(ctx, "g", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
