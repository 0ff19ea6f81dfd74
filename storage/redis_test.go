package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webrunner/engine/task"
)

// setupTestRedis starts an in-process miniredis instance and a client
// pointed at it, following the teacher's
// orchestration/hitl_checkpoint_store_test.go pattern.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisTaskRepositorySaveGetListDelete(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisTaskRepository(client, time.Hour)
	ctx := context.Background()
	tk := task.NewTask("task-1", "book a flight", nil)

	require.NoError(t, repo.Save(ctx, tk))

	got, err := repo.Get(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, "book a flight", got.Goal)
	assert.Equal(t, task.StatusPending, got.Status)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, "task-1"))
	_, err = repo.Get(ctx, "task-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisTaskRepositoryGetMissingReturnsNotFound(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisTaskRepository(client, time.Hour)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisHistoryRepositoryListByGoalNewestFirst(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisHistoryRepository(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, HistoryEntry{TaskID: "t1", Goal: "g", Status: task.StatusCompleted}))
	require.NoError(t, repo.Append(ctx, HistoryEntry{TaskID: "t2", Goal: "g", Status: task.StatusFailed}))

	entries, err := repo.ListByGoal(ctx, "g", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t2", entries[0].TaskID)
	assert.Equal(t, "t1", entries[1].TaskID)
}
