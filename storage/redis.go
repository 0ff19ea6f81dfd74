package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/webrunner/engine/task"
)

// RedisTaskRepository implements TaskRepository using Redis, grounded on
// RedisStateStore's key-per-entity + list-index layout: one key per task
// plus a "all task ids" set for List.
type RedisTaskRepository struct {
	client *redis.Client
	ttl    time.Duration
}

const (
	redisTaskKeyPrefix = "webrunner:task:"
	redisTaskIndexKey  = "webrunner:tasks"
)

// NewRedisTaskRepository builds a Redis-backed TaskRepository. ttl is how
// long a task snapshot is retained; zero means no expiry.
func NewRedisTaskRepository(client *redis.Client, ttl time.Duration) *RedisTaskRepository {
	return &RedisTaskRepository{client: client, ttl: ttl}
}

func (r *RedisTaskRepository) Save(ctx context.Context, t *task.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("storage: marshal task: %w", err)
	}
	key := redisTaskKeyPrefix + t.ID
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("storage: save task: %w", err)
	}
	if err := r.client.SAdd(ctx, redisTaskIndexKey, t.ID).Err(); err != nil {
		return fmt.Errorf("storage: index task: %w", err)
	}
	return nil
}

func (r *RedisTaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	data, err := r.client.Get(ctx, redisTaskKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get task: %w", err)
	}
	var t task.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("storage: unmarshal task: %w", err)
	}
	return &t, nil
}

func (r *RedisTaskRepository) List(ctx context.Context) ([]*task.Task, error) {
	ids, err := r.client.SMembers(ctx, redisTaskIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: list task ids: %w", err)
	}
	out := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := r.Get(ctx, id)
		if err != nil {
			if err == ErrNotFound {
				continue // expired since indexing; skip rather than fail the whole list
			}
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *RedisTaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisTaskKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("storage: delete task: %w", err)
	}
	return r.client.SRem(ctx, redisTaskIndexKey, id).Err()
}

// RedisHistoryRepository implements ExecutionHistoryRepository using Redis:
// one list per goal, newest entry pushed to the head, mirroring
// RedisStateStore's per-workflow execution list.
type RedisHistoryRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func redisHistoryKey(goal string) string {
	return "webrunner:history:" + goal
}

// NewRedisHistoryRepository builds a Redis-backed ExecutionHistoryRepository.
func NewRedisHistoryRepository(client *redis.Client, ttl time.Duration) *RedisHistoryRepository {
	return &RedisHistoryRepository{client: client, ttl: ttl}
}

func (r *RedisHistoryRepository) Append(ctx context.Context, entry HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("storage: marshal history entry: %w", err)
	}
	key := redisHistoryKey(entry.Goal)
	if err := r.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("storage: append history: %w", err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("storage: set history ttl: %w", err)
		}
	}
	return nil
}

func (r *RedisHistoryRepository) ListByGoal(ctx context.Context, goal string, limit int) ([]HistoryEntry, error) {
	stop := int64(limit - 1)
	if limit <= 0 {
		stop = -1
	}
	raw, err := r.client.LRange(ctx, redisHistoryKey(goal), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: list history: %w", err)
	}
	out := make([]HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("storage: unmarshal history entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

var (
	_ TaskRepository             = (*RedisTaskRepository)(nil)
	_ ExecutionHistoryRepository = (*RedisHistoryRepository)(nil)
)
