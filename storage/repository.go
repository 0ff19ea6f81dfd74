// Package storage implements the engine's optional persistence layer (spec
// §6.3): TaskRepository and ExecutionHistoryRepository, each with an
// in-memory implementation (tests, single-process use) and a Redis-backed
// implementation, grounded on the teacher's
// orchestration/workflow_state.go StateStore/RedisStateStore/
// InMemoryStateStore trio. The engine itself never requires persistence —
// these are optional collaborators an embedder wires in.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/webrunner/engine/task"
)

// TaskRepository persists Task snapshots by ID.
type TaskRepository interface {
	Save(ctx context.Context, t *task.Task) error
	Get(ctx context.Context, id string) (*task.Task, error)
	List(ctx context.Context) ([]*task.Task, error)
	Delete(ctx context.Context, id string) error
}

// HistoryEntry is one completed task's terminal record, kept independently
// of the live Task (which an embedder may mutate or discard) so a caller
// can query past runs.
type HistoryEntry struct {
	TaskID   string
	Goal     string
	Status   task.Status
	Summary  string
	Snapshot *task.Task
}

// ExecutionHistoryRepository persists terminal task records, indexed for
// per-goal lookback.
type ExecutionHistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	ListByGoal(ctx context.Context, goal string, limit int) ([]HistoryEntry, error)
}

// ErrNotFound is returned by Get when no record exists for the given ID.
var ErrNotFound = fmt.Errorf("storage: not found")

// InMemoryTaskRepository is a map+mutex TaskRepository, grounded on
// InMemoryStateStore.
type InMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

// NewInMemoryTaskRepository builds an empty in-memory TaskRepository.
func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{tasks: make(map[string]*task.Task)}
}

func (r *InMemoryTaskRepository) Save(ctx context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *InMemoryTaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (r *InMemoryTaskRepository) List(ctx context.Context) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *InMemoryTaskRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

// InMemoryHistoryRepository is a slice+mutex ExecutionHistoryRepository.
type InMemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewInMemoryHistoryRepository builds an empty in-memory history repository.
func NewInMemoryHistoryRepository() *InMemoryHistoryRepository {
	return &InMemoryHistoryRepository{}
}

func (r *InMemoryHistoryRepository) Append(ctx context.Context, entry HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *InMemoryHistoryRepository) ListByGoal(ctx context.Context, goal string, limit int) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []HistoryEntry
	for i := len(r.entries) - 1; i >= 0 && (limit <= 0 || len(matched) < limit); i-- {
		if r.entries[i].Goal == goal {
			matched = append(matched, r.entries[i])
		}
	}
	return matched, nil
}

var (
	_ TaskRepository             = (*InMemoryTaskRepository)(nil)
	_ ExecutionHistoryRepository = (*InMemoryHistoryRepository)(nil)
)
