package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "tasklist/internal/domain"

	"github.com/google/uuid"
)

type memTask struct {
	task dom.Task
	seq  uint64
}

// MemoryTaskRepo keeps tasks in process memory. Used for STORE_DRIVER=memory and tests.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]memTask
	seq   uint64
	now   func() time.Time
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return NewMemoryTaskRepoWithClock(func() time.Time { return time.Now().UTC() })
}

// NewMemoryTaskRepoWithClock is NewMemoryTaskRepo with an injectable clock.
func NewMemoryTaskRepoWithClock(now func() time.Time) *MemoryTaskRepo {
	return &MemoryTaskRepo{tasks: make(map[string]memTask), now: now}
}

func (r *MemoryTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	r.tasks[t.ID] = memTask{task: t, seq: r.seq}
	return t, nil
}

func (r *MemoryTaskRepo) GetByID(_ context.Context, id string) (dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mt, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, dom.ErrNotFound
	}
	return mt.task, nil
}

// List orders by CreatedAt descending; insertion order breaks ties.
func (r *MemoryTaskRepo) List(_ context.Context) ([]dom.Task, error) {
	r.mu.RLock()
	all := make([]memTask, 0, len(r.tasks))
	for _, mt := range r.tasks {
		all = append(all, mt)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].task.CreatedAt.Equal(all[j].task.CreatedAt) {
			return all[i].task.CreatedAt.After(all[j].task.CreatedAt)
		}
		return all[i].seq > all[j].seq
	})
	out := make([]dom.Task, len(all))
	for i := range all {
		out[i] = all[i].task
	}
	return out, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, id string, patch dom.TaskPatch) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mt, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, dom.ErrNotFound
	}
	if patch.Title != nil {
		mt.task.Title = *patch.Title
	}
	if patch.Completed != nil {
		mt.task.Completed = *patch.Completed
	}
	r.tasks[id] = mt
	return mt.task, nil
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return dom.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepo) Ping(context.Context) error { return nil }
