// Package memory holds process-local store implementations used when no
// external database is configured, and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

type taskRecord struct {
	task domain.Task
	seq  uint64
}

// TaskRepository keeps tasks in a map guarded by a RWMutex. Records are
// copied in and out so callers never share memory with the store.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*taskRecord
	seq   uint64
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*taskRecord)}
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	r.tasks[t.ID] = &taskRecord{task: cloneTask(t), seq: r.seq}
	return nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t := cloneTask(&rec.task)
	return &t, nil
}

func (r *TaskRepository) List(_ context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	// snapshot under the lock; Update mutates records in place
	r.mu.RLock()
	matched := make([]taskRecord, 0, len(r.tasks))
	for _, rec := range r.tasks {
		if matches(&rec.task, filter) {
			matched = append(matched, taskRecord{task: cloneTask(&rec.task), seq: rec.seq})
		}
	}
	r.mu.RUnlock()

	// newest first; insertion order breaks ties between equal timestamps
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]*domain.Task, 0, len(matched))
	for i := range matched {
		out = append(out, &matched[i].task)
	}
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, id string, patch ports.TaskPatch) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	patch.Apply(&rec.task)
	t := cloneTask(&rec.task)
	return &t, nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *TaskRepository) Stats(_ context.Context, today time.Time) (domain.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s domain.TaskStats
	for _, rec := range r.tasks {
		s.Total++
		switch rec.task.Status {
		case domain.StatusPending:
			s.Pending++
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusCompleted:
			s.Completed++
		}
		if rec.task.IsOverdue(today) {
			s.Overdue++
		}
	}
	return s, nil
}

func (r *TaskRepository) CountByCategory(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int64)
	for _, rec := range r.tasks {
		counts[rec.task.Category]++
	}
	return counts, nil
}

func matches(t *domain.Task, f ports.TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.ClientName), needle) {
			return false
		}
	}
	return true
}

func cloneTask(t *domain.Task) domain.Task {
	c := *t
	if t.Budget != nil {
		b := *t.Budget
		c.Budget = &b
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.CompletedAt != nil {
		ca := *t.CompletedAt
		c.CompletedAt = &ca
	}
	return c
}
