package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// CreateTaskInput carries the client-supplied fields of a new task.
// The technician is never part of the input; it comes from the caller.
type CreateTaskInput struct {
	Title          string
	Description    string
	Category       string
	Priority       domain.TaskPriority // defaults to medium
	Status         domain.TaskStatus   // defaults to pending
	ClientName     string
	ClientPhone    string
	ClientEmail    string
	Equipment      string
	EquipmentModel string
	RequiredParts  string
	Budget         *decimal.Decimal
	DueDate        *time.Time
	CompletedAt    *time.Time
}

// CategoryCount pairs a catalog entry with the number of tasks filed under it.
type CategoryCount struct {
	Category domain.Category
	Count    int64
}

// Overview is the dashboard overview: status counts plus per-category counts.
type Overview struct {
	Stats      domain.TaskStats
	Categories []CategoryCount
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	Create(ctx context.Context, input CreateTaskInput, callerID string) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (domain.TaskStats, error)
	Recent(ctx context.Context, n int) ([]*domain.Task, error)
	Overview(ctx context.Context) (*Overview, error)
	// Today returns the current calendar date used for overdue checks.
	Today() time.Time
}
