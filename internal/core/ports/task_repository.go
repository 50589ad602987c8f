package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
)

// TaskFilter carries the optional list filters. Zero values mean "no filter";
// set filters are combined with AND.
type TaskFilter struct {
	Status   domain.TaskStatus   // exact match
	Category string              // exact match
	Priority domain.TaskPriority // exact match
	Search   string              // case-insensitive substring of title, description or client_name
	Limit    int                 // 0 = unlimited
}

// Nullable is a patch value that is either absent (Set=false), cleared
// (Set=true, Value=nil) or replaced (Set=true, Value!=nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// TaskPatch is the allow-list of fields a task update may touch. A nil pointer
// (or an unset Nullable) leaves the stored value untouched.
type TaskPatch struct {
	Title          *string
	Description    *string
	Category       *string
	Priority       *domain.TaskPriority
	Status         *domain.TaskStatus
	ClientName     *string
	ClientPhone    *string
	ClientEmail    *string
	Equipment      *string
	EquipmentModel *string
	RequiredParts  *string
	Budget         Nullable[decimal.Decimal]
	DueDate        Nullable[time.Time]
	CompletedAt    Nullable[time.Time]
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Priority == nil && p.Status == nil && p.ClientName == nil &&
		p.ClientPhone == nil && p.ClientEmail == nil && p.Equipment == nil &&
		p.EquipmentModel == nil && p.RequiredParts == nil &&
		!p.Budget.Set && !p.DueDate.Set && !p.CompletedAt.Set
}

// Apply copies every present field of p onto t.
func (p TaskPatch) Apply(t *domain.Task) {
	setString(&t.Title, p.Title)
	setString(&t.Description, p.Description)
	setString(&t.Category, p.Category)
	setString(&t.ClientName, p.ClientName)
	setString(&t.ClientPhone, p.ClientPhone)
	setString(&t.ClientEmail, p.ClientEmail)
	setString(&t.Equipment, p.Equipment)
	setString(&t.EquipmentModel, p.EquipmentModel)
	setString(&t.RequiredParts, p.RequiredParts)
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Budget.Set {
		t.Budget = cloneValue(p.Budget.Value)
	}
	if p.DueDate.Set {
		t.DueDate = cloneValue(p.DueDate.Value)
	}
	if p.CompletedAt.Set {
		t.CompletedAt = cloneValue(p.CompletedAt.Value)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func cloneValue[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// TaskRepository defines persistence operations for tasks. Implementations
// must make Create, Update and Delete atomic with respect to the single
// record they touch.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	// FindByID returns domain.ErrTaskNotFound when no task has the id.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns matching tasks ordered by created_at, newest first.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	// Update applies patch and returns the stored record after the change.
	Update(ctx context.Context, id string, patch TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	// Stats counts tasks by status; a task is overdue when its due date is
	// before today and it is not completed.
	Stats(ctx context.Context, today time.Time) (domain.TaskStats, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}
