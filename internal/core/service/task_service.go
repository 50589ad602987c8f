package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const (
	maxListLimit   = 500
	maxTitleLength = 200
	budgetScale    = 2
)

// maxBudget is the first value that no longer fits NUMERIC(14,2).
var maxBudget = decimal.New(1, 12)

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger, now: time.Now}
}

// WithClock replaces the time source used for created_at and overdue checks.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Today returns the current UTC calendar date.
func (s *TaskService) Today() time.Time {
	return domain.DateOf(s.now())
}

// Create validates input and persists a new task owned by callerID. The
// record is read back from the store so generated fields are returned.
func (s *TaskService) Create(ctx context.Context, in ports.CreateTaskInput, callerID string) (*domain.Task, error) {
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Status == "" {
		in.Status = domain.StatusPending
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Category:       in.Category,
		Priority:       in.Priority,
		Status:         in.Status,
		ClientName:     strings.TrimSpace(in.ClientName),
		ClientPhone:    in.ClientPhone,
		ClientEmail:    in.ClientEmail,
		Equipment:      in.Equipment,
		EquipmentModel: in.EquipmentModel,
		RequiredParts:  in.RequiredParts,
		Budget:         in.Budget,
		TechnicianID:   callerID,
		CreatedAt:      s.now().UTC().Truncate(time.Millisecond),
		CompletedAt:    in.CompletedAt,
	}
	if in.DueDate != nil {
		d := domain.DateOf(*in.DueDate)
		task.DueDate = &d
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	stored, err := s.repo.FindByID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("create task: read back: %w", err)
	}

	s.logger.Info().Str("task_id", stored.ID).Str("technician_id", callerID).Str("category", stored.Category).Msg("task created")
	return stored, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound("get task", err)
	}
	return task, nil
}

// List returns tasks matching filter, newest first.
func (s *TaskService) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	var problems []string
	if filter.Status != "" && !filter.Status.Valid() {
		problems = append(problems, "status must be one of: pending in_progress completed")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		problems = append(problems, "priority must be one of: low medium high")
	}
	if filter.Limit < 0 {
		problems = append(problems, "limit must not be negative")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	filter.Search = strings.TrimSpace(filter.Search)

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies only the fields present in patch. An empty patch is rejected.
func (s *TaskService) Update(ctx context.Context, id string, patch ports.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.ClientName != nil {
		n := strings.TrimSpace(*patch.ClientName)
		patch.ClientName = &n
	}
	if patch.DueDate.Set && patch.DueDate.Value != nil {
		d := domain.DateOf(*patch.DueDate.Value)
		patch.DueDate.Value = &d
	}

	task, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, wrapNotFound("update task", err)
	}

	s.logger.Info().Str("task_id", id).Str("status", string(task.Status)).Msg("task updated")
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapNotFound("delete task", err)
	}
	s.logger.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

// Stats computes the dashboard counters in a single aggregate.
func (s *TaskService) Stats(ctx context.Context) (domain.TaskStats, error) {
	stats, err := s.repo.Stats(ctx, s.Today())
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return stats, nil
}

// Recent returns the n most recently created tasks.
func (s *TaskService) Recent(ctx context.Context, n int) ([]*domain.Task, error) {
	return s.List(ctx, ports.TaskFilter{Limit: n})
}

// Overview returns the status counters and a per-category count for every
// catalog entry, in catalog order.
func (s *TaskService) Overview(ctx context.Context) (*ports.Overview, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}

	catalog := domain.Categories()
	out := &ports.Overview{Stats: stats, Categories: make([]ports.CategoryCount, 0, len(catalog))}
	for _, c := range catalog {
		out.Categories = append(out.Categories, ports.CategoryCount{Category: c, Count: counts[c.ID]})
	}
	return out, nil
}

func wrapNotFound(op string, err error) error {
	if errors.Is(err, domain.ErrTaskNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validateCreate(in ports.CreateTaskInput) error {
	var problems []string
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "title is required")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLength {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if in.Category == "" {
		problems = append(problems, "category is required")
	} else if !domain.IsValidCategory(in.Category) {
		problems = append(problems, fmt.Sprintf("category %q is not in the catalog", in.Category))
	}
	if strings.TrimSpace(in.ClientName) == "" {
		problems = append(problems, "client_name is required")
	}
	if !in.Priority.Valid() {
		problems = append(problems, "priority must be one of: low medium high")
	}
	if !in.Status.Valid() {
		problems = append(problems, "status must be one of: pending in_progress completed")
	}
	if in.Budget != nil {
		problems = append(problems, budgetProblems(*in.Budget)...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validatePatch(p ports.TaskPatch) error {
	var problems []string
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			problems = append(problems, "title must not be empty")
		} else if utf8.RuneCountInString(*p.Title) > maxTitleLength {
			problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
		}
	}
	if p.Category != nil && !domain.IsValidCategory(*p.Category) {
		problems = append(problems, fmt.Sprintf("category %q is not in the catalog", *p.Category))
	}
	if p.ClientName != nil && strings.TrimSpace(*p.ClientName) == "" {
		problems = append(problems, "client_name must not be empty")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		problems = append(problems, "priority must be one of: low medium high")
	}
	if p.Status != nil && !p.Status.Valid() {
		problems = append(problems, "status must be one of: pending in_progress completed")
	}
	if p.Budget.Set && p.Budget.Value != nil {
		problems = append(problems, budgetProblems(*p.Budget.Value)...)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// budgetProblems keeps budgets within what every store holds exactly.
func budgetProblems(b decimal.Decimal) []string {
	var problems []string
	if b.IsNegative() {
		problems = append(problems, "budget must not be negative")
	}
	if !b.Equal(b.Round(budgetScale)) {
		problems = append(problems, fmt.Sprintf("budget must have at most %d decimal places", budgetScale))
	}
	if b.Abs().GreaterThanOrEqual(maxBudget) {
		problems = append(problems, "budget must be less than 1000000000000")
	}
	return problems
}
