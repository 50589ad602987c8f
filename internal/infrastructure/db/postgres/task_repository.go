package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

const taskColumns = `id, title, description, category, priority, status,
	client_name, client_phone, client_email, equipment, equipment_model, required_parts,
	budget::text, technician_id, due_date, created_at, completed_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, category, priority, status,
			client_name, client_phone, client_email, equipment, equipment_model, required_parts,
			budget, technician_id, due_date, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::numeric, $14, $15, $16, $17)`,
		t.ID, t.Title, t.Description, t.Category, string(t.Priority), string(t.Status),
		t.ClientName, t.ClientPhone, t.ClientEmail, t.Equipment, t.EquipmentModel, t.RequiredParts,
		decimalArg(t.Budget), t.TechnicianID, t.DueDate, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.Priority != "" {
		where = append(where, "priority = "+arg(string(filter.Priority)))
	}
	if filter.Search != "" {
		p := arg("%" + escapeLike(filter.Search) + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s OR client_name ILIKE %[1]s)", p))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update writes only the columns named by the patch in one statement.
func (r *TaskRepository) Update(ctx context.Context, id string, patch ports.TaskPatch) (*domain.Task, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	setString := func(col string, v *string) {
		if v != nil {
			set(col, *v)
		}
	}

	setString("title", patch.Title)
	setString("description", patch.Description)
	setString("category", patch.Category)
	setString("client_name", patch.ClientName)
	setString("client_phone", patch.ClientPhone)
	setString("client_email", patch.ClientEmail)
	setString("equipment", patch.Equipment)
	setString("equipment_model", patch.EquipmentModel)
	setString("required_parts", patch.RequiredParts)
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Budget.Set {
		args = append(args, decimalArg(patch.Budget.Value))
		sets = append(sets, fmt.Sprintf("budget = $%d::numeric", len(args)))
	}
	if patch.DueDate.Set {
		set("due_date", patch.DueDate.Value)
	}
	if patch.CompletedAt.Set {
		set("completed_at", patch.CompletedAt.Value)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), taskColumns)

	t, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Stats(ctx context.Context, today time.Time) (domain.TaskStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.TaskStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status <> 'completed' AND due_date IS NOT NULL AND due_date < $1::date)
		FROM tasks`, domain.DateOf(today),
	).Scan(&s.Total, &s.Pending, &s.InProgress, &s.Completed, &s.Overdue)
	if err != nil {
		return domain.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}
	return s, nil
}

func (r *TaskRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT category, COUNT(*) FROM tasks GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			category string
			n        int64
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t                  domain.Task
		priority, status   string
		budget             *string
		dueDate, completed *time.Time
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &priority, &status,
		&t.ClientName, &t.ClientPhone, &t.ClientEmail, &t.Equipment, &t.EquipmentModel, &t.RequiredParts,
		&budget, &t.TechnicianID, &dueDate, &t.CreatedAt, &completed,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = domain.TaskPriority(priority)
	t.Status = domain.TaskStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	if budget != nil {
		d, err := decimal.NewFromString(*budget)
		if err != nil {
			return nil, fmt.Errorf("parse budget %q: %w", *budget, err)
		}
		t.Budget = &d
	}
	if dueDate != nil {
		d := domain.DateOf(*dueDate)
		t.DueDate = &d
	}
	if completed != nil {
		c := completed.UTC()
		t.CompletedAt = &c
	}
	return &t, nil
}

// decimalArg renders a budget as numeric text, or nil for SQL NULL.
func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
