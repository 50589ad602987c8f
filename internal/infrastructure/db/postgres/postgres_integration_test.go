//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
	"github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/postgres"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	tasks     *postgres.TaskRepository
	users     *postgres.UserRepository
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("app_gestor"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = postgres.Connect(ctx, postgres.Config{DSN: dsn, MaxConns: 8})
	s.Require().NoError(err)
	s.Require().NoError(postgres.EnsureSchema(ctx, s.pool))
	// idempotent
	s.Require().NoError(postgres.EnsureSchema(ctx, s.pool))

	s.tasks = postgres.NewTaskRepository(s.pool)
	s.users = postgres.NewUserRepository(s.pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE tasks, users")
	s.Require().NoError(err)
}

func newTask(title string, created time.Time) *domain.Task {
	return &domain.Task{
		ID:           uuid.NewString(),
		Title:        title,
		Category:     "reparo_pc",
		Priority:     domain.PriorityMedium,
		Status:       domain.StatusPending,
		ClientName:   "Cliente",
		TechnicianID: "tech-1",
		CreatedAt:    created.UTC().Truncate(time.Millisecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	budget := decimal.RequireFromString("8500.50")
	due := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)

	in := newTask("PC Gamer", time.Now())
	in.Budget = &budget
	in.DueDate = &due
	in.Description = "RTX 4070"
	s.Require().NoError(s.tasks.Create(ctx, in))

	got, err := s.tasks.FindByID(ctx, in.ID)
	s.Require().NoError(err)
	s.Equal(in.Title, got.Title)
	s.Equal(in.Description, got.Description)
	s.True(got.Budget.Equal(budget), "budget %s", got.Budget)
	s.True(got.DueDate.Equal(due), "due %s", got.DueDate)
	s.True(got.CreatedAt.Equal(in.CreatedAt))
	s.Nil(got.CompletedAt)

	_, err = s.tasks.FindByID(ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *PostgresStoreSuite) TestListOrderFiltersAndSearch() {
	ctx := context.Background()
	now := time.Now()

	first := newTask("Notebook Dell", now)
	second := newTask("iPhone 13", now)
	second.Category = "reparo_celular"
	third := newTask("Rede 100% nova", now.Add(-time.Hour))
	third.Status = domain.StatusCompleted
	for _, t := range []*domain.Task{first, second, third} {
		s.Require().NoError(s.tasks.Create(ctx, t))
	}

	all, err := s.tasks.List(ctx, ports.TaskFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	// equal timestamps fall back to insertion order, newest first
	s.Equal(second.ID, all[0].ID)
	s.Equal(first.ID, all[1].ID)
	s.Equal(third.ID, all[2].ID)

	pending, err := s.tasks.List(ctx, ports.TaskFilter{Status: domain.StatusPending, Category: "reparo_celular"})
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(second.ID, pending[0].ID)

	found, err := s.tasks.List(ctx, ports.TaskFilter{Search: "IPHONE"})
	s.Require().NoError(err)
	s.Len(found, 1)

	percent, err := s.tasks.List(ctx, ports.TaskFilter{Search: "100%"})
	s.Require().NoError(err)
	s.Len(percent, 1)

	limited, err := s.tasks.List(ctx, ports.TaskFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *PostgresStoreSuite) TestUpdatePatchAndClear() {
	ctx := context.Background()
	budget := decimal.NewFromInt(100)
	in := newTask("Backup", time.Now())
	in.Budget = &budget
	s.Require().NoError(s.tasks.Create(ctx, in))

	status := domain.StatusInProgress
	got, err := s.tasks.Update(ctx, in.ID, ports.TaskPatch{
		Status: &status,
		Budget: ports.Nullable[decimal.Decimal]{Set: true},
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusInProgress, got.Status)
	s.Nil(got.Budget)
	s.Equal(in.Title, got.Title)

	_, err = s.tasks.Update(ctx, uuid.NewString(), ports.TaskPatch{Status: &status})
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	in := newTask("Impressora", time.Now())
	s.Require().NoError(s.tasks.Create(ctx, in))

	s.Require().NoError(s.tasks.Delete(ctx, in.ID))
	s.ErrorIs(s.tasks.Delete(ctx, in.ID), domain.ErrTaskNotFound)
}

func (s *PostgresStoreSuite) TestStatsAndCategories() {
	ctx := context.Background()
	today := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	pending := newTask("a", time.Now())
	overdue := newTask("b", time.Now())
	overdue.DueDate = &yesterday
	progress := newTask("c", time.Now())
	progress.Status = domain.StatusInProgress
	progress.Category = "rede"
	done := newTask("d", time.Now())
	done.Status = domain.StatusCompleted
	done.DueDate = &yesterday
	for _, t := range []*domain.Task{pending, overdue, progress, done} {
		s.Require().NoError(s.tasks.Create(ctx, t))
	}

	stats, err := s.tasks.Stats(ctx, today)
	s.Require().NoError(err)
	s.Equal(domain.TaskStats{Total: 4, Pending: 2, InProgress: 1, Completed: 1, Overdue: 1}, stats)

	counts, err := s.tasks.CountByCategory(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), counts["reparo_pc"])
	s.Equal(int64(1), counts["rede"])
}

func (s *PostgresStoreSuite) TestConcurrentUserEmailUniqueness() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.users.Create(ctx, &domain.User{
				ID:           uuid.NewString(),
				Name:         "Ana",
				Email:        "ana@empresa.com",
				PasswordHash: "x",
				Role:         domain.RoleTechnician,
				CreatedAt:    time.Now().UTC(),
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrUserExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())

	u, err := s.users.FindByEmail(ctx, "ana@empresa.com")
	s.Require().NoError(err)
	s.Equal("Ana", u.Name)

	_, err = s.users.FindByID(ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrUserNotFound)
}
