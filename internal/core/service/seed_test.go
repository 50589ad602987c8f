package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

func TestSeeder_EnsureAdminIsIdempotent(t *testing.T) {
	auth, users := newTestAuthService()
	tasks := newTestTaskService()
	seeder := NewSeeder(auth, users, tasks, zerolog.Nop())

	first, err := seeder.EnsureAdmin(context.Background(), "Administrador", "Admin@Empresa.com", "Admin@123")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if first.Role != domain.RoleAdmin || first.Email != "admin@empresa.com" {
		t.Fatalf("unexpected admin: %+v", first)
	}

	second, err := seeder.EnsureAdmin(context.Background(), "Administrador", "admin@empresa.com", "Admin@123")
	if err != nil {
		t.Fatalf("second EnsureAdmin returned error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing admin to be reused")
	}

	if _, err := auth.Login(context.Background(), "admin@empresa.com", "Admin@123"); err != nil {
		t.Fatalf("admin cannot log in: %v", err)
	}
}

func TestSeeder_SeedExampleTasksOnlyWhenEmpty(t *testing.T) {
	auth, users := newTestAuthService()
	tasks := newTestTaskService()
	seeder := NewSeeder(auth, users, tasks, zerolog.Nop())

	n, err := seeder.SeedExampleTasks(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("SeedExampleTasks returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 example tasks, got %d", n)
	}

	all, _ := tasks.List(context.Background(), ports.TaskFilter{})
	for _, task := range all {
		if task.TechnicianID != "admin-1" {
			t.Fatalf("example task not owned by admin: %+v", task)
		}
		if task.DueDate == nil || task.IsOverdue(tasks.Today()) {
			t.Fatalf("example task should have a future due date")
		}
	}

	n, err = seeder.SeedExampleTasks(context.Background(), "admin-1")
	if err != nil || n != 0 {
		t.Fatalf("expected no-op on non-empty store, got n=%d err=%v", n, err)
	}
}
