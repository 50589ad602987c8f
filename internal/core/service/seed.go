package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Jose-carlos2025/App-gestor/internal/core/domain"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
)

// Seeder prepares a fresh installation: the bootstrap admin account and,
// optionally, a handful of example tasks.
type Seeder struct {
	auth  *AuthService
	users ports.UserRepository
	tasks *TaskService
	log   zerolog.Logger
}

func NewSeeder(auth *AuthService, users ports.UserRepository, tasks *TaskService, log zerolog.Logger) *Seeder {
	return &Seeder{auth: auth, users: users, tasks: tasks, log: log}
}

// EnsureAdmin creates the admin account unless a user with that email
// already exists. It is safe to call on every start.
func (s *Seeder) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err == nil {
		s.log.Debug().Str("email", existing.Email).Msg("admin user already present")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	admin, err := s.auth.Register(ctx, ports.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, domain.ErrUserExists) {
		// lost a race with another instance
		return s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	}
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info().Str("email", admin.Email).Msg("bootstrap admin created")
	return admin, nil
}

// SeedExampleTasks inserts the example tasks owned by ownerID when the task
// store is empty. It returns how many tasks were created.
func (s *Seeder) SeedExampleTasks(ctx context.Context, ownerID string) (int, error) {
	existing, err := s.tasks.List(ctx, ports.TaskFilter{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("seed tasks: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	today := s.tasks.Today()
	created := 0
	for i, in := range exampleTasks() {
		due := today.AddDate(0, 0, 3+2*i)
		in.DueDate = &due
		if _, err := s.tasks.Create(ctx, in, ownerID); err != nil {
			return created, fmt.Errorf("seed tasks: %w", err)
		}
		created++
	}
	s.log.Info().Int("count", created).Msg("example tasks seeded")
	return created, nil
}

func exampleTasks() []ports.CreateTaskInput {
	budget := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []ports.CreateTaskInput{
		{
			Title:          "Reparo de Notebook Dell Inspiron",
			Description:    "Tela não liga e ventoinha fazendo barulho alto",
			Category:       "reparo_pc",
			Priority:       domain.PriorityHigh,
			ClientName:     "João Silva",
			ClientPhone:    "(11) 98765-4321",
			ClientEmail:    "joao@email.com",
			Equipment:      "Notebook Dell",
			EquipmentModel: "Inspiron 15 3000",
			RequiredParts:  `Tela 15.6", ventoinha, pasta térmica`,
			Budget:         budget(450),
		},
		{
			Title:          "Venda de PC Gamer Completo",
			Description:    "Cliente interessado em PC para jogos de última geração",
			Category:       "venda",
			Priority:       domain.PriorityMedium,
			ClientName:     "Maria Santos",
			ClientPhone:    "(11) 91234-5678",
			ClientEmail:    "maria@empresa.com",
			Equipment:      "PC Gamer",
			EquipmentModel: "Configuração avançada",
			RequiredParts:  "RTX 4070, i7-13700K, 32GB RAM",
			Budget:         budget(8500),
		},
		{
			Title:          "Reparo de iPhone 13",
			Description:    "Tela trincada e bateria com pouca duração",
			Category:       "reparo_celular",
			Priority:       domain.PriorityHigh,
			ClientName:     "Carlos Oliveira",
			ClientPhone:    "(11) 99876-5432",
			ClientEmail:    "carlos@email.com",
			Equipment:      "iPhone 13",
			EquipmentModel: "128GB Azul",
			RequiredParts:  "Tela original, bateria",
			Budget:         budget(350),
		},
	}
}
