// @title                       App Gestor API
// @version                     1.0
// @description                 Task management API for a repair and sales shop.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jose-carlos2025/App-gestor/internal/api"
	"github.com/Jose-carlos2025/App-gestor/internal/api/handler"
	"github.com/Jose-carlos2025/App-gestor/internal/core/ports"
	"github.com/Jose-carlos2025/App-gestor/internal/core/service"
	"github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/memory"
	mongostore "github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/mongo"
	pgstore "github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/postgres"
	redisstore "github.com/Jose-carlos2025/App-gestor/internal/infrastructure/db/redis"
	"github.com/Jose-carlos2025/App-gestor/internal/pkg/config"
	"github.com/Jose-carlos2025/App-gestor/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "app-gestor: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		log.Warn().Msg("JWT_SECRET not set; using an ephemeral secret, tokens will not survive a restart")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	hasher := service.NewPasswordHasher(bcryptCost)
	tokens := service.NewTokenIssuer(secret, service.DefaultTokenTTL, st.revoker)
	authService := service.NewAuthService(st.users, hasher, tokens, log.With().Str("component", "auth").Logger())
	taskService := service.NewTaskService(st.tasks, log.With().Str("component", "tasks").Logger())

	seeder := service.NewSeeder(authService, st.users, taskService, log)
	admin, err := seeder.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}
	if cfg.SeedExamples {
		if _, err := seeder.SeedExampleTasks(ctx, admin.ID); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		Auth:      authService,
		Tasks:     taskService,
		Health:    st.health,
		LoginRate: cfg.LoginRateLimit,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreBackend).
			Str("revocation", cfg.RevocationBackend).
			Msg("starting app-gestor")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

const bcryptCost = 10

type stores struct {
	users   ports.UserRepository
	tasks   ports.TaskRepository
	revoker ports.TokenRevoker
	health  map[string]handler.Pinger
	closers []func(context.Context) error
}

func (s *stores) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
}

// openStores connects the configured backends and prepares their schema.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	st := &stores{health: map[string]handler.Pinger{}}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, client.Disconnect)
		users := mongostore.NewUserRepository(db)
		tasks := mongostore.NewTaskRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			st.close(log)
			return nil, fmt.Errorf("mongo user indexes: %w", err)
		}
		if err := tasks.EnsureIndexes(ctx); err != nil {
			st.close(log)
			return nil, fmt.Errorf("mongo task indexes: %w", err)
		}
		st.users, st.tasks = users, tasks
		st.health["mongodb"] = mongostore.Pinger{Client: client}

	case config.BackendPostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { pool.Close(); return nil })
		if err := pgstore.EnsureSchema(ctx, pool); err != nil {
			st.close(log)
			return nil, err
		}
		st.users, st.tasks = pgstore.NewUserRepository(pool), pgstore.NewTaskRepository(pool)
		st.health["postgres"] = pgstore.Pinger{Pool: pool}

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		st.users, st.tasks = memory.NewUserRepository(), memory.NewTaskRepository()
	}

	switch cfg.RevocationBackend {
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			st.close(log)
			return nil, err
		}
		st.closers = append(st.closers, func(context.Context) error { return client.Close() })
		st.revoker = redisstore.NewRevocationList(client)
		st.health["redis"] = redisstore.Pinger{Client: client}
	default:
		st.revoker = memory.NewRevocationList()
	}

	return st, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
