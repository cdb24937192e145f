package auth

import (
	"context"
	"log/slog"
	"time"

	"go-warroom/internal/auth/routes"
	"go-warroom/internal/auth/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
)

// Module represents the auth module
type Module struct {
	*module.BaseModule
	authService *services.AuthService
	cron        *cron.Cron
}

// New creates a new auth module
func New(mongodb *database.MongoDB, redis *database.Redis, backend *gamebackend.Client) *Module {
	baseModule := module.NewBaseModule("auth", mongodb, redis)

	return &Module{
		BaseModule:  baseModule,
		authService: services.NewAuthService(mongodb, backend),
		cron:        cron.New(),
	}
}

// Routes implements module.Module interface. Auth endpoints are
// registered on the unified API instead.
func (m *Module) Routes(r chi.Router) {}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterAuthRoutes(api, basePath, m.authService)
}

// StartBackgroundTasks starts the OAuth state cleanup and session
// refresh schedules.
func (m *Module) StartBackgroundTasks(ctx context.Context) {
	slog.Info("Starting auth background tasks", "module", m.Name())

	go m.BaseModule.StartBackgroundTasks(ctx)

	m.cron.AddFunc("@every 5m", func() {
		if err := m.authService.CleanupExpiredStates(ctx); err != nil {
			slog.Error("Failed to cleanup expired OAuth states", "error", err)
		}
	})

	m.cron.AddFunc("@every 10m", func() {
		success, failed, err := m.authService.RefreshExpiringSessions(ctx, 15*time.Minute, 50)
		if err != nil {
			slog.Error("Failed to refresh expiring sessions", "error", err)
		} else if success > 0 || failed > 0 {
			slog.Info("Session refresh sweep completed", "success", success, "failed", failed)
		}
	})

	m.cron.Start()

	go func() {
		select {
		case <-ctx.Done():
		case <-m.StopChannel():
		}
		m.cron.Stop()
	}()
}

// Stop shuts down the module
func (m *Module) Stop() {
	m.cron.Stop()
	m.BaseModule.Stop()
}

// GetAuthService returns the auth service for other modules
func (m *Module) GetAuthService() *services.AuthService {
	return m.authService
}
