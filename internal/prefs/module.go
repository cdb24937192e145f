package prefs

import (
	"go-warroom/internal/prefs/routes"
	"go-warroom/internal/prefs/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/middleware"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the user preferences module
type Module struct {
	*module.BaseModule
	prefsService *services.PrefsService
	validator    middleware.TokenValidator
}

// New creates a new prefs module
func New(mongodb *database.MongoDB, redis *database.Redis, validator middleware.TokenValidator) *Module {
	return &Module{
		BaseModule:   module.NewBaseModule("prefs", mongodb, redis),
		prefsService: services.NewPrefsService(redis),
		validator:    validator,
	}
}

// Routes implements module.Module interface
func (m *Module) Routes(r chi.Router) {}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterPrefsRoutes(api, basePath, m.prefsService, m.validator)
}
