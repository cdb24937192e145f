package defense

import (
	"go-warroom/internal/defense/routes"
	"go-warroom/internal/defense/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the war-defense module
type Module struct {
	*module.BaseModule
	defenseService *services.DefenseService
	validator      middleware.TokenValidator
	tokens         routes.BackendTokenSource
}

// New creates a new defense module
func New(mongodb *database.MongoDB, redis *database.Redis, backend *gamebackend.Client, validator middleware.TokenValidator, tokens routes.BackendTokenSource) *Module {
	return &Module{
		BaseModule:     module.NewBaseModule("defense", mongodb, redis),
		defenseService: services.NewDefenseService(backend),
		validator:      validator,
		tokens:         tokens,
	}
}

// Routes implements module.Module interface
func (m *Module) Routes(r chi.Router) {}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterDefenseRoutes(api, basePath, m.defenseService, m.validator, m.tokens)
}
