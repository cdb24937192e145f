package roster

import (
	"go-warroom/internal/roster/routes"
	"go-warroom/internal/roster/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the roster module
type Module struct {
	*module.BaseModule
	rosterService *services.RosterService
	validator     middleware.TokenValidator
	tokens        routes.BackendTokenSource
}

// New creates a new roster module
func New(mongodb *database.MongoDB, redis *database.Redis, backend *gamebackend.Client, validator middleware.TokenValidator, tokens routes.BackendTokenSource) *Module {
	return &Module{
		BaseModule:    module.NewBaseModule("roster", mongodb, redis),
		rosterService: services.NewRosterService(backend),
		validator:     validator,
		tokens:        tokens,
	}
}

// Routes implements module.Module interface
func (m *Module) Routes(r chi.Router) {}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterRosterRoutes(api, basePath, m.rosterService, m.validator, m.tokens)
}
