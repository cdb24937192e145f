package roles

import (
	"go-warroom/internal/roles/routes"
	"go-warroom/internal/roles/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the alliance role resolver module
type Module struct {
	*module.BaseModule
	roleService *services.RoleService
	validator   middleware.TokenValidator
	tokens      routes.BackendTokenSource
}

// New creates a new roles module
func New(mongodb *database.MongoDB, redis *database.Redis, backend *gamebackend.Client, validator middleware.TokenValidator, tokens routes.BackendTokenSource) *Module {
	return &Module{
		BaseModule:  module.NewBaseModule("roles", mongodb, redis),
		roleService: services.NewRoleService(redis, backend),
		validator:   validator,
		tokens:      tokens,
	}
}

// Routes implements module.Module interface
func (m *Module) Routes(r chi.Router) {}

// RegisterUnifiedRoutes registers routes on the shared Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	routes.RegisterRolesRoutes(api, basePath, m.roleService, m.validator, m.tokens)
}

// GetRoleService returns the role service for other modules
func (m *Module) GetRoleService() *services.RoleService {
	return m.roleService
}
