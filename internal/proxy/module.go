package proxy

import (
	"go-warroom/internal/proxy/services"
	"go-warroom/pkg/database"
	"go-warroom/pkg/middleware"
	"go-warroom/pkg/module"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Module represents the backend proxy module
type Module struct {
	*module.BaseModule
	proxyService *services.ProxyService
}

// New creates a new proxy module
func New(mongodb *database.MongoDB, redis *database.Redis, validator middleware.TokenValidator, tokens services.BackendTokenSource) *Module {
	return &Module{
		BaseModule:   module.NewBaseModule("proxy", mongodb, redis),
		proxyService: services.NewProxyService(validator, tokens),
	}
}

// Routes mounts the raw streaming forwarder. The proxy stays off the
// unified API so request and response bodies pass through untouched.
func (m *Module) Routes(r chi.Router) {
	r.HandleFunc("/*", m.proxyService.Forward)
}

// RegisterUnifiedRoutes implements module.Module. The proxy registers
// no typed routes.
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {}
