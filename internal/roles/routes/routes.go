package routes

import (
	"context"

	"go-warroom/internal/roles/dto"
	"go-warroom/internal/roles/services"
	"go-warroom/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// BackendTokenSource yields the upstream bearer token for a session.
type BackendTokenSource interface {
	BackendToken(ctx context.Context, sessionID string) (string, error)
}

// RegisterRolesRoutes registers role resolver routes on a shared API
func RegisterRolesRoutes(api huma.API, basePath string, roleService *services.RoleService, validator middleware.TokenValidator, tokens BackendTokenSource) {
	resolve := func(ctx context.Context, authHeader, cookieHeader string, refresh bool) (*dto.RolesResponse, error) {
		token := middleware.TokenFromHeaders(authHeader, cookieHeader)
		if token == "" {
			return nil, huma.Error401Unauthorized("Authentication required")
		}

		user, err := validator.ValidateToken(token)
		if err != nil {
			return nil, huma.Error401Unauthorized("Authentication required")
		}

		bearer, err := tokens.BackendToken(ctx, user.SessionID)
		if err != nil {
			return nil, huma.Error401Unauthorized("Session expired")
		}

		var resolved *services.ResolvedRoles
		if refresh {
			resolved, err = roleService.Refresh(ctx, user.UserID, bearer)
		} else {
			resolved, err = roleService.Resolve(ctx, user.UserID, bearer)
		}
		if err != nil {
			return nil, huma.Error502BadGateway("Failed to resolve alliance roles", err)
		}

		return &dto.RolesResponse{
			Roles:          resolved.Roles,
			GameAccountIDs: resolved.GameAccountIDs,
			FetchedAt:      resolved.FetchedAt,
		}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "roles-my",
		Method:      "GET",
		Path:        basePath + "/my",
		Summary:     "Get my alliance roles",
		Description: "Return the caller's server-computed alliance role flags, cached briefly",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *dto.MyRolesInput) (*dto.MyRolesOutput, error) {
		body, err := resolve(ctx, input.Authorization, input.Cookie, false)
		if err != nil {
			return nil, err
		}
		return &dto.MyRolesOutput{Body: *body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "roles-refresh",
		Method:      "POST",
		Path:        basePath + "/refresh",
		Summary:     "Refresh my alliance roles",
		Description: "Drop the cached role flags and fetch fresh ones from the backend",
		Tags:        []string{"Roles"},
	}, func(ctx context.Context, input *dto.RefreshRolesInput) (*dto.RefreshRolesOutput, error) {
		body, err := resolve(ctx, input.Authorization, input.Cookie, true)
		if err != nil {
			return nil, err
		}
		return &dto.RefreshRolesOutput{Body: *body}, nil
	})
}
