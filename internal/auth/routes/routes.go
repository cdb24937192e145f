package routes

import (
	"context"

	"go-warroom/internal/auth/dto"
	"go-warroom/internal/auth/services"
	"go-warroom/pkg/config"
	"go-warroom/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterAuthRoutes registers auth routes on a shared API
func RegisterAuthRoutes(api huma.API, basePath string, authService *services.AuthService) {
	// Discord OAuth endpoints (public)
	huma.Register(api, huma.Operation{
		OperationID: "auth-discord-login",
		Method:      "GET",
		Path:        basePath + "/discord/login",
		Summary:     "Initiate Discord login",
		Description: "Start the Discord OAuth2 authentication flow",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.DiscordLoginInput) (*dto.DiscordLoginOutput, error) {
		authURL, state, err := authService.InitiateLogin(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to initiate login", err)
		}

		return &dto.DiscordLoginOutput{Body: dto.DiscordLoginResponse{
			AuthURL: authURL,
			State:   state,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-discord-callback",
		Method:      "GET",
		Path:        basePath + "/discord/callback",
		Summary:     "Discord OAuth2 callback",
		Description: "Handle the OAuth2 callback from Discord and establish a session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.DiscordCallbackInput) (*dto.DiscordCallbackOutput, error) {
		jwtToken, session, err := authService.HandleCallback(ctx, input.Code, input.State)
		if err != nil {
			return nil, huma.Error400BadRequest("Authentication failed", err)
		}

		frontendURL := config.GetFrontendURL()

		// The upstream exchange can fail without erroring the callback:
		// the user lands back on the frontend unauthenticated.
		if session == nil || !session.Authenticated {
			return &dto.DiscordCallbackOutput{
				Status:    302,
				SetCookie: middleware.ClearAuthCookieHeader(),
				Location:  frontendURL + "?auth=expired",
			}, nil
		}

		maxAge := int(config.GetCookieDuration().Seconds())
		return &dto.DiscordCallbackOutput{
			Status:    302,
			SetCookie: middleware.CreateAuthCookieHeader(jwtToken, maxAge),
			Location:  frontendURL,
		}, nil
	})

	// Session endpoints
	huma.Register(api, huma.Operation{
		OperationID: "auth-status",
		Method:      "GET",
		Path:        basePath + "/status",
		Summary:     "Get authentication status",
		Description: "Report whether the caller holds a valid session. Never fails.",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.AuthStatusInput) (*dto.AuthStatusOutput, error) {
		session, err := authService.SessionFromHeaders(ctx, input.Authorization, input.Cookie)
		if err != nil || session == nil {
			return &dto.AuthStatusOutput{Body: dto.AuthStatusResponse{
				Authenticated: false,
				Expired:       false,
			}}, nil
		}

		if !session.IsValid() {
			session = authService.Refresh(ctx, session)
		}

		body := dto.AuthStatusResponse{
			Authenticated: session.Authenticated,
			Expired:       session.Expired,
		}
		if session.Authenticated {
			body.UserID = &session.UserID
			body.DisplayName = &session.DisplayName
			body.Role = &session.Role
		}
		return &dto.AuthStatusOutput{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-session",
		Method:      "GET",
		Path:        basePath + "/session",
		Summary:     "Get current session",
		Description: "Return the caller's session profile, credentials excluded",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.SessionInput) (*dto.SessionOutput, error) {
		session, err := authService.SessionFromHeaders(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		if !session.IsValid() {
			session = authService.Refresh(ctx, session)
			if !session.IsValid() {
				return nil, huma.Error401Unauthorized("Session expired")
			}
		}

		session = authService.SyncProfile(ctx, session)

		return &dto.SessionOutput{Body: dto.SessionResponse{
			SessionID:   session.ID,
			UserID:      session.UserID,
			DisplayName: session.DisplayName,
			Email:       session.Email,
			Role:        session.Role,
			AvatarURL:   session.AvatarURL,
			ExpiresAt:   session.BackendAccessTokenExpiresAt,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-refresh",
		Method:      "POST",
		Path:        basePath + "/refresh",
		Summary:     "Refresh the session",
		Description: "Force a refresh of the session's upstream access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.RefreshInput) (*dto.RefreshOutput, error) {
		session, err := authService.SessionFromHeaders(ctx, input.Authorization, input.Cookie)
		if err != nil {
			return nil, huma.Error401Unauthorized("Authentication required")
		}

		session = authService.Refresh(ctx, session)

		body := dto.AuthStatusResponse{
			Authenticated: session.Authenticated,
			Expired:       session.Expired,
		}
		if session.Authenticated {
			body.UserID = &session.UserID
			body.DisplayName = &session.DisplayName
			body.Role = &session.Role
		}
		return &dto.RefreshOutput{Body: body}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-logout",
		Method:      "POST",
		Path:        basePath + "/logout",
		Summary:     "Logout",
		Description: "Delete the session and clear the authentication cookie",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *dto.LogoutInput) (*dto.LogoutOutput, error) {
		if session, err := authService.SessionFromHeaders(ctx, input.Authorization, input.Cookie); err == nil && session != nil {
			if err := authService.Logout(ctx, session.ID); err != nil {
				return nil, huma.Error500InternalServerError("Failed to delete session", err)
			}
		}

		return &dto.LogoutOutput{
			SetCookie: middleware.ClearAuthCookieHeader(),
			Body: dto.LogoutResponse{
				Success: true,
				Message: "Logged out",
			},
		}, nil
	})
}
