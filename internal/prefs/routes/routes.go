package routes

import (
	"context"

	"go-warroom/internal/prefs/dto"
	"go-warroom/internal/prefs/services"
	"go-warroom/pkg/middleware"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterPrefsRoutes registers preference routes on a shared API
func RegisterPrefsRoutes(api huma.API, basePath string, prefsService *services.PrefsService, validator middleware.TokenValidator) {
	authenticate := func(authHeader, cookieHeader string) (*middleware.AuthenticatedUser, error) {
		token := middleware.TokenFromHeaders(authHeader, cookieHeader)
		if token == "" {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		user, err := validator.ValidateToken(token)
		if err != nil {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		return user, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "prefs-get-locale",
		Method:      "GET",
		Path:        basePath + "/locale",
		Summary:     "Get interface locale",
		Description: "Return the caller's interface locale preference",
		Tags:        []string{"Prefs"},
	}, func(ctx context.Context, input *dto.GetLocaleInput) (*dto.GetLocaleOutput, error) {
		user, err := authenticate(input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		return &dto.GetLocaleOutput{Body: dto.LocaleResponse{
			Locale: prefsService.GetLocale(ctx, user.UserID),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "prefs-set-locale",
		Method:      "PUT",
		Path:        basePath + "/locale",
		Summary:     "Set interface locale",
		Description: "Store the caller's interface locale preference",
		Tags:        []string{"Prefs"},
	}, func(ctx context.Context, input *dto.SetLocaleInput) (*dto.SetLocaleOutput, error) {
		user, err := authenticate(input.Authorization, input.Cookie)
		if err != nil {
			return nil, err
		}

		if !services.IsSupportedLocale(input.Body.Locale) {
			return nil, huma.Error422UnprocessableEntity("Unsupported locale")
		}
		if err := prefsService.SetLocale(ctx, user.UserID, input.Body.Locale); err != nil {
			return nil, huma.Error500InternalServerError("Failed to store locale", err)
		}

		return &dto.SetLocaleOutput{Body: dto.LocaleResponse{Locale: input.Body.Locale}}, nil
	})
}
