package gamebackend

import (
	"context"
	"net/http"
)

// AuthClient talks to the upstream auth endpoints.
type AuthClient struct {
	client *Client
}

// TokenExchangeResponse is the upstream reply to a Discord token exchange
// or a refresh. ExpiresIn may be zero; callers then apply the fixed window.
type TokenExchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// SessionProfile is the upstream view of the authenticated user, used to
// refresh denormalized profile fields.
type SessionProfile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ExchangeDiscordToken trades a Discord access token for an upstream
// access/refresh token pair.
func (a *AuthClient) ExchangeDiscordToken(ctx context.Context, providerAccessToken string) (*TokenExchangeResponse, error) {
	body := map[string]string{"access_token": providerAccessToken}

	var resp TokenExchangeResponse
	if err := a.client.do(ctx, http.MethodPost, "/auth/discord", "", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges an upstream refresh token for a fresh pair.
func (a *AuthClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenExchangeResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var resp TokenExchangeResponse
	if err := a.client.do(ctx, http.MethodPost, "/auth/refresh", "", nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSessionProfile fetches the upstream profile for the bearer token.
func (a *AuthClient) GetSessionProfile(ctx context.Context, token string) (*SessionProfile, error) {
	var profile SessionProfile
	if err := a.client.do(ctx, http.MethodGet, "/auth/session", token, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
