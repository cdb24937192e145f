package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-warroom/internal/auth/models"
	"go-warroom/pkg/config"
)

const (
	discordAuthorizeURL = "https://discord.com/api/oauth2/authorize"
	discordTokenURL     = "https://discord.com/api/oauth2/token"
	discordUserURL      = "https://discord.com/api/users/@me"
)

// DiscordOAuthConfig holds Discord OAuth configuration
type DiscordOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// DiscordUserInfo represents user information from the Discord API
type DiscordUserInfo struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName *string `json:"global_name"`
	Avatar     *string `json:"avatar"`
	Email      *string `json:"email"`
}

// DisplayName prefers the global display name over the username.
func (u *DiscordUserInfo) DisplayName() string {
	if u.GlobalName != nil && *u.GlobalName != "" {
		return *u.GlobalName
	}
	return u.Username
}

// DiscordTokenResponse represents a Discord OAuth token response
type DiscordTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// DiscordService handles Discord OAuth operations
type DiscordService struct {
	config *DiscordOAuthConfig
	repo   Store
	client *http.Client

	authorizeURL string
	tokenURL     string
	userURL      string
}

// NewDiscordService creates a new Discord OAuth service
func NewDiscordService(repo Store) *DiscordService {
	cfg := &DiscordOAuthConfig{
		ClientID:     config.GetDiscordClientID(),
		ClientSecret: config.GetDiscordClientSecret(),
		RedirectURI:  config.GetDiscordRedirectURI(),
		Scopes:       []string{"identify", "email"},
	}

	if scopes := config.GetEnv("DISCORD_SCOPES", ""); scopes != "" {
		cfg.Scopes = strings.Split(scopes, " ")
	}

	return &DiscordService{
		config:       cfg,
		repo:         repo,
		client:       &http.Client{Timeout: 30 * time.Second},
		authorizeURL: discordAuthorizeURL,
		tokenURL:     discordTokenURL,
		userURL:      discordUserURL,
	}
}

// NewDiscordServiceWithBaseURL creates a Discord service against an
// explicit API base URL (tests).
func NewDiscordServiceWithBaseURL(repo Store, baseURL string) *DiscordService {
	s := NewDiscordService(repo)
	s.authorizeURL = baseURL + "/oauth2/authorize"
	s.tokenURL = baseURL + "/oauth2/token"
	s.userURL = baseURL + "/users/@me"
	return s
}

// GenerateAuthURL creates a Discord OAuth authorization URL with a stored
// CSRF state.
func (s *DiscordService) GenerateAuthURL(ctx context.Context) (string, string, error) {
	stateBytes := make([]byte, 32)
	if _, err := rand.Read(stateBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate state parameter: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	oauthState := &models.OAuthState{
		State:     state,
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
	if err := s.repo.CreateOAuthState(ctx, oauthState); err != nil {
		return "", "", fmt.Errorf("failed to store OAuth state: %w", err)
	}

	params := url.Values{}
	params.Set("client_id", s.config.ClientID)
	params.Set("redirect_uri", s.config.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(s.config.Scopes, " "))
	params.Set("state", state)

	authURL := s.authorizeURL + "?" + params.Encode()

	slog.InfoContext(ctx, "Generated Discord OAuth URL", "scopes", s.config.Scopes)

	return authURL, state, nil
}

// HandleCallback validates the CSRF state and exchanges the authorization
// code for Discord tokens and user info.
func (s *DiscordService) HandleCallback(ctx context.Context, code, state string) (*DiscordUserInfo, *DiscordTokenResponse, error) {
	storedState, err := s.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OAuth state: %w", err)
	}
	if storedState == nil {
		return nil, nil, fmt.Errorf("invalid or expired state parameter")
	}

	tokenResponse, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	userInfo, err := s.GetUserInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user info: %w", err)
	}

	slog.InfoContext(ctx, "Discord OAuth callback completed",
		"discord_id", userInfo.ID,
		"username", userInfo.Username)

	return userInfo, tokenResponse, nil
}

// exchangeCodeForToken exchanges an authorization code for an access token
func (s *DiscordService) exchangeCodeForToken(ctx context.Context, code string) (*DiscordTokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", s.config.ClientID)
	data.Set("client_secret", s.config.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.config.RedirectURI)

	return s.tokenRequest(ctx, data)
}

// RefreshToken refreshes an expired Discord access token
func (s *DiscordService) RefreshToken(ctx context.Context, refreshToken string) (*DiscordTokenResponse, error) {
	data := url.Values{}
	data.Set("client_id", s.config.ClientID)
	data.Set("client_secret", s.config.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	tokenResponse, err := s.tokenRequest(ctx, data)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Discord token refreshed successfully")
	return tokenResponse, nil
}

func (s *DiscordService) tokenRequest(ctx context.Context, data url.Values) (*DiscordTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "go-warroom/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse DiscordTokenResponse
	if err := json.Unmarshal(body, &tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return &tokenResponse, nil
}

// GetUserInfo gets user information from the Discord API
func (s *DiscordService) GetUserInfo(ctx context.Context, accessToken string) (*DiscordUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", "go-warroom/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make user info request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo DiscordUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info response: %w", err)
	}

	return &userInfo, nil
}

// CleanupExpiredStates removes expired OAuth states
func (s *DiscordService) CleanupExpiredStates(ctx context.Context) error {
	return s.repo.DeleteExpiredStates(ctx)
}
