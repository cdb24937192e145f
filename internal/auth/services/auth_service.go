package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go-warroom/internal/auth/models"
	"go-warroom/pkg/config"
	"go-warroom/pkg/database"
	"go-warroom/pkg/gamebackend"
	"go-warroom/pkg/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Store is the persistence surface the auth services need. Implemented
// by Repository; tests substitute an in-memory fake.
type Store interface {
	UpsertSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessionsExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]*models.Session, error)
	CreateOAuthState(ctx context.Context, state *models.OAuthState) error
	ConsumeOAuthState(ctx context.Context, state string) (*models.OAuthState, error)
	DeleteExpiredStates(ctx context.Context) error
}

// AuthService owns the session lifecycle: Discord login, upstream token
// exchange, refresh before expiry, and session JWT issuance/validation.
type AuthService struct {
	repository     Store
	discordService *DiscordService
	backend        *gamebackend.Client
	jwtSecret      []byte
	tokenWindow    time.Duration
}

// NewAuthService creates a new auth service with all dependencies
func NewAuthService(mongodb *database.MongoDB, backend *gamebackend.Client) *AuthService {
	repository := NewRepository(mongodb)

	return &AuthService{
		repository:     repository,
		discordService: NewDiscordService(repository),
		backend:        backend,
		jwtSecret:      []byte(config.GetJWTSecret()),
		tokenWindow:    config.GetAccessTokenWindow(),
	}
}

// InitiateLogin starts the Discord OAuth flow.
func (s *AuthService) InitiateLogin(ctx context.Context) (string, string, error) {
	return s.discordService.GenerateAuthURL(ctx)
}

// HandleCallback completes the Discord OAuth flow: validates the state,
// exchanges the code with Discord, then trades the provider token for an
// upstream session. The returned JWT is empty when authentication failed.
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (string, *models.Session, error) {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.service.handle_callback")
	defer span.End()

	userInfo, tokenResp, err := s.discordService.HandleCallback(ctx, code, state)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("failed to handle callback: %w", err)
	}

	session := s.ExchangeProviderToken(ctx, userInfo, tokenResp.AccessToken, tokenResp.RefreshToken)
	if !session.Authenticated {
		return "", session, nil
	}

	jwtToken, _, err := s.GenerateJWT(session)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return jwtToken, session, nil
}

// ExchangeProviderToken trades a Discord access token for an upstream
// session. It never fails into a half-authenticated state: any network,
// non-2xx or token-decode failure yields a session with
// authenticated=false, expired=true.
func (s *AuthService) ExchangeProviderToken(ctx context.Context, userInfo *DiscordUserInfo, providerAccessToken, providerRefreshToken string) *models.Session {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.service.exchange_provider_token")
	defer span.End()

	session := &models.Session{
		ID:                  uuid.New().String(),
		DiscordRefreshToken: providerRefreshToken,
		Expired:             true,
	}
	if userInfo != nil {
		session.DiscordID = userInfo.ID
		session.DisplayName = userInfo.DisplayName()
		if userInfo.Email != nil {
			session.Email = *userInfo.Email
		}
		if userInfo.Avatar != nil {
			session.AvatarURL = *userInfo.Avatar
		}
	}

	exchange, err := s.backend.Auth.ExchangeDiscordToken(ctx, providerAccessToken)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "Upstream token exchange failed", "error", err)
		s.persist(ctx, session)
		return session
	}

	if err := s.applyExchange(session, exchange); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "Failed to decode upstream access token", "error", err)
		invalidated := session.Invalidated()
		s.persist(ctx, invalidated)
		return invalidated
	}

	s.persist(ctx, session)

	span.SetAttributes(attribute.String("user_id", session.UserID))
	return session
}

// applyExchange populates session credentials from an upstream exchange
// reply. The upstream JWT claims carry user identity and role.
func (s *AuthService) applyExchange(session *models.Session, exchange *gamebackend.TokenExchangeResponse) error {
	claims, err := decodeUpstreamClaims(exchange.AccessToken)
	if err != nil {
		return err
	}

	session.UserID = claims.UserID
	if claims.DisplayName != "" {
		session.DisplayName = claims.DisplayName
	}
	if claims.Email != "" {
		session.Email = claims.Email
	}
	session.Role = claims.Role
	if session.Role == "" {
		session.Role = "user"
	}

	session.BackendAccessToken = exchange.AccessToken
	if exchange.RefreshToken != "" {
		session.BackendRefreshToken = exchange.RefreshToken
	}

	window := s.tokenWindow
	if exchange.ExpiresIn > 0 {
		window = time.Duration(exchange.ExpiresIn) * time.Second
	}
	session.BackendAccessTokenExpiresAt = time.Now().Add(window)
	session.Authenticated = true
	session.Expired = false

	return nil
}

// Refresh renews the session's upstream access token: upstream refresh
// token first, then Discord provider refresh plus re-exchange. On total
// failure it returns the session invalidated; it never errors out.
func (s *AuthService) Refresh(ctx context.Context, session *models.Session) *models.Session {
	tracer := otel.Tracer("go-warroom/auth")
	ctx, span := tracer.Start(ctx, "auth.service.refresh_session")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", session.ID))

	if session.BackendRefreshToken != "" {
		exchange, err := s.backend.Auth.RefreshToken(ctx, session.BackendRefreshToken)
		if err == nil {
			renewed := *session
			if applyErr := s.applyExchange(&renewed, exchange); applyErr == nil {
				s.persist(ctx, &renewed)
				return &renewed
			}
		} else {
			slog.WarnContext(ctx, "Upstream token refresh failed", "error", err)
		}
	}

	if session.DiscordRefreshToken != "" {
		tokenResp, err := s.discordService.RefreshToken(ctx, session.DiscordRefreshToken)
		if err == nil {
			renewed := *session
			renewed.DiscordRefreshToken = tokenResp.RefreshToken

			exchange, exchErr := s.backend.Auth.ExchangeDiscordToken(ctx, tokenResp.AccessToken)
			if exchErr == nil {
				if applyErr := s.applyExchange(&renewed, exchange); applyErr == nil {
					s.persist(ctx, &renewed)
					return &renewed
				}
			} else {
				slog.WarnContext(ctx, "Re-exchange after Discord refresh failed", "error", exchErr)
			}
		} else {
			slog.WarnContext(ctx, "Discord token refresh failed", "error", err)
		}
	}

	invalidated := session.Invalidated()
	s.persist(ctx, invalidated)
	return invalidated
}

// SyncProfile refreshes denormalized profile fields from the upstream.
// Best effort: any failure leaves prior fields untouched.
func (s *AuthService) SyncProfile(ctx context.Context, session *models.Session) *models.Session {
	if !session.IsValid() {
		return session
	}

	profile, err := s.backend.Auth.GetSessionProfile(ctx, session.BackendAccessToken)
	if err != nil {
		slog.DebugContext(ctx, "Profile sync failed, keeping previous fields", "error", err)
		return session
	}

	updated := *session
	if profile.DisplayName != "" {
		updated.DisplayName = profile.DisplayName
	}
	if profile.Email != "" {
		updated.Email = profile.Email
	}
	if profile.Role != "" {
		updated.Role = profile.Role
	}
	if profile.AvatarURL != "" {
		updated.AvatarURL = profile.AvatarURL
	}

	s.persist(ctx, &updated)
	return &updated
}

// GetSession loads a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.repository.GetSession(ctx, sessionID)
}

// Logout deletes the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.repository.DeleteSession(ctx, sessionID)
}

// BackendToken returns a usable upstream bearer token for the session,
// refreshing it first when expired. Used by the proxy; the token itself
// is never logged.
func (s *AuthService) BackendToken(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repository.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", errors.New("session not found")
	}

	if !session.IsValid() {
		session = s.Refresh(ctx, session)
		if !session.IsValid() {
			return "", errors.New("session expired")
		}
	}

	return session.BackendAccessToken, nil
}

// GenerateJWT creates the warroom session JWT for the session.
func (s *AuthService) GenerateJWT(session *models.Session) (string, time.Time, error) {
	expiresAt := time.Now().Add(config.GetCookieDuration())

	claims := jwt.MapClaims{
		"session_id":   session.ID,
		"user_id":      session.UserID,
		"display_name": session.DisplayName,
		"email":        session.Email,
		"role":         session.Role,
		"exp":          expiresAt.Unix(),
		"iat":          time.Now().Unix(),
		"iss":          "go-warroom",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a warroom session JWT. Implements
// middleware.TokenValidator.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid JWT token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid JWT claims")
	}

	sessionID, _ := claims["session_id"].(string)
	userID, _ := claims["user_id"].(string)
	displayName, _ := claims["display_name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &middleware.AuthenticatedUser{
		SessionID:   sessionID,
		UserID:      userID,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
	}, nil
}

// SessionFromHeaders resolves the stored session for raw header strings.
func (s *AuthService) SessionFromHeaders(ctx context.Context, authHeader, cookieHeader string) (*models.Session, error) {
	token := middleware.TokenFromHeaders(authHeader, cookieHeader)
	if token == "" {
		return nil, middleware.ErrNoToken
	}

	user, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.repository.GetSession(ctx, user.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found")
	}
	return session, nil
}

// RefreshExpiringSessions refreshes sessions whose access token expires
// within the window. Returns success and failure counts.
func (s *AuthService) RefreshExpiringSessions(ctx context.Context, window time.Duration, batchSize int) (int, int, error) {
	sessions, err := s.repository.ListSessionsExpiringWithin(ctx, window, batchSize)
	if err != nil {
		return 0, 0, err
	}

	success, failed := 0, 0
	for _, session := range sessions {
		renewed := s.Refresh(ctx, session)
		if renewed.IsValid() {
			success++
		} else {
			failed++
		}
	}
	return success, failed, nil
}

// CleanupExpiredStates removes expired OAuth states.
func (s *AuthService) CleanupExpiredStates(ctx context.Context) error {
	return s.discordService.CleanupExpiredStates(ctx)
}

// persist writes the session best-effort; a storage failure must not
// break the login or refresh path.
func (s *AuthService) persist(ctx context.Context, session *models.Session) {
	if err := s.repository.UpsertSession(ctx, session); err != nil {
		slog.ErrorContext(ctx, "Failed to persist session", "error", err, "session_id", session.ID)
	}
}

// upstreamClaims are the identity claims carried by the upstream JWT.
type upstreamClaims struct {
	UserID      string
	DisplayName string
	Email       string
	Role        string
}

// decodeUpstreamClaims extracts identity claims from the upstream access
// token without verifying its signature; the upstream owns that key.
func decodeUpstreamClaims(tokenString string) (*upstreamClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to decode upstream token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid upstream token claims")
	}

	parsed := &upstreamClaims{}
	if v, ok := claims["user_id"].(string); ok {
		parsed.UserID = v
	} else if v, ok := claims["sub"].(string); ok {
		parsed.UserID = v
	}
	if parsed.UserID == "" {
		return nil, errors.New("upstream token missing user identity")
	}
	if v, ok := claims["display_name"].(string); ok {
		parsed.DisplayName = v
	}
	if v, ok := claims["email"].(string); ok {
		parsed.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		parsed.Role = v
	}
	return parsed, nil
}
