package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go-warroom/internal/auth/models"
	"go-warroom/pkg/gamebackend"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory Store for tests.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	states   map[string]*models.OAuthState
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]*models.Session),
		states:   make(map[string]*models.OAuthState),
	}
}

func (m *memoryStore) UpsertSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *memoryStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (m *memoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memoryStore) ListSessionsExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Session
	cutoff := time.Now().Add(window)
	for _, session := range m.sessions {
		if session.Authenticated && session.BackendAccessTokenExpiresAt.Before(cutoff) {
			copied := *session
			out = append(out, &copied)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) CreateOAuthState(ctx context.Context, state *models.OAuthState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.State] = state
	return nil
}

func (m *memoryStore) ConsumeOAuthState(ctx context.Context, state string) (*models.OAuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.states[state]
	if !ok {
		return nil, nil
	}
	delete(m.states, state)
	if time.Now().After(stored.ExpiresAt) {
		return nil, nil
	}
	return stored, nil
}

func (m *memoryStore) DeleteExpiredStates(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for state, stored := range m.states {
		if time.Now().After(stored.ExpiresAt) {
			delete(m.states, state)
		}
	}
	return nil
}

func newTestService(t *testing.T, upstream http.Handler) (*AuthService, *memoryStore) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	store := newMemoryStore()
	return &AuthService{
		repository:  store,
		backend:     gamebackend.NewClientWithBaseURL(server.URL),
		jwtSecret:   []byte("test-secret"),
		tokenWindow: time.Hour,
	}, store
}

func signUpstreamToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

func TestExchangeProviderToken_Success(t *testing.T) {
	upstreamToken := signUpstreamToken(t, jwt.MapClaims{
		"user_id":      "user-42",
		"display_name": "Raganor",
		"role":         "admin",
	})

	service, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/discord", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + upstreamToken + `","refresh_token":"up-refresh","expires_in":3600}`))
	}))

	userInfo := &DiscordUserInfo{ID: "discord-1", Username: "raganor"}
	session := service.ExchangeProviderToken(context.Background(), userInfo, "provider-token", "provider-refresh")

	assert.True(t, session.Authenticated)
	assert.False(t, session.Expired)
	assert.Equal(t, "user-42", session.UserID)
	assert.Equal(t, "Raganor", session.DisplayName)
	assert.Equal(t, "admin", session.Role)
	assert.Equal(t, upstreamToken, session.BackendAccessToken)
	assert.Equal(t, "up-refresh", session.BackendRefreshToken)
	assert.Equal(t, "provider-refresh", session.DiscordRefreshToken)
	assert.True(t, session.IsValid())

	stored, err := store.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Authenticated)
}

func TestExchangeProviderToken_UpstreamRejects(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"backend unavailable"}`))
	}))

	session := service.ExchangeProviderToken(context.Background(), &DiscordUserInfo{ID: "d", Username: "u"}, "provider-token", "")

	// Exchange failure must never leave a half-authenticated session.
	assert.False(t, session.Authenticated)
	assert.True(t, session.Expired)
	assert.Empty(t, session.BackendAccessToken)
	assert.False(t, session.IsValid())
}

func TestExchangeProviderToken_MalformedUpstreamToken(t *testing.T) {
	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"not-a-jwt","expires_in":3600}`))
	}))

	session := service.ExchangeProviderToken(context.Background(), &DiscordUserInfo{ID: "d", Username: "u"}, "provider-token", "")

	assert.False(t, session.Authenticated)
	assert.True(t, session.Expired)
	assert.Empty(t, session.BackendAccessToken)
}

func TestRefresh_BackendRefreshToken(t *testing.T) {
	upstreamToken := signUpstreamToken(t, jwt.MapClaims{"user_id": "user-42"})

	service, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + upstreamToken + `","refresh_token":"rotated","expires_in":3600}`))
	}))

	session := &models.Session{
		ID:                  "sess-1",
		UserID:              "user-42",
		Authenticated:       true,
		BackendRefreshToken: "old-refresh",
	}

	renewed := service.Refresh(context.Background(), session)

	assert.True(t, renewed.Authenticated)
	assert.False(t, renewed.Expired)
	assert.Equal(t, "rotated", renewed.BackendRefreshToken)
	assert.True(t, renewed.IsValid())
}

func TestRefresh_AllPathsFail(t *testing.T) {
	// Upstream refresh rejects; the session holds no Discord refresh
	// token either, so the refresh must invalidate without erroring.
	service, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid refresh token"}`))
	}))

	session := &models.Session{
		ID:                  "sess-1",
		UserID:              "user-42",
		Authenticated:       true,
		BackendRefreshToken: "stale",
	}

	renewed := service.Refresh(context.Background(), session)

	assert.False(t, renewed.Authenticated)
	assert.True(t, renewed.Expired)
	assert.Empty(t, renewed.BackendAccessToken)

	stored, err := store.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Authenticated)
	assert.True(t, stored.Expired)
}

func TestRefresh_DiscordRefreshAndReExchange(t *testing.T) {
	upstreamToken := signUpstreamToken(t, jwt.MapClaims{"user_id": "user-42"})

	service, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/discord", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + upstreamToken + `","expires_in":3600}`))
	}))

	discord := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"new-discord-token","refresh_token":"rotated-discord-refresh","expires_in":604800}`))
	}))
	t.Cleanup(discord.Close)
	service.discordService = NewDiscordServiceWithBaseURL(store, discord.URL)

	// No upstream refresh token, so the Discord provider path is the
	// only way back to an authenticated session.
	session := &models.Session{
		ID:                          "sess-1",
		UserID:                      "user-42",
		Authenticated:               true,
		BackendAccessTokenExpiresAt: time.Now().Add(-time.Minute),
		DiscordRefreshToken:         "old-discord-refresh",
	}

	renewed := service.Refresh(context.Background(), session)

	assert.True(t, renewed.Authenticated)
	assert.False(t, renewed.Expired)
	assert.Equal(t, upstreamToken, renewed.BackendAccessToken)
	assert.Equal(t, "rotated-discord-refresh", renewed.DiscordRefreshToken)
	assert.True(t, renewed.IsValid())
}

func TestRefresh_DiscordRefreshRejected(t *testing.T) {
	// Expired session with only a Discord refresh token, and Discord
	// answers the refresh with HTTP 400. The session must come back
	// unauthenticated and expired, not as an error.
	service, store := newTestService(t, http.NotFoundHandler())

	discord := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth2/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(discord.Close)
	service.discordService = NewDiscordServiceWithBaseURL(store, discord.URL)

	session := &models.Session{
		ID:                          "sess-1",
		UserID:                      "user-42",
		Authenticated:               true,
		BackendAccessTokenExpiresAt: time.Now().Add(-time.Minute),
		DiscordRefreshToken:         "discord-refresh",
	}

	renewed := service.Refresh(context.Background(), session)

	assert.False(t, renewed.Authenticated)
	assert.True(t, renewed.Expired)
	assert.Empty(t, renewed.BackendAccessToken)
	assert.False(t, renewed.IsValid())

	stored, err := store.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Authenticated)
	assert.True(t, stored.Expired)
}

func TestGenerateAndValidateJWT(t *testing.T) {
	service, _ := newTestService(t, http.NotFoundHandler())

	session := &models.Session{
		ID:          "sess-7",
		UserID:      "user-7",
		DisplayName: "Seven",
		Email:       "seven@example.com",
		Role:        "user",
	}

	token, expiresAt, err := service.GenerateJWT(session)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-7", user.SessionID)
	assert.Equal(t, "user-7", user.UserID)
	assert.Equal(t, "Seven", user.DisplayName)
	assert.Equal(t, "user", user.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service, _ := newTestService(t, http.NotFoundHandler())

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": "sess-1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = service.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestBackendToken_RefreshesExpiredSession(t *testing.T) {
	upstreamToken := signUpstreamToken(t, jwt.MapClaims{"user_id": "user-42"})

	service, store := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + upstreamToken + `","expires_in":3600}`))
	}))

	expired := &models.Session{
		ID:                          "sess-1",
		UserID:                      "user-42",
		Authenticated:               true,
		BackendAccessToken:          "stale-token",
		BackendAccessTokenExpiresAt: time.Now().Add(-time.Minute),
		BackendRefreshToken:         "refresh",
	}
	require.NoError(t, store.UpsertSession(context.Background(), expired))

	token, err := service.BackendToken(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, upstreamToken, token)
}

func TestBackendToken_UnknownSession(t *testing.T) {
	service, _ := newTestService(t, http.NotFoundHandler())

	_, err := service.BackendToken(context.Background(), "missing")
	assert.Error(t, err)
}

func TestDecodeUpstreamClaims(t *testing.T) {
	t.Run("user_id claim", func(t *testing.T) {
		token := signUpstreamToken(t, jwt.MapClaims{"user_id": "u1", "role": "officer"})
		claims, err := decodeUpstreamClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "officer", claims.Role)
	})

	t.Run("falls back to sub", func(t *testing.T) {
		token := signUpstreamToken(t, jwt.MapClaims{"sub": "u2"})
		claims, err := decodeUpstreamClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "u2", claims.UserID)
	})

	t.Run("missing identity", func(t *testing.T) {
		token := signUpstreamToken(t, jwt.MapClaims{"role": "user"})
		_, err := decodeUpstreamClaims(token)
		assert.Error(t, err)
	})
}
