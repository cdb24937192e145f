package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-warroom/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	user *middleware.AuthenticatedUser
	err  error
}

func (f *fakeValidator) ValidateToken(token string) (*middleware.AuthenticatedUser, error) {
	return f.user, f.err
}

type fakeTokenSource struct {
	token string
	err   error
}

func (f *fakeTokenSource) BackendToken(ctx context.Context, sessionID string) (string, error) {
	return f.token, f.err
}

func newProxyTest(t *testing.T, upstream http.Handler) *ProxyService {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	validator := &fakeValidator{user: &middleware.AuthenticatedUser{SessionID: "sess-1", UserID: "user-1"}}
	tokens := &fakeTokenSource{token: "backend-bearer"}
	return NewProxyServiceWithBaseURL(validator, tokens, server.URL)
}

func TestForward_InjectsBearerAndPassesThrough(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	service := newProxyTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7}`))
	}))

	req := httptest.NewRequest("POST", "/api/back/alliances/1/defense/bg/2/place?dry=1", strings.NewReader(`{"node_number":5}`))
	req.Header.Set("Authorization", "Bearer session-jwt")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, "Bearer backend-bearer", gotAuth)
	assert.Equal(t, "/alliances/1/defense/bg/2/place", gotPath)
	assert.Equal(t, "dry=1", gotQuery)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"id":7}`, rec.Body.String())
}

func TestForward_PassesErrorBodiesVerbatim(t *testing.T) {
	service := newProxyTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"node already taken"}`))
	}))

	req := httptest.NewRequest("POST", "/api/back/alliances/1/defense/bg/1/place", nil)
	req.Header.Set("Authorization", "Bearer session-jwt")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `{"message":"node already taken"}`, rec.Body.String())
}

func TestForward_NoToken(t *testing.T) {
	called := false
	service := newProxyTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/back/champions", nil)
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestForward_InvalidToken(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	validator := &fakeValidator{err: errors.New("bad signature")}
	service := NewProxyServiceWithBaseURL(validator, &fakeTokenSource{token: "x"}, server.URL)

	req := httptest.NewRequest("GET", "/api/back/champions", nil)
	req.Header.Set("Cookie", "warroom_auth_token=forged")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForward_ExpiredSession(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	validator := &fakeValidator{user: &middleware.AuthenticatedUser{SessionID: "sess-1"}}
	tokens := &fakeTokenSource{err: errors.New("session expired")}
	service := NewProxyServiceWithBaseURL(validator, tokens, server.URL)

	req := httptest.NewRequest("GET", "/api/back/champions", nil)
	req.Header.Set("Authorization", "Bearer session-jwt")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForward_BackendUnreachable(t *testing.T) {
	validator := &fakeValidator{user: &middleware.AuthenticatedUser{SessionID: "sess-1"}}
	tokens := &fakeTokenSource{token: "backend-bearer"}
	// Nothing listens on this port.
	service := NewProxyServiceWithBaseURL(validator, tokens, "http://127.0.0.1:1")

	req := httptest.NewRequest("GET", "/api/back/champions", nil)
	req.Header.Set("Authorization", "Bearer session-jwt")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestForward_StripsCallerCredentials(t *testing.T) {
	var gotCookie string
	service := newProxyTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/back/champions", nil)
	req.Header.Set("Cookie", "warroom_auth_token=session-jwt")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotCookie)
}

func TestUpstreamPathOf(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/back/auth/session", nil)
	assert.Equal(t, "/auth/session", upstreamPathOf(req))

	req = httptest.NewRequest("GET", "/champions", nil)
	assert.Equal(t, "/champions", upstreamPathOf(req))
}

func TestForward_StreamsLargeBody(t *testing.T) {
	payload := strings.Repeat("x", 1<<20)
	service := newProxyTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))

	req := httptest.NewRequest("POST", "/api/back/champion-users/bulk", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer session-jwt")
	rec := httptest.NewRecorder()

	service.Forward(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len(payload), rec.Body.Len())
}
