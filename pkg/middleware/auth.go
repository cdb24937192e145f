package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-warroom/pkg/handlers"
)

// AuthCookieName is the cookie carrying the warroom session JWT.
const AuthCookieName = "warroom_auth_token"

// AuthContextKey key for storing user info in request context
type AuthContextKey string

const (
	AuthContextKeyUser = AuthContextKey("user")
)

// AuthenticatedUser is the identity extracted from a validated session token.
type AuthenticatedUser struct {
	SessionID   string
	UserID      string
	DisplayName string
	Email       string
	Role        string
}

// IsAdmin reports whether the user carries the admin role.
func (u *AuthenticatedUser) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// TokenValidator validates a warroom session JWT.
type TokenValidator interface {
	ValidateToken(token string) (*AuthenticatedUser, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// RequireAuth ensures the user is authenticated via the session JWT
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.extractAndValidate(r)
		if err != nil {
			slog.Warn("Authentication failed", "error", err.Error())
			handlers.UnauthorizedResponse(w)
			return
		}

		ctx := context.WithValue(r.Context(), AuthContextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth adds user context if a valid session token is present
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.extractAndValidate(r)
		if err != nil {
			slog.Debug("Optional auth failed", "error", err.Error())
		}

		ctx := r.Context()
		if user != nil {
			ctx = context.WithValue(ctx, AuthContextKeyUser, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateHeaders validates a token taken from raw Authorization/Cookie
// header strings, for handlers that receive headers as inputs.
func (m *AuthMiddleware) ValidateHeaders(authHeader, cookieHeader string) (*AuthenticatedUser, error) {
	token := TokenFromHeaders(authHeader, cookieHeader)
	if token == "" {
		return nil, ErrNoToken
	}
	return m.validator.ValidateToken(token)
}

func (m *AuthMiddleware) extractAndValidate(r *http.Request) (*AuthenticatedUser, error) {
	var token string

	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		token = cookie.Value
	} else {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if token == "" {
		return nil, ErrNoToken
	}

	return m.validator.ValidateToken(token)
}

// TokenFromHeaders extracts the session JWT from raw header strings,
// preferring the Authorization header over the cookie.
func TokenFromHeaders(authHeader, cookieHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	for _, cookie := range strings.Split(cookieHeader, ";") {
		cookie = strings.TrimSpace(cookie)
		if strings.HasPrefix(cookie, AuthCookieName+"=") {
			return strings.TrimPrefix(cookie, AuthCookieName+"=")
		}
	}

	return ""
}

// GetAuthenticatedUser retrieves authenticated user from request context
func GetAuthenticatedUser(r *http.Request) *AuthenticatedUser {
	if user, ok := r.Context().Value(AuthContextKeyUser).(*AuthenticatedUser); ok {
		return user
	}
	return nil
}

// CreateAuthCookieHeader builds the Set-Cookie header value for a session JWT.
func CreateAuthCookieHeader(token string, maxAgeSeconds int) string {
	header := AuthCookieName + "=" + token + "; Path=/; HttpOnly; SameSite=Lax"
	if maxAgeSeconds > 0 {
		header += "; Max-Age=" + strconv.Itoa(maxAgeSeconds)
	}
	return header
}

// ClearAuthCookieHeader builds the Set-Cookie header value that clears the session cookie.
func ClearAuthCookieHeader() string {
	return AuthCookieName + "=; Path=/; HttpOnly; SameSite=Lax; Max-Age=0"
}

// Common middleware errors
var (
	ErrNoToken      = NewAuthError("no authentication token provided")
	ErrInvalidToken = NewAuthError("invalid authentication token")
)

// AuthError represents an authentication error
type AuthError struct {
	message string
}

func (e *AuthError) Error() string {
	return e.message
}

// NewAuthError creates a new authentication error
func NewAuthError(message string) *AuthError {
	return &AuthError{message: message}
}
