package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv returns the value of an environment variable or a default value if not set
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value if not set
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value if not set
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// MustGetEnv returns the value of an environment variable or panics if not set
func MustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	panic("Required environment variable " + key + " is not set")
}

// GetHost returns the listen host for the HTTP server
func GetHost() string {
	return GetEnv("HOST", "0.0.0.0")
}

// GetAPIPrefix returns the path prefix all API routes are mounted under
func GetAPIPrefix() string {
	return GetEnv("API_PREFIX", "/api")
}

// GetFrontendURL returns the URL the browser frontend is served from
func GetFrontendURL() string {
	return GetEnv("FRONTEND_URL", "http://localhost:3000")
}

// GetBackendBaseURL returns the base URL of the upstream game-data API
func GetBackendBaseURL() string {
	return GetEnv("BACKEND_BASE_URL", "http://localhost:8000")
}

// GetJWTSecret returns the secret used to sign warroom session tokens
func GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "warroom-dev-secret-change-me")
}

// GetDiscordClientID returns the Discord OAuth application client ID
func GetDiscordClientID() string {
	return GetEnv("DISCORD_CLIENT_ID", "")
}

// GetDiscordClientSecret returns the Discord OAuth application client secret
func GetDiscordClientSecret() string {
	return GetEnv("DISCORD_CLIENT_SECRET", "")
}

// GetDiscordRedirectURI returns the OAuth callback URI registered with Discord
func GetDiscordRedirectURI() string {
	return GetEnv("DISCORD_REDIRECT_URI", "http://localhost:3000/api/auth/discord/callback")
}

// GetAccessTokenWindow returns the fixed validity window applied to
// upstream access tokens when the exchange response carries no expiry.
func GetAccessTokenWindow() time.Duration {
	return time.Duration(GetIntEnv("ACCESS_TOKEN_WINDOW_MINUTES", 60)) * time.Minute
}

// GetCookieDuration returns the lifetime of the session cookie / JWT
func GetCookieDuration() time.Duration {
	return time.Duration(GetIntEnv("COOKIE_DURATION_HOURS", 24)) * time.Hour
}
