package models

import "time"

// Session is the authentication state for one user. A session is either
// fully authenticated with a usable upstream bearer token, or fully
// unauthenticated; no state carries partial credentials.
type Session struct {
	ID                          string    `bson:"_id" json:"id"`
	UserID                      string    `bson:"user_id" json:"user_id"`
	DiscordID                   string    `bson:"discord_id,omitempty" json:"discord_id,omitempty"`
	DisplayName                 string    `bson:"display_name" json:"display_name"`
	Email                       string    `bson:"email,omitempty" json:"email,omitempty"`
	Role                        string    `bson:"role" json:"role"`
	AvatarURL                   string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	BackendAccessToken          string    `bson:"backend_access_token" json:"-"`
	BackendAccessTokenExpiresAt time.Time `bson:"backend_access_token_expires_at" json:"backend_access_token_expires_at"`
	BackendRefreshToken         string    `bson:"backend_refresh_token,omitempty" json:"-"`
	DiscordRefreshToken         string    `bson:"discord_refresh_token,omitempty" json:"-"`
	Authenticated               bool      `bson:"authenticated" json:"authenticated"`
	Expired                     bool      `bson:"expired" json:"expired"`
	CreatedAt                   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt                   time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValid reports whether the session holds a currently usable bearer token.
func (s *Session) IsValid() bool {
	return s != nil && s.Authenticated && time.Now().Before(s.BackendAccessTokenExpiresAt)
}

// Invalidated returns a copy of the session with every credential cleared.
func (s *Session) Invalidated() *Session {
	out := *s
	out.Authenticated = false
	out.Expired = true
	out.BackendAccessToken = ""
	out.BackendAccessTokenExpiresAt = time.Time{}
	return &out
}

// OAuthState is a short-lived CSRF token for the Discord login flow.
type OAuthState struct {
	State     string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
