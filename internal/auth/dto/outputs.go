package dto

import "time"

// DiscordLoginResponse represents the Discord login initiation response
type DiscordLoginResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// AuthStatusResponse represents authentication status
type AuthStatusResponse struct {
	Authenticated bool    `json:"authenticated"`
	Expired       bool    `json:"expired"`
	UserID        *string `json:"user_id"`
	DisplayName   *string `json:"display_name"`
	Role          *string `json:"role"`
}

// SessionResponse represents the current session without its credentials
type SessionResponse struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LogoutResponse represents a successful logout
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DiscordLoginOutput represents the output for Discord login initiation
type DiscordLoginOutput struct {
	Body DiscordLoginResponse `json:"body"`
}

// DiscordCallbackOutput represents the output for the Discord OAuth callback
type DiscordCallbackOutput struct {
	Status    int    `json:"-" status:"302" doc:"HTTP status code for redirect"`
	SetCookie string `header:"Set-Cookie" doc:"Authentication cookie"`
	Location  string `header:"Location" doc:"Redirect location"`
}

// AuthStatusOutput represents the output for authentication status
type AuthStatusOutput struct {
	Body AuthStatusResponse `json:"body"`
}

// SessionOutput represents the output for the current session
type SessionOutput struct {
	Body SessionResponse `json:"body"`
}

// RefreshOutput represents the output for a forced session refresh
type RefreshOutput struct {
	Body AuthStatusResponse `json:"body"`
}

// LogoutOutput represents the output for logout
type LogoutOutput struct {
	SetCookie string         `header:"Set-Cookie" doc:"Clear authentication cookie"`
	Body      LogoutResponse `json:"body"`
}
