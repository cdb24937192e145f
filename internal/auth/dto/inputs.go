package dto

// DiscordLoginInput represents the input for Discord login initiation (no body needed)
type DiscordLoginInput struct {
	Cookie string `header:"Cookie" doc:"Optional session cookie for authentication"`
}

// DiscordCallbackInput represents the input for the Discord OAuth callback
type DiscordCallbackInput struct {
	Code  string `query:"code" validate:"required" doc:"OAuth2 authorization code from Discord"`
	State string `query:"state" validate:"required" doc:"CSRF protection state parameter"`
}

// AuthStatusInput represents the input for authentication status (no body needed)
type AuthStatusInput struct {
	Authorization string `header:"Authorization" doc:"Optional Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Optional session cookie for authentication"`
}

// SessionInput represents the input for the current session (no body needed)
type SessionInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
}

// RefreshInput represents the input for a forced session refresh
type RefreshInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
}

// LogoutInput represents the input for logout
type LogoutInput struct {
	Authorization string `header:"Authorization" doc:"Optional Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Optional session cookie for authentication"`
}
