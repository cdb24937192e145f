package dto

// GetLocaleInput represents the input for reading the locale preference
type GetLocaleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string `header:"Cookie" doc:"Session cookie for authentication"`
}

// SetLocaleRequest is the locale update payload
type SetLocaleRequest struct {
	Locale string `json:"locale" validate:"required" doc:"Interface locale, e.g. en or fr"`
}

// SetLocaleInput represents the input for updating the locale preference
type SetLocaleInput struct {
	Authorization string           `header:"Authorization" doc:"Bearer token for authentication"`
	Cookie        string           `header:"Cookie" doc:"Session cookie for authentication"`
	Body          SetLocaleRequest `json:"body"`
}

// LocaleResponse carries the effective locale
type LocaleResponse struct {
	Locale string `json:"locale"`
}

// GetLocaleOutput represents the output for reading the locale preference
type GetLocaleOutput struct {
	Body LocaleResponse `json:"body"`
}

// SetLocaleOutput represents the output for updating the locale preference
type SetLocaleOutput struct {
	Body LocaleResponse `json:"body"`
}
