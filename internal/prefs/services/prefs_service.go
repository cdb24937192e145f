package services

import (
	"context"
	"fmt"
	"log/slog"

	"go-warroom/pkg/database"
)

const (
	localeKeyPrefix = "warroom:prefs:locale:"

	// DefaultLocale applies when a user never picked one.
	DefaultLocale = "en"
)

// SupportedLocales are the interface languages the app ships.
var SupportedLocales = []string{"en", "fr"}

// PrefsService stores per-user interface preferences in Redis.
type PrefsService struct {
	redis *database.Redis
}

// NewPrefsService creates a new preferences service
func NewPrefsService(redis *database.Redis) *PrefsService {
	return &PrefsService{redis: redis}
}

// GetLocale returns the user's locale, falling back to the default on
// any miss or storage failure.
func (s *PrefsService) GetLocale(ctx context.Context, userID string) string {
	if s.redis == nil {
		return DefaultLocale
	}

	locale, err := s.redis.Get(ctx, localeKeyPrefix+userID)
	if err != nil {
		if !database.IsNotFound(err) {
			slog.WarnContext(ctx, "Locale read failed", "error", err)
		}
		return DefaultLocale
	}
	if !IsSupportedLocale(locale) {
		return DefaultLocale
	}
	return locale
}

// SetLocale stores the user's locale. Unsupported locales are rejected.
func (s *PrefsService) SetLocale(ctx context.Context, userID, locale string) error {
	if !IsSupportedLocale(locale) {
		return fmt.Errorf("unsupported locale %q", locale)
	}
	if s.redis == nil {
		return fmt.Errorf("preference storage unavailable")
	}
	return s.redis.Set(ctx, localeKeyPrefix+userID, locale, 0)
}

// IsSupportedLocale reports whether the app ships the locale.
func IsSupportedLocale(locale string) bool {
	for _, supported := range SupportedLocales {
		if locale == supported {
			return true
		}
	}
	return false
}
