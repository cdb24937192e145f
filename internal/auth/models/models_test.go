package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionIsValid(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{
			name: "authenticated with future expiry",
			session: &Session{
				Authenticated:               true,
				BackendAccessToken:          "token",
				BackendAccessTokenExpiresAt: time.Now().Add(time.Hour),
			},
			want: true,
		},
		{
			name: "authenticated but expired",
			session: &Session{
				Authenticated:               true,
				BackendAccessToken:          "token",
				BackendAccessTokenExpiresAt: time.Now().Add(-time.Minute),
			},
			want: false,
		},
		{
			name:    "unauthenticated",
			session: &Session{Expired: true},
			want:    false,
		},
		{
			name:    "nil session",
			session: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.IsValid())
		})
	}
}

func TestSessionInvalidated(t *testing.T) {
	session := &Session{
		ID:                          "sess-1",
		UserID:                      "user-1",
		DisplayName:                 "Someone",
		Authenticated:               true,
		BackendAccessToken:          "token",
		BackendAccessTokenExpiresAt: time.Now().Add(time.Hour),
	}

	out := session.Invalidated()

	assert.False(t, out.Authenticated)
	assert.True(t, out.Expired)
	assert.Empty(t, out.BackendAccessToken)
	assert.Equal(t, "user-1", out.UserID)
	assert.Equal(t, "Someone", out.DisplayName)

	// The original is untouched.
	assert.True(t, session.Authenticated)
	assert.Equal(t, "token", session.BackendAccessToken)
}
