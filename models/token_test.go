package models

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{
			name:    "valid session",
			session: Session{Token: "t", ExpiresAt: now.Add(time.Hour)},
			want:    false,
		},
		{
			name:    "past expiry",
			session: Session{Token: "t", ExpiresAt: now.Add(-time.Second)},
			want:    true,
		},
		{
			name:    "expiry exactly now",
			session: Session{Token: "t", ExpiresAt: now},
			want:    true,
		},
		{
			name:    "no token",
			session: Session{ExpiresAt: now.Add(time.Hour)},
			want:    true,
		},
		{
			name:    "no expiry claim",
			session: Session{Token: "t"},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Expired(now))
		})
	}
}

func TestParseSession(t *testing.T) {
	expiresAt := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-1",
		"role": "asha",
		"exp":  expiresAt.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	session, err := ParseSession(tokenString)

	require.NoError(t, err)
	assert.Equal(t, tokenString, session.Token)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, RoleASHA, session.Role)
	assert.True(t, session.ExpiresAt.Equal(expiresAt))
}

func TestParseSession_MissingClaims(t *testing.T) {
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	session, err := ParseSession(tokenString)

	require.NoError(t, err)
	assert.Empty(t, session.UserID)
	assert.Empty(t, session.Role)
	// Without an expiry claim the session counts as already stale.
	assert.True(t, session.Expired(time.Now()))
}

func TestParseSession_Garbage(t *testing.T) {
	_, err := ParseSession("not-a-jwt")

	assert.Error(t, err)
}
