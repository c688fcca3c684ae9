// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Matricare Health

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the cached bearer credential of the signed-in user.
//
// The client treats the token as opaque: it never verifies the signature
// (the backend does) and only reads the registered claims it needs to decide
// whether the cached token is still usable.
type Session struct {
	// Token is the compact JWS string sent in Authorization headers.
	Token string `json:"token"`

	// UserID is the subject claim of the token.
	UserID string `json:"user_id"`

	// Role is the authorization role claim of the token.
	Role Role `json:"role"`

	// ExpiresAt is the token's expiry claim. A zero value means the
	// token carried no expiry and is treated as already stale.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session token is unusable at time now.
// Tokens without an expiry claim count as expired so the client falls
// through to a refresh rather than sending a credential of unknown age.
func (s Session) Expired(now time.Time) bool {
	if s.Token == "" || s.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// ParseSession builds a Session from a compact JWT string using an
// unverified parse. Only claim extraction happens client-side; signature
// verification is the backend's job on every request.
func ParseSession(tokenString string) (Session, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return Session{}, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, errors.New("invalid session token claims")
	}

	s := Session{Token: tokenString}

	if sub, err := claims.GetSubject(); err == nil {
		s.UserID = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	if role, ok := claims["role"].(string); ok {
		s.Role = Role(role)
	}

	return s, nil
}
