// Package auth signs the dashboard admin in and out. Sessions live in Redis;
// the bearer token only carries the session ID, so logging out revokes it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/homebite/orderdesk/internal/platform/httpx"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", httpx.ErrUnauthorized)

// ErrSessionExpired is returned when a token's session no longer exists.
var ErrSessionExpired = fmt.Errorf("session expired: %w", httpx.ErrUnauthorized)

var errTokenRequired = errors.New("token required")

// Credentials are the configured admin login.
type Credentials struct {
	Email        string
	PasswordHash string
}

// Session is a signed-in admin.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// LoginResult is returned to the dashboard after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}
