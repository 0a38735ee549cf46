// Package identity is the gateway to the credential store: it owns password
// hashes, bearer-token issuance and verification, and account bans. The rest
// of the application talks to it through the Gateway interface so the profile
// store and the credential store stay separate (user creation needs to roll
// the credential back when the profile insert fails).
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrBanned             = errors.New("identity is banned")
	ErrDuplicatePhone     = errors.New("phone number already in use")
	ErrNotFound           = errors.New("identity not found")
)

// TokenPair is what a successful sign-in or refresh yields.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Gateway issues and verifies credentials. Verification must consult the
// stored ban state so that a deactivation defeats already-issued refresh
// tokens.
type Gateway interface {
	// Create stores a credential for a new account. The id is chosen by the
	// caller so the matching profile row can share it.
	Create(ctx context.Context, id string, phone, password string) error
	// Delete removes a credential; the compensating step when a profile
	// insert fails after Create.
	Delete(ctx context.Context, id string) error
	// SignIn checks phone+password and issues a token pair.
	SignIn(ctx context.Context, phone, password string) (string, TokenPair, error)
	// Refresh exchanges a refresh token for a fresh pair.
	Refresh(ctx context.Context, refreshToken string) (string, TokenPair, error)
	// Verify resolves an access token to the identity id it was issued for.
	Verify(ctx context.Context, accessToken string) (string, error)
	// Ban blocks sign-in, refresh and verification for the given duration.
	Ban(ctx context.Context, id string, d time.Duration) error
	// SetPassword replaces the stored password (admin reset path).
	SetPassword(ctx context.Context, id string, newPassword string) error
}
