package ports

import (
	"context"

	"wavecast/internal/core/domain"
)

// AuthService is the process-wide token registry shared by all transport
// listeners.
type AuthService interface {
	// Authenticate checks the submitted shared secret and, on success,
	// mints a fresh bearer token. Returns domain.ErrAuthFailed on mismatch.
	Authenticate(ctx context.Context, password string) (domain.Token, error)

	// Check reports whether the token is currently valid. Checking an
	// expired token evicts it.
	Check(ctx context.Context, token domain.Token) bool

	// Revoke removes a token before its expiry.
	Revoke(ctx context.Context, token domain.Token) error
}
