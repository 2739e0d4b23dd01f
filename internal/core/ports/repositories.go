package ports

import (
	"context"
	"time"

	"wavecast/internal/core/domain"
)

// TokenRepository stores issued bearer tokens with their expiry. Expired
// entries are removed as a side effect of checking them; backends must
// make the check-then-delete atomic so no two concurrent checks can both
// observe an expired entry as valid.
type TokenRepository interface {
	// Put stores a token until expiresAt.
	Put(ctx context.Context, token domain.Token, expiresAt time.Time) error

	// CheckAndEvict reports whether the token is present and unexpired at
	// now, deleting it if it has expired.
	CheckAndEvict(ctx context.Context, token domain.Token, now time.Time) (bool, error)

	// Remove deletes a token regardless of expiry.
	Remove(ctx context.Context, token domain.Token) error
}
