package domain

import "time"

// Token is an opaque bearer credential issued after a successful
// shared-secret check. The value itself carries no structure; validity
// lives exclusively in the token registry.
type Token string

// AuthToken pairs a token value with its expiry as stored by the registry.
// A token is valid iff the current time is before ExpiresAt.
type AuthToken struct {
	Value     Token
	ExpiresAt time.Time
}

// Valid reports whether the token is still usable at the given instant.
func (t AuthToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}
