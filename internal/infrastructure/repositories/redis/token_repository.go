package redis

import (
	"context"
	"fmt"
	"time"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// TokenRepository stores tokens as keys with a native Redis TTL, so
// expiry and eviction are handled server-side: an expired key simply
// stops existing, which also gives the atomic check-then-delete the
// registry contract asks for.
type TokenRepository struct {
	client *redis.Client
	prefix string
}

func NewTokenRepository(client *redis.Client) ports.TokenRepository {
	return &TokenRepository{
		client: client,
		prefix: "wavecast:token:",
	}
}

func (r *TokenRepository) key(token domain.Token) string {
	return r.prefix + string(token)
}

func (r *TokenRepository) Put(ctx context.Context, token domain.Token, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired at %s", expiresAt)
	}
	if err := r.client.Set(ctx, r.key(token), expiresAt.Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}
	return nil
}

func (r *TokenRepository) CheckAndEvict(ctx context.Context, token domain.Token, now time.Time) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token in Redis: %w", err)
	}
	return n > 0, nil
}

func (r *TokenRepository) Remove(ctx context.Context, token domain.Token) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to remove token from Redis: %w", err)
	}
	return nil
}
