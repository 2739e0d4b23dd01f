package memory

import (
	"context"
	"sync"
	"time"

	"wavecast/internal/core/domain"
)

// TokenRepository is a mutex-guarded in-process token map. Expired
// entries are evicted when checked; an optional background sweep bounds
// entries that are never checked again.
type TokenRepository struct {
	mu     sync.Mutex
	tokens map[domain.Token]time.Time

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewTokenRepository creates the repository. If sweepInterval > 0 a
// background sweeper removes expired entries at that cadence; call Stop
// to shut it down.
func NewTokenRepository(sweepInterval time.Duration) *TokenRepository {
	r := &TokenRepository{
		tokens:    make(map[domain.Token]time.Time),
		sweepStop: make(chan struct{}),
	}
	if sweepInterval > 0 {
		go r.sweepLoop(sweepInterval)
	}
	return r
}

func (r *TokenRepository) Put(ctx context.Context, token domain.Token, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = expiresAt
	return nil
}

// CheckAndEvict holds the lock across the expiry check and the delete, so
// concurrent checks of the same expired token cannot both see it as valid.
func (r *TokenRepository) CheckAndEvict(ctx context.Context, token domain.Token, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.tokens[token]
	if !ok {
		return false, nil
	}
	if !now.Before(expiresAt) {
		delete(r.tokens, token)
		return false, nil
	}
	return true, nil
}

func (r *TokenRepository) Remove(ctx context.Context, token domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

// Sweep removes every entry expired at now and returns how many it evicted.
func (r *TokenRepository) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for token, expiresAt := range r.tokens {
		if !now.Before(expiresAt) {
			delete(r.tokens, token)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of stored tokens, expired or not.
func (r *TokenRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// Stop terminates the background sweeper, if any. Safe to call more than
// once.
func (r *TokenRepository) Stop() {
	r.sweepOnce.Do(func() { close(r.sweepStop) })
}

func (r *TokenRepository) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.Sweep(time.Now())
		}
	}
}
