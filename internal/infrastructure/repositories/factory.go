package repositories

import (
	"context"

	"wavecast/internal/core/ports"
	"wavecast/internal/infrastructure/repositories/memory"
	redisrepo "wavecast/internal/infrastructure/repositories/redis"
	"wavecast/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory creates the token repository backend, preferring Redis when
// enabled and reachable and falling back to the in-process map otherwise.
type Factory struct {
	useRedis    bool
	redisClient *redis.Client
	memoryRepo  *memory.TokenRepository
	logger      *zap.SugaredLogger
}

// NewFactory connects to Redis if configured. A connection failure is
// logged and downgraded to the memory backend rather than treated as
// fatal.
func NewFactory(cfg *config.Config, logger *zap.SugaredLogger) (*Factory, error) {
	f := &Factory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory token registry",
				"error", err,
			)
			f.useRedis = false
		} else {
			f.redisClient = client
			logger.Info("using Redis token registry")
		}
	}

	if !f.useRedis {
		f.memoryRepo = memory.NewTokenRepository(cfg.Auth.SweepInterval)
		logger.Info("using memory token registry")
	}

	return f, nil
}

// CreateTokenRepository returns the selected token registry backend.
func (f *Factory) CreateTokenRepository() ports.TokenRepository {
	if f.useRedis && f.redisClient != nil {
		return redisrepo.NewTokenRepository(f.redisClient)
	}
	return f.memoryRepo
}

// Close stops the memory sweeper and closes the Redis connection if used.
func (f *Factory) Close() error {
	if f.memoryRepo != nil {
		f.memoryRepo.Stop()
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck pings the backing store. The memory backend is always
// healthy.
func (f *Factory) HealthCheck(ctx context.Context) error {
	if f.useRedis && f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
