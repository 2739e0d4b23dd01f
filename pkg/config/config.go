package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Signal struct {
		Address         string        `yaml:"address"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"signal"`

	Capture struct {
		Backend    string  `yaml:"backend"` // "alsa" or "mock"
		Device     string  `yaml:"device"`
		SampleRate int     `yaml:"sample_rate"`
		Channels   int     `yaml:"channels"`
		Gain       float64 `yaml:"gain"`

		HTTP struct {
			PeriodFrames int `yaml:"period_frames"`
		} `yaml:"http"`
		WebSocket struct {
			PeriodFrames int `yaml:"period_frames"`
		} `yaml:"websocket"`
	} `yaml:"capture"`

	Auth struct {
		Password      string        `yaml:"password"`
		TokenTTL      time.Duration `yaml:"token_ttl"`
		SweepInterval time.Duration `yaml:"sweep_interval"` // 0 disables the background sweep
	} `yaml:"auth"`

	TLS struct {
		Enabled    bool `yaml:"enabled"`
		Candidates []struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"candidates"`
	} `yaml:"tls"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	// Server
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	// Signal
	if c.Signal.Address == "" {
		return fmt.Errorf("signal.address must not be empty")
	}
	if c.Signal.ShutdownTimeout <= 0 {
		return fmt.Errorf("signal.shutdown_timeout must be > 0")
	}

	// Capture
	switch c.Capture.Backend {
	case "alsa", "mock":
	default:
		return fmt.Errorf("capture.backend must be \"alsa\" or \"mock\", got %q", c.Capture.Backend)
	}
	if c.Capture.Device == "" {
		return fmt.Errorf("capture.device must not be empty")
	}
	if c.Capture.SampleRate <= 0 {
		return fmt.Errorf("capture.sample_rate must be > 0")
	}
	if c.Capture.Channels <= 0 {
		return fmt.Errorf("capture.channels must be > 0")
	}
	if c.Capture.Gain <= 0 {
		return fmt.Errorf("capture.gain must be > 0")
	}
	if c.Capture.HTTP.PeriodFrames <= 0 {
		return fmt.Errorf("capture.http.period_frames must be > 0")
	}
	if c.Capture.WebSocket.PeriodFrames <= 0 {
		return fmt.Errorf("capture.websocket.period_frames must be > 0")
	}

	// Auth
	if c.Auth.Password == "" {
		return fmt.Errorf("auth.password must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}
	if c.Auth.SweepInterval < 0 {
		return fmt.Errorf("auth.sweep_interval must be >= 0")
	}

	// TLS
	if c.TLS.Enabled && len(c.TLS.Candidates) == 0 {
		return fmt.Errorf("tls.candidates must not be empty when tls.enabled=true")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	// Monitoring
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort <= 0 {
		return fmt.Errorf("monitoring.prometheus_port must be > 0 when prometheus_enabled=true")
	}

	// Logging
	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	// Rate limiting
	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	return nil
}

// Load reads configuration from a YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8000"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Signal.Address = ":8765"
	cfg.Signal.ShutdownTimeout = 10 * time.Second

	cfg.Capture.Backend = "alsa"
	cfg.Capture.Device = "mic_with_gain"
	cfg.Capture.SampleRate = 48000
	cfg.Capture.Channels = 2
	cfg.Capture.Gain = 1.0
	cfg.Capture.HTTP.PeriodFrames = 2048
	cfg.Capture.WebSocket.PeriodFrames = 1024

	cfg.Auth.Password = "audiopirate"
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Auth.SweepInterval = 10 * time.Minute

	cfg.TLS.Enabled = true
	cfg.TLS.Candidates = []struct {
		CertFile string `yaml:"cert_file"`
		KeyFile  string `yaml:"key_file"`
	}{
		{CertFile: "wavecast.crt", KeyFile: "wavecast.key"},
		{CertFile: "/etc/wavecast/server.crt", KeyFile: "/etc/wavecast/server.key"},
	}

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 5
	cfg.RateLimiting.Burst = 10

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("WAVECAST_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if addr := os.Getenv("WAVECAST_SIGNAL_ADDRESS"); addr != "" {
		c.Signal.Address = addr
	}
	if level := os.Getenv("WAVECAST_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if password := os.Getenv("WAVECAST_STREAM_PASSWORD"); password != "" {
		c.Auth.Password = password
	}
	if device := os.Getenv("WAVECAST_CAPTURE_DEVICE"); device != "" {
		c.Capture.Device = device
	}
	if backend := os.Getenv("WAVECAST_CAPTURE_BACKEND"); backend != "" {
		c.Capture.Backend = backend
	}
	if addr := os.Getenv("WAVECAST_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
}
