package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server address", func(c *Config) { c.Server.Address = "" }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }},
		{"empty signal address", func(c *Config) { c.Signal.Address = "" }},
		{"unknown capture backend", func(c *Config) { c.Capture.Backend = "jack" }},
		{"empty capture device", func(c *Config) { c.Capture.Device = "" }},
		{"zero sample rate", func(c *Config) { c.Capture.SampleRate = 0 }},
		{"zero channels", func(c *Config) { c.Capture.Channels = 0 }},
		{"zero gain", func(c *Config) { c.Capture.Gain = 0 }},
		{"negative gain", func(c *Config) { c.Capture.Gain = -2 }},
		{"zero http period", func(c *Config) { c.Capture.HTTP.PeriodFrames = 0 }},
		{"zero websocket period", func(c *Config) { c.Capture.WebSocket.PeriodFrames = 0 }},
		{"empty password", func(c *Config) { c.Auth.Password = "" }},
		{"zero token ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"negative sweep interval", func(c *Config) { c.Auth.SweepInterval = -time.Minute }},
		{"tls enabled without candidates", func(c *Config) { c.TLS.Candidates = nil }},
		{"redis enabled without address", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Address = ""
		}},
		{"redis enabled with zero pool", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.PoolSize = 0
		}},
		{"prometheus enabled with zero port", func(c *Config) { c.Monitoring.PrometheusPort = 0 }},
		{"empty log level", func(c *Config) { c.Logging.Level = "" }},
		{"rate limiting enabled with zero rps", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.RequestsPerSecond = 0
		}},
		{"rate limiting enabled with zero burst", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.Burst = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Capture.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want default 48000", cfg.Capture.SampleRate)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  address: ":9000"
capture:
  device: "hw:1,0"
  gain: 2.5
auth:
  password: "secret"
  token_ttl: 1h
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Errorf("server address = %q, want :9000", cfg.Server.Address)
	}
	if cfg.Capture.Device != "hw:1,0" {
		t.Errorf("capture device = %q, want hw:1,0", cfg.Capture.Device)
	}
	if cfg.Capture.Gain != 2.5 {
		t.Errorf("gain = %v, want 2.5", cfg.Capture.Gain)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl = %v, want 1h", cfg.Auth.TokenTTL)
	}
	// Untouched fields keep defaults.
	if cfg.Signal.Address != ":8765" {
		t.Errorf("signal address = %q, want default :8765", cfg.Signal.Address)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WAVECAST_STREAM_PASSWORD", "fromenv")
	t.Setenv("WAVECAST_CAPTURE_BACKEND", "mock")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.Password != "fromenv" {
		t.Errorf("password = %q, want env override", cfg.Auth.Password)
	}
	if cfg.Capture.Backend != "mock" {
		t.Errorf("backend = %q, want env override", cfg.Capture.Backend)
	}
}
