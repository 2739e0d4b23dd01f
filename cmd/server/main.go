package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/services"
	handlers "wavecast/internal/handlers/http"
	"wavecast/internal/infrastructure/capture"
	"wavecast/internal/infrastructure/middleware"
	"wavecast/internal/infrastructure/monitoring"
	"wavecast/internal/infrastructure/repositories"
	wssignal "wavecast/internal/infrastructure/signal"
	"wavecast/internal/infrastructure/tlsfiles"
	"wavecast/pkg/config"
	"wavecast/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/wavecast/config.yaml",
		"config.yaml",
	}

	cfg := loadConfig(configPaths)

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	// Token storage (redis when configured, in-memory otherwise)
	factory, err := repositories.NewFactory(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize repositories", "error", err)
	}
	defer factory.Close()

	tokenRepo := factory.CreateTokenRepository()
	authService := services.NewAuthService(cfg.Auth.Password, cfg.Auth.TokenTTL, tokenRepo, sugar)

	opener, err := capture.NewOpener(cfg.Capture.Backend, sugar)
	if err != nil {
		sugar.Fatalw("failed to initialize capture backend", "error", err)
	}

	metrics := monitoring.NewCollector()

	// HTTP streaming server (chunked WAV)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(sugar))
	router.Use(middleware.ErrorHandlerMiddleware(sugar))

	authHandler := handlers.NewAuthHandler(authService, metrics, sugar)
	authHandler.SetupRoutes(router, middleware.NewAuthRateLimitMiddleware(cfg))

	streamHandler := handlers.NewStreamHandler(authService, opener, domain.DeviceParams{
		Device:       cfg.Capture.Device,
		Channels:     cfg.Capture.Channels,
		SampleRate:   cfg.Capture.SampleRate,
		Format:       domain.S16LE,
		PeriodFrames: cfg.Capture.HTTP.PeriodFrames,
	}, metrics, sugar)
	streamHandler.SetupRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		if err := factory.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	// WebSocket streaming server (raw 32-bit PCM with software gain)
	wsServer := wssignal.NewServer(authService, opener, domain.DeviceParams{
		Device:       cfg.Capture.Device,
		Channels:     cfg.Capture.Channels,
		SampleRate:   cfg.Capture.SampleRate,
		Format:       domain.S32LE,
		PeriodFrames: cfg.Capture.WebSocket.PeriodFrames,
	}, cfg.Capture.Gain, metrics, sugar)

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/", wsServer.HandleWebSocket)
	signalServer := &http.Server{
		Addr:    cfg.Signal.Address,
		Handler: wsMux,
	}

	tlsPair, useTLS := tlsfiles.Pair{}, false
	if cfg.TLS.Enabled {
		candidates := make([]tlsfiles.Pair, 0, len(cfg.TLS.Candidates))
		for _, c := range cfg.TLS.Candidates {
			candidates = append(candidates, tlsfiles.Pair{CertFile: c.CertFile, KeyFile: c.KeyFile})
		}
		tlsPair, useTLS = tlsfiles.Locate(candidates)
		if !useTLS {
			sugar.Warnw("no TLS certificate found, serving plaintext",
				"candidates", len(candidates))
		}
	}

	go serve(httpServer, tlsPair, useTLS, "http", sugar)
	go serve(signalServer, tlsPair, useTLS, "websocket", sugar)

	var metricsServer *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort),
			Handler: metricsMux,
		}
		go serve(metricsServer, tlsfiles.Pair{}, false, "metrics", sugar)
	}

	sugar.Infow("wavecast started",
		"http_address", cfg.Server.Address,
		"websocket_address", cfg.Signal.Address,
		"capture_backend", cfg.Capture.Backend,
		"capture_device", cfg.Capture.Device,
		"tls", useTLS)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		sugar.Errorw("http server shutdown failed", "error", err)
	}
	if err := signalServer.Shutdown(ctx); err != nil {
		sugar.Errorw("websocket server shutdown failed", "error", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			sugar.Errorw("metrics server shutdown failed", "error", err)
		}
	}
	sugar.Info("shutdown complete")
}

func loadConfig(paths []string) *config.Config {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatalf("Failed to load config from %s: %v", path, err)
		}
		log.Printf("Loaded config from: %s", path)
		return cfg
	}

	log.Printf("Could not find config file, using defaults")
	cfg, err := config.Load("") // defaults plus env overrides
	if err != nil {
		log.Fatalf("Invalid default configuration: %v", err)
	}
	return cfg
}

func serve(srv *http.Server, pair tlsfiles.Pair, useTLS bool, name string, sugar *zap.SugaredLogger) {
	var err error
	if useTLS {
		err = srv.ListenAndServeTLS(pair.CertFile, pair.KeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw(name+" server failed", "error", err)
	}
}
