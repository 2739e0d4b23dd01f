package monitoring

import (
	"time"

	"wavecast/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exposes streaming and authentication metrics.
type Collector struct {
	sessionsActive *prometheus.GaugeVec
	sessionsTotal  *prometheus.CounterVec
	framesStreamed *prometheus.CounterVec
	bytesStreamed  *prometheus.CounterVec
	authAttempts   *prometheus.CounterVec
	deviceOpens    *prometheus.CounterVec

	sessionDuration prometheus.Histogram
}

// NewCollector registers the metric set on the default registerer.
func NewCollector() *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer)
}

// NewCollectorWith registers on an explicit registerer; tests pass a
// fresh registry so collectors never collide.
func NewCollectorWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		sessionsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wavecast_sessions_active",
			Help: "Number of currently streaming sessions",
		}, []string{"transport"}),

		sessionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_sessions_total",
			Help: "Total number of streaming sessions started",
		}, []string{"transport"}),

		framesStreamed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_frames_streamed_total",
			Help: "Total number of PCM frames written to clients",
		}, []string{"transport"}),

		bytesStreamed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_bytes_streamed_total",
			Help: "Total number of PCM bytes written to clients",
		}, []string{"transport"}),

		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_auth_attempts_total",
			Help: "Authentication attempts by result",
		}, []string{"result"}),

		deviceOpens: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wavecast_device_opens_total",
			Help: "Capture device open attempts by outcome",
		}, []string{"outcome"}),

		sessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavecast_session_duration_seconds",
			Help:    "Duration of completed streaming sessions",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

func (c *Collector) SessionStarted(transport domain.TransportKind) {
	c.sessionsActive.WithLabelValues(string(transport)).Inc()
	c.sessionsTotal.WithLabelValues(string(transport)).Inc()
}

func (c *Collector) SessionEnded(transport domain.TransportKind, duration time.Duration) {
	c.sessionsActive.WithLabelValues(string(transport)).Dec()
	c.sessionDuration.Observe(duration.Seconds())
}

func (c *Collector) FrameStreamed(transport domain.TransportKind, bytes int) {
	c.framesStreamed.WithLabelValues(string(transport)).Inc()
	c.bytesStreamed.WithLabelValues(string(transport)).Add(float64(bytes))
}

func (c *Collector) AuthAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttempts.WithLabelValues(result).Inc()
}

// DeviceOpen records an open attempt outcome: "ok", "fallback" (opened,
// but on the fallback identifier) or "error".
func (c *Collector) DeviceOpen(outcome string) {
	c.deviceOpens.WithLabelValues(outcome).Inc()
}
