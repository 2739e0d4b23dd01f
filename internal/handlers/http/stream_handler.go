package http

import (
	"net/http"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
	"wavecast/internal/infrastructure/capture"
	"wavecast/internal/infrastructure/monitoring"
	apperrors "wavecast/pkg/errors"
	"wavecast/pkg/pcm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StreamHandler serves the chunked WAV live stream. The token is checked
// once on entry; unlike the WebSocket transport there is no per-chunk
// re-check, so a stream started with a valid token outlives its expiry
// until the client disconnects.
type StreamHandler struct {
	authService ports.AuthService
	opener      ports.CaptureOpener
	params      domain.DeviceParams
	metrics     *monitoring.Collector
	logger      *zap.SugaredLogger
}

func NewStreamHandler(
	authService ports.AuthService,
	opener ports.CaptureOpener,
	params domain.DeviceParams,
	metrics *monitoring.Collector,
	logger *zap.SugaredLogger,
) *StreamHandler {
	return &StreamHandler{
		authService: authService,
		opener:      opener,
		params:      params,
		metrics:     metrics,
		logger:      logger,
	}
}

func (h *StreamHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/stream_audio", h.StreamAudio)
	router.GET("/live", h.LivePage)
}

func (h *StreamHandler) StreamAudio(c *gin.Context) {
	token := domain.Token(c.Query("token"))
	if token == "" || !h.authService.Check(c.Request.Context(), token) {
		c.Error(apperrors.NewUnauthorizedError("missing or invalid token"))
		return
	}

	dev, err := capture.OpenWithFallback(h.opener, h.params, h.logger)
	if err != nil {
		h.metrics.DeviceOpen("error")
		c.Error(apperrors.NewDeviceUnavailableError(err))
		return
	}
	defer dev.Close()

	if dev.Name() != h.params.Device {
		h.metrics.DeviceOpen("fallback")
	} else {
		h.metrics.DeviceOpen("ok")
	}

	sess := domain.NewStreamSession(uuid.New().String(), domain.TransportHTTP, dev.Name())
	sess.BeginStreaming()
	h.metrics.SessionStarted(sess.Transport)
	defer func() {
		sess.Close()
		h.metrics.SessionEnded(sess.Transport, sess.Duration())
	}()

	h.logger.Infow("http stream started",
		"session_id", sess.ID,
		"device", dev.Name(),
		"client", c.ClientIP(),
	)

	c.Header("Content-Type", "audio/wav")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "close")
	c.Status(http.StatusOK)

	w := c.Writer
	if _, err := w.Write(pcm.StreamHeader(h.params.SampleRate, h.params.Channels, h.params.Format.Bits())); err != nil {
		return
	}
	w.Flush()

	clientGone := c.Request.Context().Done()
	for !sess.Closed() {
		select {
		case <-clientGone:
			h.logger.Infow("http stream client disconnected", "session_id", sess.ID)
			return
		default:
		}

		frame, err := dev.ReadFrame()
		if err != nil {
			h.logger.Errorw("capture read failed", "session_id", sess.ID, "error", err)
			return
		}
		if len(frame) == 0 {
			continue // no data yet
		}

		if _, err := w.Write(frame); err != nil {
			// Broken pipe is how browsers say goodbye.
			h.logger.Infow("http stream client disconnected", "session_id", sess.ID)
			return
		}
		w.Flush()
		h.metrics.FrameStreamed(sess.Transport, len(frame))
	}
}

// LivePage serves the embedded in-browser player.
func (h *StreamHandler) LivePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", livePageHTML)
}
