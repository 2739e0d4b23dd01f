package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
	"wavecast/internal/core/services"
	"wavecast/internal/infrastructure/capture"
	"wavecast/internal/infrastructure/middleware"
	"wavecast/internal/infrastructure/monitoring"
	"wavecast/internal/infrastructure/repositories/memory"
	"wavecast/pkg/config"
	"wavecast/pkg/pcm"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type failingOpener struct{}

func (failingOpener) Open(p domain.DeviceParams) (ports.CaptureDevice, error) {
	return nil, fmt.Errorf("no such device %q", p.Device)
}

func testDeviceParams() domain.DeviceParams {
	return domain.DeviceParams{
		Device:       "mic_with_gain",
		Channels:     2,
		SampleRate:   48000,
		Format:       domain.S16LE,
		PeriodFrames: 64,
	}
}

func newTestRouter(t *testing.T, opener ports.CaptureOpener, tokenTTL time.Duration) (*gin.Engine, ports.AuthService) {
	t.Helper()

	logger := zaptest.NewLogger(t).Sugar()
	repo := memory.NewTokenRepository(0)
	t.Cleanup(repo.Stop)

	authService := services.NewAuthService("audiopirate", tokenTTL, repo, logger)
	metrics := monitoring.NewCollectorWith(prometheus.NewRegistry())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger), middleware.ErrorHandlerMiddleware(logger))

	limiter := middleware.NewAuthRateLimitMiddleware(config.DefaultConfig())
	NewAuthHandler(authService, metrics, logger).SetupRoutes(router, limiter)
	NewStreamHandler(authService, opener, testDeviceParams(), metrics, logger).SetupRoutes(router)

	return router, authService
}

func postAuthenticate(t *testing.T, router *gin.Engine, body string) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/authenticate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w.Code, resp
}

func TestAuthenticate_CorrectPassword(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	code, resp := postAuthenticate(t, router, `{"password":"audiopirate"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["success"])

	token, ok := resp["token"].(string)
	require.True(t, ok, "token missing from response")
	assert.GreaterOrEqual(t, len(token), 32)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	code, resp := postAuthenticate(t, router, `{"password":"wrong"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Invalid password", resp["message"])
	assert.NotContains(t, resp, "token")
}

func TestAuthenticate_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	for _, body := range []string{``, `{`, `{"nope":1}`} {
		code, _ := postAuthenticate(t, router, body)
		assert.Equal(t, http.StatusBadRequest, code, "body %q", body)
	}
}

func TestStreamAudio_MissingToken(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream_audio", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamAudio_InvalidToken(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream_audio?token=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamAudio_DeviceUnavailable(t *testing.T) {
	router, authService := newTestRouter(t, failingOpener{}, 24*time.Hour)

	token, err := authService.Authenticate(context.Background(), "audiopirate")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stream_audio?token="+string(token), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStreamAudio_EmitsWavHeaderThenPCM(t *testing.T) {
	router, authService := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)
	server := httptest.NewServer(router)
	defer server.Close()

	token, err := authService.Authenticate(context.Background(), "audiopirate")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/stream_audio?token=" + string(token))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "audio/wav", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	headerBytes := make([]byte, pcm.StreamHeaderSize)
	_, err = io.ReadFull(resp.Body, headerBytes)
	require.NoError(t, err)

	header, err := pcm.ParseHeader(headerBytes)
	require.NoError(t, err)
	assert.Equal(t, 2, header.Channels)
	assert.Equal(t, 48000, header.SampleRate)
	assert.Equal(t, 16, header.BitsPerSample)

	// One full period of S16LE stereo must follow the header.
	frame := make([]byte, 64*2*2)
	_, err = io.ReadFull(resp.Body, frame)
	require.NoError(t, err)
}

// The HTTP transport checks the token once at stream start; a running
// session keeps streaming after its token expires.
func TestStreamAudio_NoMidStreamTokenRecheck(t *testing.T) {
	router, authService := newTestRouter(t, capture.MockOpener{}, 150*time.Millisecond)
	server := httptest.NewServer(router)
	defer server.Close()

	token, err := authService.Authenticate(context.Background(), "audiopirate")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/stream_audio?token=" + string(token))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	headerBytes := make([]byte, pcm.StreamHeaderSize)
	_, err = io.ReadFull(resp.Body, headerBytes)
	require.NoError(t, err)

	time.Sleep(300 * time.Millisecond)
	require.False(t, authService.Check(context.Background(), token), "token should have expired")

	// Stream still delivers audio with the expired token.
	frame := make([]byte, 64*2*2)
	_, err = io.ReadFull(resp.Body, frame)
	assert.NoError(t, err)
}

func TestLivePage(t *testing.T) {
	router, _ := newTestRouter(t, capture.MockOpener{}, 24*time.Hour)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "stream_audio")
}
