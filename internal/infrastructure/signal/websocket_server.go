// Package signal implements the WebSocket audio transport: a JSON
// control protocol for authentication and stream startup, then raw
// binary PCM frames server-to-client.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
	"wavecast/internal/infrastructure/capture"
	"wavecast/internal/infrastructure/monitoring"
	"wavecast/pkg/pcm"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the bearer token is the access control, not the origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamYield bounds CPU use of the send loop and gives the scheduler a
// cancellation point every iteration.
const streamYield = time.Millisecond

// controlMessage is the closed set of client-to-server control frames.
// Type selects which of the optional fields is meaningful.
type controlMessage struct {
	Type     string `json:"type"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

const (
	msgAuthenticate = "authenticate"
	msgStartStream  = "start_stream"
)

type authSuccessMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type authFailedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type audioConfigMessage struct {
	Type          string `json:"type"`
	SampleRate    int    `json:"sampleRate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bitsPerSample"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server handles WebSocket audio streaming connections.
type Server struct {
	authService ports.AuthService
	opener      ports.CaptureOpener
	params      domain.DeviceParams
	gain        float64
	metrics     *monitoring.Collector
	logger      *zap.SugaredLogger
}

func NewServer(
	authService ports.AuthService,
	opener ports.CaptureOpener,
	params domain.DeviceParams,
	gain float64,
	metrics *monitoring.Collector,
	logger *zap.SugaredLogger,
) *Server {
	return &Server{
		authService: authService,
		opener:      opener,
		params:      params,
		gain:        gain,
		metrics:     metrics,
		logger:      logger,
	}
}

// HandleWebSocket runs one client connection. Control messages are only
// read outside of streaming; while a stream runs, the connection is
// write-only until the stream ends or the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Infow("websocket client connected", "remote_addr", conn.RemoteAddr().String())

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debugw("websocket read failed", "error", err)
			}
			s.logger.Infow("websocket client disconnected", "remote_addr", conn.RemoteAddr().String())
			return
		}

		// Clients never send binary; drop such frames silently.
		if msgType != websocket.TextMessage {
			continue
		}

		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(conn, errorMessage{Type: "error", Message: "Invalid JSON"})
			continue
		}

		switch msg.Type {
		case msgAuthenticate:
			s.handleAuthenticate(r.Context(), conn, msg.Password)

		case msgStartStream:
			token := domain.Token(msg.Token)
			if !s.authService.Check(r.Context(), token) {
				s.send(conn, errorMessage{Type: "error", Message: "Invalid or expired token"})
				continue
			}
			s.streamAudio(r.Context(), conn, token)

		default:
			s.logger.Debugw("ignoring unknown control message", "type", msg.Type)
		}
	}
}

func (s *Server) handleAuthenticate(ctx context.Context, conn *websocket.Conn, password string) {
	token, err := s.authService.Authenticate(ctx, password)
	if err != nil {
		if !errors.Is(err, domain.ErrAuthFailed) {
			s.logger.Errorw("token issue failed", "error", err)
		}
		s.metrics.AuthAttempt(false)
		s.send(conn, authFailedMessage{Type: "auth_failed", Message: "Invalid password"})
		return
	}

	s.metrics.AuthAttempt(true)
	s.send(conn, authSuccessMessage{Type: "auth_success", Token: string(token)})
}

// streamAudio runs the read-amplify-send loop until the token expires,
// the device fails, or the client goes away. It owns the capture device
// for its whole lifetime and releases it on every exit path.
func (s *Server) streamAudio(ctx context.Context, conn *websocket.Conn, token domain.Token) {
	dev, err := capture.OpenWithFallback(s.opener, s.params, s.logger)
	if err != nil {
		s.metrics.DeviceOpen("error")
		s.send(conn, errorMessage{Type: "error", Message: "Audio capture unavailable"})
		return
	}
	defer dev.Close()

	if dev.Name() != s.params.Device {
		s.metrics.DeviceOpen("fallback")
	} else {
		s.metrics.DeviceOpen("ok")
	}

	sess := domain.NewStreamSession(uuid.New().String(), domain.TransportWebSocket, dev.Name())
	sess.BeginStreaming()
	s.metrics.SessionStarted(sess.Transport)
	defer func() {
		sess.Close()
		s.metrics.SessionEnded(sess.Transport, sess.Duration())
	}()

	if !s.send(conn, audioConfigMessage{
		Type:          "audio_config",
		SampleRate:    s.params.SampleRate,
		Channels:      s.params.Channels,
		BitsPerSample: s.params.Format.Bits(),
	}) {
		return
	}

	s.logger.Infow("websocket stream started",
		"session_id", sess.ID,
		"device", dev.Name(),
		"gain", s.gain,
	)

	for !sess.Closed() {
		// Token validity is re-checked every iteration on this transport.
		if !s.authService.Check(ctx, token) {
			s.send(conn, errorMessage{Type: "error", Message: "Token expired"})
			s.logger.Infow("websocket stream ended, token expired", "session_id", sess.ID)
			return
		}

		frame, err := dev.ReadFrame()
		if err != nil {
			s.logger.Errorw("capture read failed", "session_id", sess.ID, "error", err)
			return
		}
		if len(frame) == 0 {
			time.Sleep(streamYield)
			continue
		}

		pcm.ApplyGainS32LE(frame, s.gain)

		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			s.logger.Infow("websocket stream client disconnected", "session_id", sess.ID)
			return
		}
		s.metrics.FrameStreamed(sess.Transport, len(frame))

		time.Sleep(streamYield)
	}
}

// send writes a control message, reporting false when the connection is
// no longer usable.
func (s *Server) send(conn *websocket.Conn, v interface{}) bool {
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Debugw("websocket control write failed", "error", err)
		return false
	}
	return true
}
