package domain

import (
	"sync"
	"time"
)

// TransportKind identifies which listener a stream session belongs to.
type TransportKind string

const (
	TransportHTTP      TransportKind = "http"
	TransportWebSocket TransportKind = "websocket"
)

// SessionState is the lifecycle state of a stream session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionStreaming
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionStreaming:
		return "streaming"
	case SessionClosed:
		return "closed"
	}
	return "unknown"
}

// StreamSession tracks one client's streaming lifecycle. The transport
// owns the client connection and the capture device; the session only
// carries identity and state. Cancellation is cooperative: streaming
// loops call Closed once per iteration and stop when it reports true.
type StreamSession struct {
	ID        string
	Transport TransportKind
	Device    string
	StartedAt time.Time

	mu    sync.Mutex
	state SessionState
}

// NewStreamSession creates a session in the Idle state bound to the
// resolved device identifier.
func NewStreamSession(id string, transport TransportKind, device string) *StreamSession {
	return &StreamSession{
		ID:        id,
		Transport: transport,
		Device:    device,
		StartedAt: time.Now(),
	}
}

// BeginStreaming moves Idle -> Streaming. It reports false if the session
// already left Idle.
func (s *StreamSession) BeginStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionIdle {
		return false
	}
	s.state = SessionStreaming
	return true
}

// Close moves the session to Closed from any state. It reports true only
// for the first call, so termination work runs exactly once.
func (s *StreamSession) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionClosed {
		return false
	}
	s.state = SessionClosed
	return true
}

// Closed reports whether the session has terminated.
func (s *StreamSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == SessionClosed
}

// State returns the current lifecycle state.
func (s *StreamSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Duration returns how long the session has been alive.
func (s *StreamSession) Duration() time.Duration {
	return time.Since(s.StartedAt)
}
