package ports

import "wavecast/internal/core/domain"

// CaptureDevice is an open hardware (or mock) audio input. Each stream
// session opens its own device and owns it exclusively until Close.
type CaptureDevice interface {
	// Name returns the resolved device identifier actually opened, which
	// may differ from the requested one when the fallback was used.
	Name() string

	// ReadFrame blocks until the next period of interleaved little-endian
	// samples is available and returns it. An empty frame with a nil error
	// means no data yet; callers retry rather than abort.
	ReadFrame() ([]byte, error)

	// Close releases the hardware handle. Idempotent.
	Close() error
}

// CaptureOpener opens capture devices. Implementations are selected at
// construction time (real ALSA hardware or the deterministic mock), never
// probed at runtime on the streaming path.
type CaptureOpener interface {
	Open(params domain.DeviceParams) (CaptureDevice, error)
}
