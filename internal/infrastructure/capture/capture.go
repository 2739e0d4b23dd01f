// Package capture implements the audio-input port: a real ALSA backend
// on linux and a deterministic mock for tests and hardware-less hosts.
package capture

import (
	"fmt"

	"go.uber.org/zap"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
)

// FallbackDevice is the canonical "first hardware card, first device"
// identifier tried once when the requested device fails to open.
const FallbackDevice = "hw:0,0"

// NewOpener selects the capture backend. The choice is made once at
// startup; streaming code only ever sees the port interface.
func NewOpener(backend string, logger *zap.SugaredLogger) (ports.CaptureOpener, error) {
	switch backend {
	case "alsa":
		return ALSAOpener{Logger: logger}, nil
	case "mock":
		return MockOpener{}, nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", backend)
	}
}

// OpenWithFallback opens the requested device, retrying exactly once
// against FallbackDevice before failing with ErrDeviceUnavailable.
func OpenWithFallback(opener ports.CaptureOpener, p domain.DeviceParams, logger *zap.SugaredLogger) (ports.CaptureDevice, error) {
	dev, err := opener.Open(p)
	if err == nil {
		return dev, nil
	}
	if p.Device == FallbackDevice {
		return nil, fmt.Errorf("%w: open %q: %v", domain.ErrDeviceUnavailable, p.Device, err)
	}

	logger.Warnw("capture device open failed, retrying with fallback",
		"device", p.Device,
		"fallback", FallbackDevice,
		"error", err,
	)

	requested := p.Device
	p.Device = FallbackDevice
	dev, ferr := opener.Open(p)
	if ferr != nil {
		return nil, fmt.Errorf("%w: open %q: %v; fallback %q: %v",
			domain.ErrDeviceUnavailable, requested, err, FallbackDevice, ferr)
	}
	return dev, nil
}
