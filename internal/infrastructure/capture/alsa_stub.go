//go:build !linux || !cgo

package capture

import (
	"fmt"

	"go.uber.org/zap"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
)

// ALSAOpener is unavailable off linux or without cgo; Open always fails
// so the fallback path and error surface stay identical across platforms.
type ALSAOpener struct {
	Logger *zap.SugaredLogger
}

func (o ALSAOpener) Open(p domain.DeviceParams) (ports.CaptureDevice, error) {
	return nil, fmt.Errorf("alsa capture requires linux and cgo: %w", domain.ErrDeviceUnavailable)
}
