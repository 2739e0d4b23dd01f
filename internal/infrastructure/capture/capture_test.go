package capture

import (
	"errors"
	"fmt"
	"testing"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"

	"go.uber.org/zap/zaptest"
)

// scriptedOpener fails or succeeds per device name and records open calls.
type scriptedOpener struct {
	failFor map[string]bool
	opened  []string
}

func (o *scriptedOpener) Open(p domain.DeviceParams) (ports.CaptureDevice, error) {
	o.opened = append(o.opened, p.Device)
	if o.failFor[p.Device] {
		return nil, fmt.Errorf("no such device %q", p.Device)
	}
	return MockOpener{}.Open(p)
}

func testParams(device string) domain.DeviceParams {
	return domain.DeviceParams{
		Device:       device,
		Channels:     2,
		SampleRate:   48000,
		Format:       domain.S32LE,
		PeriodFrames: 64,
	}
}

func TestOpenWithFallback_RequestedDeviceWorks(t *testing.T) {
	opener := &scriptedOpener{failFor: map[string]bool{}}
	logger := zaptest.NewLogger(t).Sugar()

	dev, err := OpenWithFallback(opener, testParams("mic_with_gain"), logger)
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	defer dev.Close()

	if dev.Name() != "mic_with_gain" {
		t.Errorf("resolved device = %q, want requested", dev.Name())
	}
	if len(opener.opened) != 1 {
		t.Errorf("open attempts = %d, want 1", len(opener.opened))
	}
}

func TestOpenWithFallback_FallsBackOnce(t *testing.T) {
	opener := &scriptedOpener{failFor: map[string]bool{"mic_with_gain": true}}
	logger := zaptest.NewLogger(t).Sugar()

	dev, err := OpenWithFallback(opener, testParams("mic_with_gain"), logger)
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}
	defer dev.Close()

	if dev.Name() != FallbackDevice {
		t.Errorf("resolved device = %q, want fallback %q", dev.Name(), FallbackDevice)
	}
	if len(opener.opened) != 2 {
		t.Errorf("open attempts = %d, want 2", len(opener.opened))
	}
}

func TestOpenWithFallback_BothFail(t *testing.T) {
	opener := &scriptedOpener{failFor: map[string]bool{
		"mic_with_gain": true,
		FallbackDevice:  true,
	}}
	logger := zaptest.NewLogger(t).Sugar()

	_, err := OpenWithFallback(opener, testParams("mic_with_gain"), logger)
	if !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Errorf("err = %v, want ErrDeviceUnavailable", err)
	}
	if len(opener.opened) != 2 {
		t.Errorf("open attempts = %d, want exactly 2 (one retry)", len(opener.opened))
	}
}

func TestOpenWithFallback_RequestedIsFallback(t *testing.T) {
	opener := &scriptedOpener{failFor: map[string]bool{FallbackDevice: true}}
	logger := zaptest.NewLogger(t).Sugar()

	_, err := OpenWithFallback(opener, testParams(FallbackDevice), logger)
	if !errors.Is(err, domain.ErrDeviceUnavailable) {
		t.Errorf("err = %v, want ErrDeviceUnavailable", err)
	}
	if len(opener.opened) != 1 {
		t.Errorf("open attempts = %d, want 1 (no retry against itself)", len(opener.opened))
	}
}

func TestNewOpener(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	if _, err := NewOpener("mock", logger); err != nil {
		t.Errorf("mock backend: %v", err)
	}
	if _, err := NewOpener("alsa", logger); err != nil {
		t.Errorf("alsa backend: %v", err)
	}
	if _, err := NewOpener("pulse", logger); err == nil {
		t.Error("unknown backend accepted")
	}
}
