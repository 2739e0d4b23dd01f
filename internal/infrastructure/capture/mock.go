package capture

import (
	"encoding/binary"
	"sync"
	"time"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
)

// Pattern selects what a mock device emits.
type Pattern int

const (
	// PatternSilence emits all-zero frames, matching a silent microphone.
	PatternSilence Pattern = iota
	// PatternRamp emits a monotonically increasing sample counter, which
	// lets tests assert exact frame contents.
	PatternRamp
)

// MockOpener opens deterministic capture devices. Reads are paced to real
// time (one period's duration per frame) so streaming loops behave the
// same as against hardware.
type MockOpener struct {
	Pattern Pattern
}

func (o MockOpener) Open(p domain.DeviceParams) (ports.CaptureDevice, error) {
	return &mockDevice{
		name:    p.Device,
		params:  p,
		pattern: o.Pattern,
		period:  time.Duration(p.PeriodFrames) * time.Second / time.Duration(p.SampleRate),
	}, nil
}

type mockDevice struct {
	name    string
	params  domain.DeviceParams
	pattern Pattern
	period  time.Duration

	mu      sync.Mutex
	counter int64
	closed  bool
}

func (d *mockDevice) Name() string { return d.name }

func (d *mockDevice) ReadFrame() ([]byte, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, domain.ErrDeviceClosed
	}
	start := d.counter
	samples := int64(d.params.PeriodFrames * d.params.Channels)
	d.counter += samples
	d.mu.Unlock()

	time.Sleep(d.period)

	frame := make([]byte, d.params.FrameBytes())
	if d.pattern == PatternRamp {
		switch d.params.Format {
		case domain.S16LE:
			for i := int64(0); i < samples; i++ {
				binary.LittleEndian.PutUint16(frame[2*i:], uint16(start+i))
			}
		case domain.S32LE:
			for i := int64(0); i < samples; i++ {
				binary.LittleEndian.PutUint32(frame[4*i:], uint32(start+i))
			}
		}
	}
	return frame, nil
}

func (d *mockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
