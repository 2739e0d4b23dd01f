//go:build linux && cgo

package capture

import (
	"encoding/binary"
	"fmt"
	"sync"

	alsa "github.com/cocoonlife/goalsa"
	"go.uber.org/zap"

	"wavecast/internal/core/domain"
	"wavecast/internal/core/ports"
)

// ALSAOpener opens real hardware capture devices through ALSA.
type ALSAOpener struct {
	Logger *zap.SugaredLogger
}

func (o ALSAOpener) Open(p domain.DeviceParams) (ports.CaptureDevice, error) {
	var format alsa.Format
	switch p.Format {
	case domain.S16LE:
		format = alsa.FormatS16LE
	case domain.S32LE:
		format = alsa.FormatS32LE
	default:
		return nil, fmt.Errorf("unsupported sample format %s", p.Format)
	}

	bp := alsa.BufferParams{
		BufferFrames: p.PeriodFrames * 4,
		PeriodFrames: p.PeriodFrames,
		Periods:      4,
	}

	dev, err := alsa.NewCaptureDevice(p.Device, p.Channels, format, p.SampleRate, bp)
	if err != nil {
		return nil, fmt.Errorf("alsa open %q: %w", p.Device, err)
	}

	if o.Logger != nil {
		o.Logger.Infow("alsa capture device opened",
			"device", p.Device,
			"rate", p.SampleRate,
			"channels", p.Channels,
			"format", p.Format.String(),
			"period_frames", p.PeriodFrames,
		)
	}

	d := &alsaDevice{
		name:   p.Device,
		format: p.Format,
		dev:    dev,
	}
	samples := p.PeriodFrames * p.Channels
	switch p.Format {
	case domain.S16LE:
		d.s16 = make([]int16, samples)
	case domain.S32LE:
		d.s32 = make([]int32, samples)
	}
	return d, nil
}

type alsaDevice struct {
	name   string
	format domain.SampleFormat

	// scratch sample buffers, reused across reads
	s16 []int16
	s32 []int32

	mu     sync.Mutex
	dev    *alsa.CaptureDevice
	closed bool
}

func (d *alsaDevice) Name() string { return d.name }

func (d *alsaDevice) ReadFrame() ([]byte, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, domain.ErrDeviceClosed
	}
	dev := d.dev
	d.mu.Unlock()

	switch d.format {
	case domain.S16LE:
		n, err := dev.Read(d.s16)
		if err == alsa.ErrOverrun {
			// Overrun means lost audio, not a dead device. Callers retry.
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("alsa read: %w", err)
		}
		if n <= 0 {
			return nil, nil
		}
		frame := make([]byte, n*2)
		for i, v := range d.s16[:n] {
			binary.LittleEndian.PutUint16(frame[2*i:], uint16(v))
		}
		return frame, nil

	case domain.S32LE:
		n, err := dev.Read(d.s32)
		if err == alsa.ErrOverrun {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("alsa read: %w", err)
		}
		if n <= 0 {
			return nil, nil
		}
		frame := make([]byte, n*4)
		for i, v := range d.s32[:n] {
			binary.LittleEndian.PutUint32(frame[4*i:], uint32(v))
		}
		return frame, nil
	}

	return nil, fmt.Errorf("unsupported sample format %s", d.format)
}

func (d *alsaDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.dev.Close()
	return nil
}
