package domain

// SampleFormat is the wire format of captured PCM samples. All formats
// are signed little-endian.
type SampleFormat int

const (
	S16LE SampleFormat = iota + 1
	S32LE
)

// Bytes returns the size of one sample in bytes.
func (f SampleFormat) Bytes() int {
	switch f {
	case S16LE:
		return 2
	case S32LE:
		return 4
	default:
		return 0
	}
}

// Bits returns the size of one sample in bits.
func (f SampleFormat) Bits() int {
	return f.Bytes() * 8
}

func (f SampleFormat) String() string {
	switch f {
	case S16LE:
		return "S16_LE"
	case S32LE:
		return "S32_LE"
	default:
		return "unknown"
	}
}

// DeviceParams describes how a capture device should be opened. Device is
// the requested ALSA identifier; the opened device may resolve to the
// fallback identifier instead.
type DeviceParams struct {
	Device       string
	Channels     int
	SampleRate   int
	Format       SampleFormat
	PeriodFrames int
}

// FrameBytes returns the byte length of one full period of interleaved
// samples.
func (p DeviceParams) FrameBytes() int {
	return p.PeriodFrames * p.Channels * p.Format.Bytes()
}
