package pcm

import (
	"encoding/binary"
	"math"
)

// ApplyGainS32LE multiplies every signed 32-bit little-endian sample in
// frame by gain, rounding and clamping to the int32 range. The transform
// happens in place; trailing bytes that do not form a whole sample are
// left untouched. Only the 32-bit WebSocket path uses software gain.
func ApplyGainS32LE(frame []byte, gain float64) {
	if gain == 1 {
		return
	}
	for i := 0; i+4 <= len(frame); i += 4 {
		s := int32(binary.LittleEndian.Uint32(frame[i:]))
		v := math.Round(float64(s) * gain)
		switch {
		case v > math.MaxInt32:
			v = math.MaxInt32
		case v < math.MinInt32:
			v = math.MinInt32
		}
		binary.LittleEndian.PutUint32(frame[i:], uint32(int32(v)))
	}
}
