// Package pcm holds the sample-level plumbing shared by both stream
// transports: the streaming WAV header and software gain.
package pcm

import (
	"encoding/binary"
	"fmt"
)

// StreamHeaderSize is the size of the WAV header emitted before an
// unbounded PCM stream.
const StreamHeaderSize = 44

// streamDataSize is the data-chunk size declared for a stream whose total
// length is unknown: the maximum representable value minus the header
// bytes that precede the data chunk.
const streamDataSize = 0xFFFFFFFF - 36

// StreamHeader returns a 44-byte RIFF/WAVE header for an unbounded PCM
// stream. The data-chunk size is a sentinel, since the stream has no end;
// browsers and most WAV readers accept it and just keep reading.
func StreamHeader(sampleRate, channels, bitsPerSample int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	h := make([]byte, 0, StreamHeaderSize)
	h = append(h, 'R', 'I', 'F', 'F')
	h = binary.LittleEndian.AppendUint32(h, streamDataSize+36)
	h = append(h, 'W', 'A', 'V', 'E')
	h = append(h, 'f', 'm', 't', ' ')
	h = binary.LittleEndian.AppendUint32(h, 16) // fmt chunk size
	h = binary.LittleEndian.AppendUint16(h, 1)  // PCM
	h = binary.LittleEndian.AppendUint16(h, uint16(channels))
	h = binary.LittleEndian.AppendUint32(h, uint32(sampleRate))
	h = binary.LittleEndian.AppendUint32(h, uint32(byteRate))
	h = binary.LittleEndian.AppendUint16(h, uint16(blockAlign))
	h = binary.LittleEndian.AppendUint16(h, uint16(bitsPerSample))
	h = append(h, 'd', 'a', 't', 'a')
	h = binary.LittleEndian.AppendUint32(h, streamDataSize)
	return h
}

// Header is the decoded form of a streaming WAV header.
type Header struct {
	AudioFormat   int
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	DataSize      uint32
}

// ParseHeader decodes a 44-byte WAV header produced by StreamHeader.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < StreamHeaderSize {
		return Header{}, fmt.Errorf("wav header too short: %d bytes", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return Header{}, fmt.Errorf("not a RIFF/WAVE header")
	}
	if string(b[12:16]) != "fmt " {
		return Header{}, fmt.Errorf("missing fmt chunk")
	}
	if string(b[36:40]) != "data" {
		return Header{}, fmt.Errorf("missing data chunk")
	}

	return Header{
		AudioFormat:   int(binary.LittleEndian.Uint16(b[20:22])),
		Channels:      int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    int(binary.LittleEndian.Uint32(b[24:28])),
		ByteRate:      int(binary.LittleEndian.Uint32(b[28:32])),
		BlockAlign:    int(binary.LittleEndian.Uint16(b[32:34])),
		BitsPerSample: int(binary.LittleEndian.Uint16(b[34:36])),
		DataSize:      binary.LittleEndian.Uint32(b[40:44]),
	}, nil
}
