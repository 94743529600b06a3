package contracts

import (
	"fmt"
	"io"
	"strings"
)

// SampleFormat is the encoding of samples in an output buffer.
type SampleFormat int

const (
	// Float32LE is 32-bit IEEE float, little endian, nominal range [-1, 1].
	Float32LE SampleFormat = iota
	// SignedInt16LE is 16-bit signed integer, little endian.
	SignedInt16LE
	// UnsignedInt8 is 8-bit unsigned integer centred on 128.
	UnsignedInt8
)

// BytesPerSample returns the encoded size of one sample.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case Float32LE:
		return 4
	case SignedInt16LE:
		return 2
	case UnsignedInt8:
		return 1
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case Float32LE:
		return "f32"
	case SignedInt16LE:
		return "s16"
	case UnsignedInt8:
		return "u8"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// ParseSampleFormat accepts the names produced by SampleFormat.String.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f32", "float32", "float32le":
		return Float32LE, nil
	case "s16", "int16", "s16le":
		return SignedInt16LE, nil
	case "u8", "uint8":
		return UnsignedInt8, nil
	}
	return 0, fmt.Errorf("unknown sample format %q", s)
}

// Synthesizer turns MIDI events into stereo frames.
//
// SendEvent and ReadFrame are only ever called from the render thread.
type Synthesizer interface {
	SendEvent(ev MIDIEvent) error
	ReadFrame() (left, right float32)
}

// StreamConfig describes an output stream.
type StreamConfig struct {
	SampleRate      int
	Channels        int
	Format          SampleFormat
	RequestedFrames int // Block size asked of the platform. The granted size may differ per callback.
}

// OutputDevice is the platform audio output.
type OutputDevice interface {
	// Negotiate returns the configuration the platform will actually use for want.
	Negotiate(want StreamConfig) (StreamConfig, error)
	// Open creates a stream that pulls encoded samples from source. onError
	// receives stream-level errors reported after the stream started.
	Open(cfg StreamConfig, source io.Reader, onError func(error)) (OutputStream, error)
}

// OutputStream is an open output stream.
type OutputStream interface {
	Start() error
	Close() error
}
