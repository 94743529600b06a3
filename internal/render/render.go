// Package render implements the audio render callback: it moves queued MIDI
// events into the synthesizer and encodes the synthesizer's stereo output
// into whatever buffer layout the output device asked for.
package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/leandrodaf/midisynth/internal/eventqueue"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Errors returned by New.
var (
	ErrInvalidChannels = errors.New("output must have at least one channel")
	ErrInvalidFormat   = errors.New("unsupported sample format")
)

// Stats are cumulative counters since the loop was created.
type Stats struct {
	Frames          uint64 // Frames written.
	Callbacks       uint64 // Render invocations.
	Forwarded       uint64 // Events accepted by the synthesizer.
	ForwardErrors   uint64 // Events the synthesizer rejected.
	LastBlockFrames uint64 // Frames in the most recent invocation.
}

// Loop is the render callback. Render (or Read) must be called from a single
// goroutine, the one the output device renders on; Stats may be read from
// anywhere.
//
// Nothing on the render path locks, logs or allocates.
type Loop struct {
	synth      contracts.Synthesizer
	events     *eventqueue.Queue
	channels   int
	format     contracts.SampleFormat
	frameBytes int

	frames        atomic.Uint64
	callbacks     atomic.Uint64
	forwarded     atomic.Uint64
	forwardErrors atomic.Uint64
	lastBlock     atomic.Uint64
}

// New builds a loop for the stream configuration the output device granted.
func New(synth contracts.Synthesizer, events *eventqueue.Queue, cfg contracts.StreamConfig) (*Loop, error) {
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, cfg.Channels)
	}
	bps := cfg.Format.BytesPerSample()
	if bps == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFormat, cfg.Format)
	}
	return &Loop{
		synth:      synth,
		events:     events,
		channels:   cfg.Channels,
		format:     cfg.Format,
		frameBytes: bps * cfg.Channels,
	}, nil
}

// FrameBytes is the encoded size of one frame.
func (l *Loop) FrameBytes() int {
	return l.frameBytes
}

// Read implements io.Reader for pull-model output devices. It never fails.
func (l *Loop) Read(p []byte) (int, error) {
	return l.Render(p), nil
}

// Render forwards every queued event to the synthesizer in arrival order and
// then fills as many whole frames of buf as fit, one synthesizer frame per
// output frame. It returns the number of bytes written; a trailing partial
// frame is left untouched.
func (l *Loop) Render(buf []byte) int {
	l.callbacks.Add(1)
	l.forwardEvents()

	frames := len(buf) / l.frameBytes
	out := buf[:frames*l.frameBytes]
	switch l.format {
	case contracts.Float32LE:
		l.renderFloat32(out)
	case contracts.SignedInt16LE:
		l.renderInt16(out)
	case contracts.UnsignedInt8:
		l.renderUint8(out)
	}

	l.frames.Add(uint64(frames))
	l.lastBlock.Store(uint64(frames))
	return len(out)
}

func (l *Loop) forwardEvents() {
	// Bounded by the backlog at entry so a flood of input cannot starve the
	// frames of this block.
	for n := l.events.Len(); n > 0; n-- {
		ev, ok := l.events.TryRecv()
		if !ok {
			return
		}
		if err := l.synth.SendEvent(ev); err != nil {
			l.forwardErrors.Add(1)
			continue
		}
		l.forwarded.Add(1)
	}
}

func (l *Loop) renderFloat32(out []byte) {
	for off := 0; off < len(out); off += l.frameBytes {
		left, right := l.synth.ReadFrame()
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(left))
		if l.channels > 1 {
			binary.LittleEndian.PutUint32(out[off+4:], math.Float32bits(right))
		}
		for c := 2; c < l.channels; c++ {
			binary.LittleEndian.PutUint32(out[off+4*c:], 0)
		}
	}
}

func (l *Loop) renderInt16(out []byte) {
	for off := 0; off < len(out); off += l.frameBytes {
		left, right := l.synth.ReadFrame()
		binary.LittleEndian.PutUint16(out[off:], uint16(toInt16(left)))
		if l.channels > 1 {
			binary.LittleEndian.PutUint16(out[off+2:], uint16(toInt16(right)))
		}
		for c := 2; c < l.channels; c++ {
			binary.LittleEndian.PutUint16(out[off+2*c:], 0)
		}
	}
}

func (l *Loop) renderUint8(out []byte) {
	for off := 0; off < len(out); off += l.frameBytes {
		left, right := l.synth.ReadFrame()
		out[off] = toUint8(left)
		if l.channels > 1 {
			out[off+1] = toUint8(right)
		}
		for c := 2; c < l.channels; c++ {
			out[off+c] = 128
		}
	}
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Frames:          l.frames.Load(),
		Callbacks:       l.callbacks.Load(),
		Forwarded:       l.forwarded.Load(),
		ForwardErrors:   l.forwardErrors.Load(),
		LastBlockFrames: l.lastBlock.Load(),
	}
}

func clamp(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	// NaN compares false above and would reach the integer conversion.
	if s != s {
		return 0
	}
	return s
}

func toInt16(s float32) int16 {
	return int16(clamp(s) * math.MaxInt16)
}

func toUint8(s float32) uint8 {
	return uint8(int16(clamp(s)*127) + 128)
}
