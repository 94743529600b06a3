// Package otoout is the audio output boundary on top of ebitengine/oto.
//
// oto pulls samples from an io.Reader on its own goroutine; the render loop
// is that reader. oto allows a single context per process, so a Device can
// open at most one stream.
package otoout

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

var (
	// ErrUnsupportedConfig is returned by Negotiate for configurations oto cannot play.
	ErrUnsupportedConfig = errors.New("unsupported output configuration")
	// ErrAlreadyOpen is returned when a second stream is requested.
	ErrAlreadyOpen = errors.New("output stream already open")
)

const errorPollInterval = 250 * time.Millisecond

// Device is the oto-backed contracts.OutputDevice.
type Device struct {
	mu     sync.Mutex
	opened bool
}

// New returns an unopened device.
func New() *Device {
	return &Device{}
}

// Negotiate clamps want to what oto supports: mono or stereo, any positive
// sample rate, and the three oto sample formats.
func (d *Device) Negotiate(want contracts.StreamConfig) (contracts.StreamConfig, error) {
	return negotiate(want)
}

func negotiate(want contracts.StreamConfig) (contracts.StreamConfig, error) {
	got := want
	if got.SampleRate <= 0 {
		return got, fmt.Errorf("%w: sample rate %d", ErrUnsupportedConfig, want.SampleRate)
	}
	if _, err := otoFormat(got.Format); err != nil {
		return got, err
	}
	if got.Channels <= 0 || got.Channels > 2 {
		got.Channels = 2
	}
	if got.RequestedFrames < 0 {
		got.RequestedFrames = 0
	}
	return got, nil
}

func otoFormat(f contracts.SampleFormat) (oto.Format, error) {
	switch f {
	case contracts.Float32LE:
		return oto.FormatFloat32LE, nil
	case contracts.SignedInt16LE:
		return oto.FormatSignedInt16LE, nil
	case contracts.UnsignedInt8:
		return oto.FormatUnsignedInt8, nil
	}
	return 0, fmt.Errorf("%w: format %s", ErrUnsupportedConfig, f)
}

// bufferDuration converts a frame count to the duration oto sizes its device
// buffer by. Zero lets the driver pick.
func bufferDuration(frames, sampleRate int) time.Duration {
	if frames <= 0 || sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

// Open implements contracts.OutputDevice. It blocks until the platform audio
// context is ready.
func (d *Device) Open(cfg contracts.StreamConfig, source io.Reader, onError func(error)) (contracts.OutputStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.opened {
		return nil, ErrAlreadyOpen
	}

	format, err := otoFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   bufferDuration(cfg.RequestedFrames, cfg.SampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("oto.NewContext: %w", err)
	}
	<-ready
	d.opened = true

	player := ctx.NewPlayer(source)
	if cfg.RequestedFrames > 0 {
		player.SetBufferSize(cfg.RequestedFrames * cfg.Channels * cfg.Format.BytesPerSample())
	}
	return &stream{ctx: ctx, player: player, onError: onError, done: make(chan struct{})}, nil
}

type stream struct {
	ctx     *oto.Context
	player  *oto.Player
	onError func(error)
	done    chan struct{}
	once    sync.Once
}

// Start begins playback and the error watcher.
func (s *stream) Start() error {
	s.player.Play()
	go s.watch()
	return nil
}

// watch reports the first error of the context and of the player. oto has no
// error callback, so it is polled.
func (s *stream) watch() {
	ticker := time.NewTicker(errorPollInterval)
	defer ticker.Stop()
	var ctxReported, playerReported bool
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
		if err := s.ctx.Err(); err != nil && !ctxReported {
			ctxReported = true
			s.report(err)
		}
		if err := s.player.Err(); err != nil && !playerReported {
			playerReported = true
			s.report(err)
		}
	}
}

func (s *stream) report(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// Close stops playback and suspends the context.
func (s *stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.player.Close()
		if serr := s.ctx.Suspend(); serr != nil && err == nil {
			err = serr
		}
	})
	return err
}
