// Package bridge wires the input driver, device monitor, event queue, render
// loop, synthesizer and output stream together and owns their lifetimes.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midisynth/internal/eventqueue"
	"github.com/leandrodaf/midisynth/internal/monitor"
	"github.com/leandrodaf/midisynth/internal/render"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/multierr"
)

// Startup errors. Each aborts Start.
var (
	ErrNoInputDriver  = errors.New("no MIDI input driver")
	ErrNoOutputDevice = errors.New("no audio output device")
	ErrNoSynthLoader  = errors.New("no synthesizer loader")
	ErrJackBootstrap  = errors.New("JACK bootstrap failed")
	ErrNegotiate      = errors.New("audio output negotiation failed")
	ErrSynthLoad      = errors.New("synthesizer load failed")
	ErrOutputStream   = errors.New("audio output stream failed")
	ErrAlreadyStarted = errors.New("bridge already started")
	ErrClosed         = errors.New("bridge closed")
)

// Bootstrapper makes sure the audio-routing daemon is up.
type Bootstrapper interface {
	EnsureRunning(ctx context.Context, cfg contracts.JackConfig) error
}

// Stats is a snapshot of the bridge counters.
type Stats struct {
	Render        render.Stats
	QueuedEvents  int
	DroppedEvents uint64
}

// Bridge is the running synth: one output stream fed by every connected
// MIDI input.
type Bridge struct {
	opts   contracts.ClientOptions
	logger contracts.Logger
	boot   Bootstrapper

	mu      sync.Mutex
	started bool
	closed  bool

	stream contracts.StreamConfig
	events *eventqueue.Queue
	loop   *render.Loop
	output contracts.OutputStream
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates options. Defaults must already be applied. boot may be nil
// when options.Jack is disabled.
func New(options contracts.ClientOptions, boot Bootstrapper) (*Bridge, error) {
	switch {
	case options.InputDriver == nil:
		return nil, ErrNoInputDriver
	case options.OutputDevice == nil:
		return nil, ErrNoOutputDevice
	case options.SynthLoader == nil:
		return nil, ErrNoSynthLoader
	}
	return &Bridge{
		opts:   options,
		logger: options.Logger,
		boot:   boot,
		events: eventqueue.New(),
	}, nil
}

// Start brings the bridge up: optional JACK bootstrap, output negotiation,
// synthesizer load, output stream, then the device monitor. Any failure is
// returned and leaves nothing running.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}

	if jack := b.opts.Jack; jack != nil && jack.Enabled && b.boot != nil {
		if err := b.boot.EnsureRunning(ctx, *jack); err != nil {
			return fmt.Errorf("%w: %v", ErrJackBootstrap, err)
		}
	}

	cfg, err := b.opts.OutputDevice.Negotiate(b.opts.Stream)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNegotiate, err)
	}
	b.logger.Info("Audio output negotiated",
		b.logger.Field().Int("sampleRate", cfg.SampleRate),
		b.logger.Field().Int("channels", cfg.Channels),
		b.logger.Field().String("format", cfg.Format.String()),
		b.logger.Field().Int("requestedFrames", cfg.RequestedFrames))

	var synthCfg contracts.SynthConfig
	if b.opts.Synth != nil {
		synthCfg = *b.opts.Synth
	}
	synth, err := b.opts.SynthLoader(b.opts.SoundFontPath, cfg.SampleRate, synthCfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthLoad, err)
	}
	b.logger.Info("Sound font loaded", b.logger.Field().String("path", b.opts.SoundFontPath))

	loop, err := render.New(synth, b.events, cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputStream, err)
	}

	output, err := b.opts.OutputDevice.Open(cfg, loop, b.onStreamError)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputStream, err)
	}
	if err := output.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputStream, multierr.Append(err, output.Close()))
	}

	var filter contracts.DeviceFilter
	if b.opts.DeviceFilter != nil {
		filter = *b.opts.DeviceFilter
	}
	mon := monitor.New(b.opts.InputDriver, b.events, b.logger, monitor.Config{
		Interval: b.opts.PollInterval,
		Filter:   filter,
	})

	runCtx, cancel := context.WithCancel(context.Background())
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		mon.Run(runCtx)
	}()
	if b.opts.StatsInterval > 0 {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.logStats(runCtx, b.opts.StatsInterval, loop)
		}()
	}

	b.stream, b.loop, b.output, b.cancel = cfg, loop, output, cancel
	b.started = true
	b.logger.Info("Synth bridge started")
	return nil
}

// Run starts the bridge, blocks until ctx is done, then closes it.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	b.logger.Info("Shutting down synth bridge")
	return b.Close()
}

// Close stops the monitor and closes every router, then the event queue,
// the output stream and the input driver. It is safe to call more than once.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.events.Close()

	var err error
	if b.output != nil {
		err = multierr.Append(err, b.output.Close())
	}
	err = multierr.Append(err, b.opts.InputDriver.Close())
	if err != nil {
		b.logger.Warn("Errors during shutdown", b.logger.Field().Error("error", err))
	}
	return err
}

// StreamConfig returns the negotiated output configuration. It is zero
// before Start.
func (b *Bridge) StreamConfig() contracts.StreamConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stream
}

// Stats returns the current counters.
func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	loop := b.loop
	b.mu.Unlock()
	return b.snapshot(loop)
}

// snapshot reads only atomics so the stats logger never takes b.mu, which
// Close holds while waiting for it.
func (b *Bridge) snapshot(loop *render.Loop) Stats {
	s := Stats{QueuedEvents: b.events.Len(), DroppedEvents: b.events.Dropped()}
	if loop != nil {
		s.Render = loop.Stats()
	}
	return s
}

func (b *Bridge) onStreamError(err error) {
	b.logger.Error("Audio stream error", b.logger.Field().Error("error", err))
}

func (b *Bridge) logStats(ctx context.Context, interval time.Duration, loop *render.Loop) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := b.snapshot(loop)
			b.logger.Info("Synth bridge stats",
				b.logger.Field().Uint64("frames", s.Render.Frames),
				b.logger.Field().Uint64("callbacks", s.Render.Callbacks),
				b.logger.Field().Uint64("forwarded", s.Render.Forwarded),
				b.logger.Field().Uint64("forwardErrors", s.Render.ForwardErrors),
				b.logger.Field().Uint64("lastBlockFrames", s.Render.LastBlockFrames),
				b.logger.Field().Int("queued", s.QueuedEvents),
				b.logger.Field().Uint64("dropped", s.DroppedEvents))
		}
	}
}
