// Package jackboot makes sure a JACK server is running before the audio
// output is opened.
package jackboot

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

var (
	// ErrNoCommand is returned when the server is down and no command is configured.
	ErrNoCommand = errors.New("no JACK server command configured")
	// ErrSpawn wraps a failure to start the server process.
	ErrSpawn = errors.New("failed to spawn JACK server")
	// ErrTimeout is returned when the server does not answer in time.
	ErrTimeout = errors.New("JACK server did not start in time")
)

// Probe reports whether a JACK server accepts clients right now.
type Probe func(ctx context.Context) bool

// Spawner starts the server process and returns once it has been launched,
// not once it is ready.
type Spawner func(argv []string) error

// Booter checks for and starts the JACK server.
type Booter struct {
	logger contracts.Logger
	probe  Probe
	spawn  Spawner
}

// New returns a Booter using the default probe and an os/exec spawner.
func New(logger contracts.Logger) *Booter {
	return &Booter{logger: logger, probe: DefaultProbe, spawn: spawnDetached}
}

// EnsureRunning returns immediately if the probe succeeds. Otherwise it spawns
// cfg.Command and probes every cfg.ProbeInterval until the server answers,
// cfg.Timeout elapses or ctx is cancelled.
func (b *Booter) EnsureRunning(ctx context.Context, cfg contracts.JackConfig) error {
	if b.probe(ctx) {
		b.logger.Info("JACK server is already running")
		return nil
	}
	if len(cfg.Command) == 0 {
		return ErrNoCommand
	}

	b.logger.Info("Starting JACK server", b.logger.Field().String("command", cfg.Command[0]))
	if err := b.spawn(cfg.Command); err != nil {
		return fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(cfg.ProbeInterval)
	defer ticker.Stop()

	for {
		b.logger.Debug("Waiting for JACK server")
		if b.probe(ctx) {
			b.logger.Info("JACK server is ready")
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrTimeout, cfg.Timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// spawnDetached starts argv with stdio discarded; jackd is chatty on start.
// The process is reaped in the background and outlives the caller's context.
func spawnDetached(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
