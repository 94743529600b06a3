//go:build linux && cgo
// +build linux,cgo

package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Error definitions for port lookup and connection failures.
var (
	ErrPortNotFound        = errors.New("MIDI input not found")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
)

// Driver lists and opens ALSA sequencer inputs through rtmidi.
type Driver struct {
	logger contracts.Logger
	drv    *rtmididrv.Driver
}

// NewInputDriver opens the rtmidi driver.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Debug("rtmidi MIDI driver created")
	return &Driver{logger: options.Logger, drv: drv}, nil
}

// Ports re-enumerates the inputs on every call.
func (d *Driver) Ports() ([]contracts.DeviceInfo, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{
			ID:   in.Number(),
			Name: in.String(),
		}
	}
	return devices, nil
}

// Open finds the input named port.Name and starts listening on it.
func (d *Driver) Open(port contracts.DeviceInfo, handler contracts.MessageHandler) (contracts.Subscription, error) {
	ins, err := d.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == port.Name {
			found = in
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, port.Name)
	}
	if err := found.Open(); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMIDIConnectionError, port.Name, err)
	}

	name := port.Name
	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		handler(msg)
	}, midi.HandleError(func(listenErr error) {
		d.logger.Warn("MIDI listener error",
			d.logger.Field().String("device", name),
			d.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = found.Close()
		return nil, fmt.Errorf("%w %q: %v", ErrMIDIConnectionError, port.Name, err)
	}
	return &subscription{in: found, stop: stop}, nil
}

// Close releases the rtmidi driver and every port it still holds.
func (d *Driver) Close() error {
	return d.drv.Close()
}

type subscription struct {
	in   drivers.In
	stop func()
	once sync.Once
	err  error
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.stop()
		s.err = s.in.Close()
	})
	return s.err
}
