//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrUnavailable is returned by every call on platforms without winmm.
var ErrUnavailable = errors.New("winmm MIDI is not available on this platform")

type dummyDriver struct {
	logger contracts.Logger
}

// NewInputDriver returns a driver that fails every call on non-Windows systems.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	options.Logger.Warn("Using dummy winmm driver for non-Windows system")
	return &dummyDriver{logger: options.Logger}, nil
}

// Ports always fails with ErrUnavailable.
func (d *dummyDriver) Ports() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

// Open always fails with ErrUnavailable.
func (d *dummyDriver) Open(contracts.DeviceInfo, contracts.MessageHandler) (contracts.Subscription, error) {
	return nil, ErrUnavailable
}

// Close does nothing.
func (d *dummyDriver) Close() error {
	return nil
}
