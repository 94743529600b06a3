//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrUnavailable is returned by every call on platforms without CoreMIDI.
var ErrUnavailable = errors.New("CoreMIDI is not available on this platform")

type dummyDriver struct {
	logger contracts.Logger
}

// NewInputDriver returns a driver that fails every call on non-macOS systems.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	options.Logger.Warn("Using dummy CoreMIDI driver for non-macOS system")
	return &dummyDriver{logger: options.Logger}, nil
}

func (d *dummyDriver) Ports() ([]contracts.DeviceInfo, error) {
	return nil, ErrUnavailable
}

func (d *dummyDriver) Open(contracts.DeviceInfo, contracts.MessageHandler) (contracts.Subscription, error) {
	return nil, ErrUnavailable
}

func (d *dummyDriver) Close() error {
	return nil
}
