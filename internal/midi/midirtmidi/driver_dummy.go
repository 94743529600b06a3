//go:build !linux || !cgo
// +build !linux !cgo

package midirtmidi

import (
	"errors"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrUnavailable is returned by every call when rtmidi is not compiled in.
var ErrUnavailable = errors.New("rtmidi is not available in this build")

type dummyDriver struct {
	logger contracts.Logger
}

// NewInputDriver returns a driver that fails every call. rtmidi needs linux
// and cgo.
func NewInputDriver(options *contracts.ClientOptions) (contracts.InputDriver, error) {
	options.Logger.Warn("Using dummy rtmidi driver; build on linux with cgo enabled for MIDI input")
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
