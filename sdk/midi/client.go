package midi

import (
	"github.com/leandrodaf/midisynth/internal/bridge"
	"github.com/leandrodaf/midisynth/internal/jackboot"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// SynthBridge is a configured synth bridge. Call Run to start it and block
// until the context is cancelled, or Start and Close to drive it manually.
type SynthBridge = bridge.Bridge

// NewSynthBridge creates a synth bridge with the specified options.
// It applies default options and picks the platform input driver, the oto
// output device and the meltysynth engine for any boundary left unset.
//
// opts ...contracts.Option: A variadic list of option functions to customize the bridge configuration.
//
// Returns:
//   - *SynthBridge: A bridge that has not been started.
//   - error: An error, if any occurred during the creation of the bridge.
func NewSynthBridge(opts ...contracts.Option) (*SynthBridge, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	return bridge.New(options, jackboot.New(options.Logger))
}

// NewInputDriver returns the MIDI input driver that NewSynthBridge would use
// with the given options.
func NewInputDriver(opts ...contracts.Option) (contracts.InputDriver, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	return options.InputDriver, nil
}
