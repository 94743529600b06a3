package midi

import (
	"github.com/leandrodaf/midisynth/internal/audio/otoout"
	"github.com/leandrodaf/midisynth/internal/bridge"
	"github.com/leandrodaf/midisynth/internal/synth/melty"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if no input driver could be created for this platform.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	bridge.ApplyDefaults(options)

	if options.OutputDevice == nil {
		options.OutputDevice = otoout.New()
	}
	if options.SynthLoader == nil {
		options.SynthLoader = loadMeltySynth
	}
	if options.InputDriver == nil {
		driver, err := NewDriver(options)
		if err != nil {
			return contracts.ClientOptions{}, err
		}
		options.InputDriver = driver
	}
	return *options, nil
}

func loadMeltySynth(path string, sampleRate int, cfg contracts.SynthConfig) (contracts.Synthesizer, error) {
	return melty.Load(path, sampleRate, cfg)
}
