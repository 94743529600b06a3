package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midisynth/internal/midi/mididarwin"
	"github.com/leandrodaf/midisynth/internal/midi/midirtmidi"
	"github.com/leandrodaf/midisynth/internal/midi/midiwindows"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system has no MIDI input driver.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// driverInitializers maps OS names to corresponding MIDI input driver initializers.
var driverInitializers = map[string]func(*contracts.ClientOptions) (contracts.InputDriver, error){
	"darwin":  mididarwin.NewInputDriver,  // macOS CoreMIDI.
	"windows": midiwindows.NewInputDriver, // Windows winmm.
	"linux":   midirtmidi.NewInputDriver,  // ALSA sequencer through rtmidi.
}

// NewDriver initializes a MIDI input driver based on the current operating system.
// It returns ErrUnsupportedOS if the OS is unsupported.
func NewDriver(opts *contracts.ClientOptions) (contracts.InputDriver, error) {
	if initializer, exists := driverInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
}
