package bridge

import (
	"os"
	"time"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Default configuration values.
const (
	DefaultSoundFontPath   = "/usr/share/soundfonts/FluidR3_GM.sf2"
	SoundFontEnv           = "SOUNDFONT"
	DefaultSampleRate      = 48000
	DefaultChannels        = 2
	DefaultRequestedFrames = 32
	DefaultPollInterval    = 2 * time.Second
	DefaultClientName      = "midisynth"
	DefaultGain            = 2.0
	DefaultPolyphony       = 64
	DefaultJackTimeout     = 3 * time.Second
	DefaultJackProbe       = 100 * time.Millisecond
)

// DefaultJackCommand starts jackd on the first ALSA card with a 64-frame period.
func DefaultJackCommand() []string {
	return []string{"jackd", "-P85", "-dalsa", "-dhw:0", "-r48000", "-p64", "-n2"}
}

// DefaultDeviceFilter accepts USB ports and rejects the usual virtual ones.
func DefaultDeviceFilter() contracts.DeviceFilter {
	return contracts.DeviceFilter{
		Include: []string{"usb"},
		Exclude: []string{"Midi Through", "Through Port", "Dummy"},
	}
}

// ApplyDefaults fills every unset field of options except the platform
// boundaries (InputDriver, OutputDevice, SynthLoader), then applies the log
// level and destination to the logger.
func ApplyDefaults(options *contracts.ClientOptions) {
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.SoundFontPath == "" {
		options.SoundFontPath = os.Getenv(SoundFontEnv)
	}
	if options.SoundFontPath == "" {
		options.SoundFontPath = DefaultSoundFontPath
	}

	if options.Stream.SampleRate <= 0 {
		options.Stream.SampleRate = DefaultSampleRate
	}
	if options.Stream.Channels <= 0 {
		options.Stream.Channels = DefaultChannels
	}
	if options.Stream.RequestedFrames <= 0 {
		options.Stream.RequestedFrames = DefaultRequestedFrames
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}

	if options.DeviceFilter == nil {
		f := DefaultDeviceFilter()
		options.DeviceFilter = &f
	}
	if options.DriverConfig == nil {
		options.DriverConfig = &contracts.DriverConfig{ClientName: DefaultClientName}
	}
	if options.Synth == nil {
		options.Synth = &contracts.SynthConfig{Gain: DefaultGain, MaxPolyphony: DefaultPolyphony}
	}
	if options.Jack == nil {
		options.Jack = &contracts.JackConfig{}
	}
	if len(options.Jack.Command) == 0 {
		options.Jack.Command = DefaultJackCommand()
	}
	if options.Jack.Timeout <= 0 {
		options.Jack.Timeout = DefaultJackTimeout
	}
	if options.Jack.ProbeInterval <= 0 {
		options.Jack.ProbeInterval = DefaultJackProbe
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
}
