package contracts

import "time"

// DeviceFilter selects which input ports count as target devices. A port is
// accepted when its name contains any Include substring and no Exclude
// substring. Matching is case-insensitive.
//
// Substring matching can both over- and under-match; it is kept for
// compatibility with existing port naming.
type DeviceFilter struct {
	Include []string
	Exclude []string
}

// DriverConfig holds configuration shared by the platform input drivers.
type DriverConfig struct {
	ClientName string // Name under which the process registers with the MIDI subsystem.
}

// SynthConfig tunes the synthesis engine.
type SynthConfig struct {
	Gain                  float32
	MaxPolyphony          int
	EnableReverbAndChorus bool
}

// JackConfig controls the optional audio-routing daemon bootstrap.
type JackConfig struct {
	Enabled       bool
	Command       []string      // Daemon command line, argv[0] first.
	Timeout       time.Duration // How long to wait for the daemon to answer.
	ProbeInterval time.Duration // Delay between readiness probes.
}

// SynthLoader builds a Synthesizer for the given sound bank and sample rate.
type SynthLoader func(soundFontPath string, sampleRate int, cfg SynthConfig) (Synthesizer, error)

// ClientOptions defines the configuration options for the synth bridge.
type ClientOptions struct {
	Logger        Logger        // Logger for logging events and errors.
	LogLevel      LogLevel      // Level of logging to use.
	LogFilePath   string        // File path for logging if file logging is enabled.
	SoundFontPath string        // Sound bank loaded at startup.
	Stream        StreamConfig  // Requested output stream.
	PollInterval  time.Duration // Device Monitor poll interval.
	StatsInterval time.Duration // Interval of the periodic counters log. Zero disables it.
	DeviceFilter  *DeviceFilter // Device-class filter applied on every poll.
	DriverConfig  *DriverConfig // Configuration for the platform input driver.
	Synth         *SynthConfig  // Synthesis engine tuning.
	Jack          *JackConfig   // Optional daemon bootstrap.

	InputDriver  InputDriver  // Platform input driver. Chosen per OS when nil.
	OutputDevice OutputDevice // Platform audio output. oto when nil.
	SynthLoader  SynthLoader  // Synthesis engine constructor. meltysynth when nil.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs log output to path instead of the console.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithSoundFont sets the sound bank path.
func WithSoundFont(path string) Option {
	return func(opts *ClientOptions) {
		opts.SoundFontPath = path
	}
}

// WithStreamConfig sets the requested output stream configuration. Zero
// fields keep their defaults.
func WithStreamConfig(cfg StreamConfig) Option {
	return func(opts *ClientOptions) {
		opts.Stream = cfg
	}
}

// WithPollInterval sets the Device Monitor poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.PollInterval = d
	}
}

// WithStatsInterval enables a periodic log of render and queue counters.
func WithStatsInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.StatsInterval = d
	}
}

// WithDeviceFilter sets the device-class filter.
func WithDeviceFilter(filter DeviceFilter) Option {
	return func(opts *ClientOptions) {
		opts.DeviceFilter = &filter
	}
}

// WithDriverConfig sets the input driver configuration.
func WithDriverConfig(config DriverConfig) Option {
	return func(opts *ClientOptions) {
		opts.DriverConfig = &config
	}
}

// WithSynthConfig sets the synthesis engine tuning.
func WithSynthConfig(config SynthConfig) Option {
	return func(opts *ClientOptions) {
		opts.Synth = &config
	}
}

// WithJack enables the audio-routing daemon bootstrap.
func WithJack(config JackConfig) Option {
	return func(opts *ClientOptions) {
		opts.Jack = &config
	}
}

// WithInputDriver overrides the platform input driver.
func WithInputDriver(d InputDriver) Option {
	return func(opts *ClientOptions) {
		opts.InputDriver = d
	}
}

// WithOutputDevice overrides the platform audio output.
func WithOutputDevice(d OutputDevice) Option {
	return func(opts *ClientOptions) {
		opts.OutputDevice = d
	}
}

// WithSynthLoader overrides the synthesis engine constructor.
func WithSynthLoader(l SynthLoader) Option {
	return func(opts *ClientOptions) {
		opts.SynthLoader = l
	}
}
