package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leandrodaf/midisynth/internal/bridge"
	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/internal/monitor"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/midi"
	"github.com/spf13/cobra"
)

const VERSION = "v0.3.0"

var flags struct {
	soundFont    string
	pollInterval time.Duration
	statsEvery   time.Duration
	include      []string
	exclude      []string
	sampleRate   int
	format       string
	frames       int
	logLevel     string
	logFile      string
	jack         bool
	jackCmd      string
	jackTimeout  time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "midisynth",
	Short: "Play any plugged-in USB MIDI keyboard through a SoundFont synthesizer",
	Long: `midisynth watches for MIDI input devices, connects to every one that matches the device filter,
and renders what they play through a SoundFont synthesizer on the default audio output.
It runs headless until interrupted.`,
	SilenceUsage: true,
	RunE:         runSynth,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of midisynth",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("midisynth", VERSION)
	},
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI input ports and whether the device filter accepts them",
	RunE:  runDevices,
}

func init() {
	def := bridge.DefaultDeviceFilter()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.soundFont, "soundfont", "", "SoundFont (.sf2) to load (default $"+bridge.SoundFontEnv+" or "+bridge.DefaultSoundFontPath+")")
	pf.DurationVar(&flags.pollInterval, "poll-interval", bridge.DefaultPollInterval, "How often to look for plugged and unplugged devices")
	pf.DurationVar(&flags.statsEvery, "stats-interval", 0, "Log render counters at this interval (0 disables)")
	pf.StringSliceVar(&flags.include, "device-filter", def.Include, "Connect to ports whose name contains any of these substrings (case-insensitive)")
	pf.StringSliceVar(&flags.exclude, "exclude", def.Exclude, "Ignore ports whose name contains any of these substrings (case-insensitive)")
	pf.IntVar(&flags.sampleRate, "sample-rate", bridge.DefaultSampleRate, "Output sample rate in Hz")
	pf.StringVar(&flags.format, "format", contracts.Float32LE.String(), "Output sample format: f32, s16 or u8")
	pf.IntVar(&flags.frames, "frames", bridge.DefaultRequestedFrames, "Requested output block size in frames")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.BoolVar(&flags.jack, "jack", false, "Start a JACK server before opening the audio output if none is running")
	pf.StringVar(&flags.jackCmd, "jack-cmd", strings.Join(bridge.DefaultJackCommand(), " "), "Command used to start the JACK server")
	pf.DurationVar(&flags.jackTimeout, "jack-timeout", bridge.DefaultJackTimeout, "How long to wait for the JACK server to answer")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(devicesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() ([]contracts.Option, error) {
	format, err := contracts.ParseSampleFormat(flags.format)
	if err != nil {
		return nil, err
	}
	level, err := parseLogLevel(flags.logLevel)
	if err != nil {
		return nil, err
	}

	opts := []contracts.Option{
		contracts.WithLogger(logger.NewZapLogger()),
		contracts.WithLogLevel(level),
		contracts.WithSoundFont(flags.soundFont),
		contracts.WithStreamConfig(contracts.StreamConfig{
			SampleRate:      flags.sampleRate,
			Format:          format,
			RequestedFrames: flags.frames,
		}),
		contracts.WithPollInterval(flags.pollInterval),
		contracts.WithStatsInterval(flags.statsEvery),
		contracts.WithDeviceFilter(contracts.DeviceFilter{Include: flags.include, Exclude: flags.exclude}),
		contracts.WithJack(contracts.JackConfig{
			Enabled: flags.jack,
			Command: strings.Fields(flags.jackCmd),
			Timeout: flags.jackTimeout,
		}),
	}
	if flags.logFile != "" {
		opts = append(opts, contracts.WithLogFile(flags.logFile))
	}
	return opts, nil
}

func parseLogLevel(s string) (contracts.LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return contracts.DebugLevel, nil
	case "info":
		return contracts.InfoLevel, nil
	case "warn", "warning":
		return contracts.WarnLevel, nil
	case "error":
		return contracts.ErrorLevel, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func runSynth(cmd *cobra.Command, args []string) error {
	opts, err := options()
	if err != nil {
		return err
	}
	synth, err := midi.NewSynthBridge(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return synth.Run(ctx)
}

func runDevices(cmd *cobra.Command, args []string) error {
	opts, err := options()
	if err != nil {
		return err
	}
	driver, err := midi.NewInputDriver(opts...)
	if err != nil {
		return err
	}
	defer driver.Close()

	ports, err := driver.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No MIDI input ports found")
		return nil
	}

	filter := monitor.NewFilter(contracts.DeviceFilter{Include: flags.include, Exclude: flags.exclude})
	fmt.Println("MIDI input ports:")
	for _, port := range ports {
		mark := " "
		if filter.Match(port.Name) {
			mark = "*"
		}
		fmt.Printf("  %s %d - %s\n", mark, port.ID, port.Name)
	}
	fmt.Println("(* = connected by the device filter)")
	return nil
}
