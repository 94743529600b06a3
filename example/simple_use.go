package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	synth, err := midi.NewSynthBridge(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.DebugLevel),
		contracts.WithSoundFont("GeneralUser.sf2"),
		contracts.WithDeviceFilter(contracts.DeviceFilter{Include: []string{"keystation", "usb"}}),
		contracts.WithStreamConfig(contracts.StreamConfig{SampleRate: 44100, Format: contracts.SignedInt16LE}),
		contracts.WithStatsInterval(10*time.Second),
	)
	if err != nil {
		log.Error("Failed to initialize synth bridge", log.Field().Error("error", err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Playing MIDI input... Press Ctrl+C to exit.")
	if err := synth.Run(ctx); err != nil {
		log.Error("Synth bridge stopped with error", log.Field().Error("error", err))
	}
}
