package otoout

import (
	"errors"
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func TestNegotiate(t *testing.T) {
	got, err := negotiate(contracts.StreamConfig{SampleRate: 48000, Channels: 6, Format: contracts.SignedInt16LE, RequestedFrames: 32})
	if err != nil {
		t.Fatal(err)
	}
	want := contracts.StreamConfig{SampleRate: 48000, Channels: 2, Format: contracts.SignedInt16LE, RequestedFrames: 32}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got, err = negotiate(contracts.StreamConfig{SampleRate: 44100, Channels: 1})
	if err != nil || got.Channels != 1 || got.Format != contracts.Float32LE {
		t.Fatalf("mono: %+v %v", got, err)
	}

	if _, err := negotiate(contracts.StreamConfig{Channels: 2}); !errors.Is(err, ErrUnsupportedConfig) {
		t.Fatalf("zero rate: %v", err)
	}
	if _, err := negotiate(contracts.StreamConfig{SampleRate: 48000, Format: 9}); !errors.Is(err, ErrUnsupportedConfig) {
		t.Fatalf("bad format: %v", err)
	}
}

func TestOtoFormat(t *testing.T) {
	cases := map[contracts.SampleFormat]oto.Format{
		contracts.Float32LE:     oto.FormatFloat32LE,
		contracts.SignedInt16LE: oto.FormatSignedInt16LE,
		contracts.UnsignedInt8:  oto.FormatUnsignedInt8,
	}
	for in, want := range cases {
		got, err := otoFormat(in)
		if err != nil || got != want {
			t.Fatalf("%s -> %v, %v", in, got, err)
		}
	}
}

func TestBufferDuration(t *testing.T) {
	if d := bufferDuration(48, 48000); d != time.Millisecond {
		t.Fatalf("48 frames @48k = %v", d)
	}
	if d := bufferDuration(0, 48000); d != 0 {
		t.Fatalf("zero frames = %v", d)
	}
}
