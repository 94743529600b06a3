package melty

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

type message struct{ channel, command, data1, data2 int32 }

type fakeProcessor struct {
	messages []message
	renders  int
}

func (f *fakeProcessor) ProcessMidiMessage(channel, command, data1, data2 int32) {
	f.messages = append(f.messages, message{channel, command, data1, data2})
}

func (f *fakeProcessor) Render(left, right []float32) {
	f.renders++
	for i := range left {
		left[i], right[i] = 0.25, -0.5
	}
}

func TestEngine_SendEventMapping(t *testing.T) {
	p := &fakeProcessor{}
	e := newEngine(p, 0)

	events := []contracts.MIDIEvent{
		{Kind: contracts.NoteOn, Channel: 9, Key: 36, Velocity: 110},
		{Kind: contracts.NoteOff, Channel: 9, Key: 36},
		{Kind: contracts.ControlChange, Channel: 0, Controller: 64, Value: 127},
		{Kind: contracts.ProgramChange, Channel: 1, Program: 42},
		{Kind: contracts.PitchBend, Channel: 2, Bend: 0x2001},
	}
	for _, ev := range events {
		if err := e.SendEvent(ev); err != nil {
			t.Fatalf("SendEvent(%v): %v", ev, err)
		}
	}
	want := []message{
		{9, 0x90, 36, 110},
		{9, 0x80, 36, 0},
		{0, 0xB0, 64, 127},
		{1, 0xC0, 42, 0},
		{2, 0xE0, 0x01, 0x40},
	}
	if len(p.messages) != len(want) {
		t.Fatalf("messages=%v", p.messages)
	}
	for i := range want {
		if p.messages[i] != want[i] {
			t.Fatalf("message %d = %+v, want %+v", i, p.messages[i], want[i])
		}
	}
}

func TestEngine_RejectsUnknownEvents(t *testing.T) {
	e := newEngine(&fakeProcessor{}, 1)
	if err := e.SendEvent(contracts.MIDIEvent{}); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("zero event: %v", err)
	}
	if err := e.SendEvent(contracts.MIDIEvent{Kind: contracts.NoteOn, Channel: 16}); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("channel 16: %v", err)
	}
}

func TestEngine_ReadFrameAppliesGain(t *testing.T) {
	p := &fakeProcessor{}
	e := newEngine(p, 2)
	l, r := e.ReadFrame()
	if l != 0.5 || r != -1 || p.renders != 1 {
		t.Fatalf("frame=(%v, %v) renders=%d", l, r, p.renders)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.sf2"), 48000, contracts.SynthConfig{}); !errors.Is(err, ErrSoundFont) {
		t.Fatalf("missing file: %v", err)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.sf2")
	if err := os.WriteFile(bogus, []byte("not a riff file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bogus, 48000, contracts.SynthConfig{}); !errors.Is(err, ErrSoundFont) {
		t.Fatalf("bogus file: %v", err)
	}
}
