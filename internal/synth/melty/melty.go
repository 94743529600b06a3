// Package melty adapts the go-meltysynth SoundFont synthesizer to
// contracts.Synthesizer.
package melty

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

var (
	// ErrSoundFont is returned when the sound bank cannot be opened or parsed.
	ErrSoundFont = errors.New("failed to load sound font")
	// ErrSynthInit is returned when the synthesizer rejects its settings.
	ErrSynthInit = errors.New("failed to initialise synthesizer")
	// ErrUnsupportedEvent is returned by SendEvent for events it cannot map.
	ErrUnsupportedEvent = errors.New("unsupported MIDI event")
)

// processor is the subset of *meltysynth.Synthesizer the engine drives.
type processor interface {
	ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
	Render(left []float32, right []float32)
}

// Engine renders one stereo frame per ReadFrame call.
type Engine struct {
	synth processor
	gain  float32
	left  [1]float32
	right [1]float32
}

// Load reads the sound bank at path and builds a synthesizer for sampleRate.
func Load(path string, sampleRate int, cfg contracts.SynthConfig) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrSoundFont, path, err)
	}
	defer f.Close()

	font, err := meltysynth.NewSoundFont(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrSoundFont, path, err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	if cfg.MaxPolyphony > 0 {
		settings.MaximumPolyphony = int32(cfg.MaxPolyphony)
	}
	settings.EnableReverbAndChorus = cfg.EnableReverbAndChorus

	synth, err := meltysynth.NewSynthesizer(font, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthInit, err)
	}
	return newEngine(synth, cfg.Gain), nil
}

func newEngine(p processor, gain float32) *Engine {
	if gain <= 0 {
		gain = 1
	}
	return &Engine{synth: p, gain: gain}
}

// SendEvent implements contracts.Synthesizer.
func (e *Engine) SendEvent(ev contracts.MIDIEvent) error {
	if ev.Channel > 15 {
		return fmt.Errorf("%w: channel %d", ErrUnsupportedEvent, ev.Channel)
	}
	ch := int32(ev.Channel)
	switch ev.Kind {
	case contracts.NoteOn:
		e.synth.ProcessMidiMessage(ch, 0x90, int32(ev.Key), int32(ev.Velocity))
	case contracts.NoteOff:
		e.synth.ProcessMidiMessage(ch, 0x80, int32(ev.Key), 0)
	case contracts.ControlChange:
		e.synth.ProcessMidiMessage(ch, 0xB0, int32(ev.Controller), int32(ev.Value))
	case contracts.ProgramChange:
		e.synth.ProcessMidiMessage(ch, 0xC0, int32(ev.Program), 0)
	case contracts.PitchBend:
		e.synth.ProcessMidiMessage(ch, 0xE0, int32(ev.Bend&0x7F), int32(ev.Bend>>7&0x7F))
	default:
		return ErrUnsupportedEvent
	}
	return nil
}

// ReadFrame implements contracts.Synthesizer.
func (e *Engine) ReadFrame() (float32, float32) {
	e.synth.Render(e.left[:], e.right[:])
	return e.left[0] * e.gain, e.right[0] * e.gain
}
