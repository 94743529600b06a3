package contracts

import "fmt"

// EventKind identifies which variant of MIDIEvent is populated.
type EventKind uint8

const (
	// NoteOn is a Note On channel message (status 0x9n).
	NoteOn EventKind = iota + 1
	// NoteOff is a Note Off channel message (status 0x8n).
	NoteOff
	// ControlChange is a Control Change channel message (status 0xBn).
	ControlChange
	// ProgramChange is a Program Change channel message (status 0xCn).
	ProgramChange
	// PitchBend is a Pitch Bend channel message (status 0xEn).
	PitchBend
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ControlChange:
		return "control_change"
	case ProgramChange:
		return "program_change"
	case PitchBend:
		return "pitch_bend"
	default:
		return "unknown"
	}
}

// MIDIEvent is a decoded channel voice message. Only the fields that belong
// to Kind are meaningful; the rest are zero.
type MIDIEvent struct {
	Kind       EventKind
	Channel    uint8  // 0-15
	Key        uint8  // NoteOn, NoteOff
	Velocity   uint8  // NoteOn
	Controller uint8  // ControlChange
	Value      uint8  // ControlChange
	Program    uint8  // ProgramChange
	Bend       uint16 // PitchBend, 14 bits
}

func (e MIDIEvent) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("%s ch=%d key=%d vel=%d", e.Kind, e.Channel, e.Key, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("%s ch=%d key=%d", e.Kind, e.Channel, e.Key)
	case ControlChange:
		return fmt.Sprintf("%s ch=%d ctrl=%d value=%d", e.Kind, e.Channel, e.Controller, e.Value)
	case ProgramChange:
		return fmt.Sprintf("%s ch=%d program=%d", e.Kind, e.Channel, e.Program)
	case PitchBend:
		return fmt.Sprintf("%s ch=%d value=%d", e.Kind, e.Channel, e.Bend)
	default:
		return e.Kind.String()
	}
}

// MessageHandler receives one raw MIDI message. It is called on the driver's
// own thread and must not block.
type MessageHandler func(msg []byte)

// Subscription is a live connection to one input port. After Close returns,
// the handler passed to Open is not invoked again.
type Subscription interface {
	Close() error
}

// InputDriver enumerates and opens MIDI input ports on one platform.
type InputDriver interface {
	// Ports lists the input ports present right now.
	Ports() ([]DeviceInfo, error)
	// Open subscribes handler to the port whose name matches port.Name.
	Open(port DeviceInfo, handler MessageHandler) (Subscription, error)
	// Close releases the driver.
	Close() error
}
