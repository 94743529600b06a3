// Package decoder turns raw MIDI channel voice messages into contracts.MIDIEvent.
package decoder

import "github.com/leandrodaf/midisynth/sdk/contracts"

// Status classes (high nibble of the status byte).
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusControlChange = 0xB0
	statusProgramChange = 0xC0
	statusPitchBend     = 0xE0
)

// Decode parses one MIDI message. It reports false for empty or truncated
// messages and for every status class other than Note On/Off, Control
// Change, Program Change and Pitch Bend. Decode does not allocate.
func Decode(msg []byte) (contracts.MIDIEvent, bool) {
	if len(msg) == 0 {
		return contracts.MIDIEvent{}, false
	}
	status := msg[0]
	channel := status & 0x0F

	switch status & 0xF0 {
	case statusNoteOff:
		if len(msg) < 3 {
			break
		}
		return contracts.MIDIEvent{Kind: contracts.NoteOff, Channel: channel, Key: msg[1] & 0x7F}, true
	case statusNoteOn:
		if len(msg) < 3 {
			break
		}
		return contracts.MIDIEvent{Kind: contracts.NoteOn, Channel: channel, Key: msg[1] & 0x7F, Velocity: msg[2] & 0x7F}, true
	case statusControlChange:
		if len(msg) < 3 {
			break
		}
		return contracts.MIDIEvent{Kind: contracts.ControlChange, Channel: channel, Controller: msg[1] & 0x7F, Value: msg[2] & 0x7F}, true
	case statusProgramChange:
		if len(msg) < 2 {
			break
		}
		return contracts.MIDIEvent{Kind: contracts.ProgramChange, Channel: channel, Program: msg[1] & 0x7F}, true
	case statusPitchBend:
		if len(msg) < 3 {
			break
		}
		// second byte carries bits 0-6, third byte bits 7-13
		bend := uint16(msg[2]&0x7F)<<7 | uint16(msg[1]&0x7F)
		return contracts.MIDIEvent{Kind: contracts.PitchBend, Channel: channel, Bend: bend}, true
	}
	return contracts.MIDIEvent{}, false
}

// MinLength returns the number of bytes a message with the given status byte
// needs to decode, or 0 if the status class is not decoded at all.
func MinLength(status byte) int {
	switch status & 0xF0 {
	case statusNoteOff, statusNoteOn, statusControlChange, statusPitchBend:
		return 3
	case statusProgramChange:
		return 2
	}
	return 0
}
