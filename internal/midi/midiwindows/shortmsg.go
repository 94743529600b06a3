package midiwindows

import "github.com/leandrodaf/midisynth/internal/midi/packet"

// unpackShort writes the bytes of a packed winmm short message into buf and
// returns the message slice. The status byte is the low byte of dwParam1,
// followed by up to two data bytes. ok is false when the low byte is not a
// status byte or starts a SysEx, which winmm never packs this way.
func unpackShort(dwParam1 uintptr, buf *[3]byte) (msg []byte, ok bool) {
	status := byte(dwParam1 & 0xFF)
	n := packet.ShortLength(status)
	if n == 0 {
		return nil, false
	}
	buf[0] = status
	buf[1] = byte((dwParam1 >> 8) & 0xFF)
	buf[2] = byte((dwParam1 >> 16) & 0xFF)
	return buf[:n], true
}
