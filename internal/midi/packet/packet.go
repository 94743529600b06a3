// Package packet splits driver buffers that may carry several MIDI messages
// back to back into individual messages.
package packet

// ShortLength is the total length of a message that starts with status, or
// 0 when status is not a status byte or starts a variable-length SysEx.
func ShortLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xF0:
		switch status & 0xF0 {
		case 0xC0, 0xD0:
			return 2
		default:
			return 3
		}
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF0:
		return 0
	default:
		return 1
	}
}

// Split calls fn once per message in data, in order. SysEx blocks are passed
// through whole (0xF0 up to and including 0xF7, or to the end of data).
// Data bytes without a preceding status byte are skipped; running status is
// not reconstructed. A truncated final message is passed as is so the
// decoder can reject it.
func Split(data []byte, fn func(msg []byte)) {
	for i := 0; i < len(data); {
		status := data[i]
		if status < 0x80 {
			i++
			continue
		}
		if status == 0xF0 {
			end := i + 1
			for end < len(data) && data[end] != 0xF7 {
				end++
			}
			if end < len(data) {
				end++
			}
			fn(data[i:end])
			i = end
			continue
		}
		end := i + ShortLength(status)
		if end > len(data) {
			end = len(data)
		}
		fn(data[i:end])
		i = end
	}
}
