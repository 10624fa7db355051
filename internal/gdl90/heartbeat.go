package gdl90

import "time"

// HeartbeatFrameAt builds the 0x00 Heartbeat for nowUTC. EFBs drop the
// connection when they stop seeing it once per second.
func HeartbeatFrameAt(nowUTC time.Time, gpsValid, maintenance bool) []byte {
	msg := make([]byte, 7)
	msg[0] = 0x00

	// bit0 UAT initialized, bit4 address talkback, bit6 maintenance, bit7 GPS position valid.
	status := byte(0x01 | 0x10)
	if gpsValid {
		status |= 0x80
	}
	if maintenance {
		status |= 0x40
	}
	msg[1] = status

	nowUTC = nowUTC.UTC()
	midnight := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	secs := uint32(nowUTC.Sub(midnight) / time.Second)

	// Bit 16 of the timestamp rides in bit7 of byte 2; bit0 is UTC OK.
	msg[2] = byte((secs>>16)<<7) | 0x01
	msg[3] = byte(secs)
	msg[4] = byte(secs >> 8)
	return Frame(msg)
}
