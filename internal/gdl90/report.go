package gdl90

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

const (
	msgOwnship = 0x0A
	msgTraffic = 0x14

	latLonLSB = 180.0 / 8388608.0 // degrees per count, signed 24-bit
	trackLSB  = 360.0 / 256.0

	// Address types (lower nibble of byte 1).
	AddrADSBICAO  = 0
	AddrADSBSelf  = 1
	AddrTISBICAO  = 2
	AddrTISBTrack = 3
	AddrSurface   = 4
)

// Traffic is one target of a Traffic Report (0x14).
type Traffic struct {
	AddrType byte
	ICAO     [3]byte
	// Alert sets the traffic alert status nibble.
	Alert bool

	LatDeg          float64
	LonDeg          float64
	AltFeet         int
	NIC             byte
	NACp            byte
	GroundKt        int
	TrackDeg        float64
	VvelFpm         int
	EmitterCategory byte
	Tail            string
}

// Ownship is the device's own position for the Ownship Report (0x0A).
type Ownship struct {
	ICAO     [3]byte
	LatDeg   float64
	LonDeg   float64
	AltFeet  int
	GroundKt int
	TrackDeg float64
	VvelFpm  int
	Callsign string
}

// TrafficReportFrame builds and frames a Traffic Report.
func TrafficReportFrame(t Traffic) []byte {
	status := byte(0)
	if t.Alert {
		status = 1
	}
	return Frame(encodeReport(msgTraffic, report{
		status:   status,
		addrType: t.AddrType,
		icao:     t.ICAO,
		lat:      t.LatDeg,
		lon:      t.LonDeg,
		altFeet:  t.AltFeet,
		nic:      t.NIC,
		nacp:     t.NACp,
		gs:       t.GroundKt,
		vvel:     t.VvelFpm,
		vvelOK:   true,
		track:    t.TrackDeg,
		emitter:  t.EmitterCategory,
		callsign: t.Tail,
	}))
}

// OwnshipReportFrame builds and frames an Ownship Report with NIC/NACp 8.
func OwnshipReportFrame(o Ownship) []byte {
	return Frame(encodeReport(msgOwnship, report{
		addrType: AddrADSBICAO,
		icao:     o.ICAO,
		lat:      o.LatDeg,
		lon:      o.LonDeg,
		altFeet:  o.AltFeet,
		nic:      8,
		nacp:     8,
		gs:       o.GroundKt,
		vvel:     o.VvelFpm,
		vvelOK:   true,
		track:    o.TrackDeg,
		callsign: o.Callsign,
	}))
}

type report struct {
	status   byte
	addrType byte
	icao     [3]byte
	lat, lon float64
	altFeet  int
	nic      byte
	nacp     byte
	gs       int
	vvel     int
	vvelOK   bool
	track    float64
	emitter  byte
	callsign string
}

// encodeReport packs the 27-byte body shared by Ownship and Traffic reports.
func encodeReport(id byte, r report) []byte {
	msg := make([]byte, 28)
	msg[0] = id
	msg[1] = (r.status&0x0F)<<4 | r.addrType&0x0F
	copy(msg[2:5], r.icao[:])

	lat := encodeLatLon24(r.lat)
	copy(msg[5:8], lat[:])
	lon := encodeLatLon24(r.lon)
	copy(msg[8:11], lon[:])

	alt := encodeAltitude12(r.altFeet)
	msg[11] = byte(alt >> 4)
	msg[12] = byte(alt&0x0F) << 4
	// Misc: true track valid, report updated, airborne.
	msg[12] |= 0x09
	msg[13] = (r.nic&0x0F)<<4 | r.nacp&0x0F

	gs := encodeU12(r.gs)
	msg[14] = byte(gs >> 4)
	msg[15] = byte(gs&0x0F) << 4

	vv := uint16(0x800) // unknown
	if r.vvelOK {
		v := int32(math.Round(float64(r.vvel) / 64.0))
		v = min(max(v, -510), 510)
		vv = uint16(int16(v)) & 0x0FFF
	}
	msg[15] |= byte(vv >> 8)
	msg[16] = byte(vv)

	msg[17] = encodeTrack8(r.track)
	msg[18] = r.emitter
	if msg[18] == 0 {
		msg[18] = 0x01
	}
	copy(msg[19:27], sanitizeCallsign(r.callsign))
	// msg[27]: emergency/priority code 0 (none).
	return msg
}

// ParseICAOHex parses a 6-digit hex address such as "ABC123".
func ParseICAOHex(s string) ([3]byte, error) {
	var out [3]byte
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if len(s) != 6 {
		return out, fmt.Errorf("icao must be 6 hex chars")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// ICAOToUint32 and ICAOFromUint32 convert between wire and numeric addresses.
func ICAOToUint32(icao [3]byte) uint32 {
	return uint32(icao[0])<<16 | uint32(icao[1])<<8 | uint32(icao[2])
}

func ICAOFromUint32(v uint32) [3]byte {
	return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}
}

func encodeLatLon24(deg float64) [3]byte {
	// Truncate toward zero.
	u := uint32(int32(deg/latLonLSB)) & 0x00FFFFFF
	return [3]byte{byte(u >> 16), byte(u >> 8), byte(u)}
}

// encodeAltitude12 uses 25 ft steps from -1000 ft; 0xFFF is invalid.
func encodeAltitude12(altFeet int) uint16 {
	if altFeet < -1000 || altFeet > 101350 {
		return 0x0FFF
	}
	return uint16((altFeet+1000)/25) & 0x0FFF
}

func encodeU12(v int) uint16 {
	return uint16(min(max(v, 0), 0xFFF))
}

func encodeTrack8(deg float64) byte {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return byte(int(math.Floor((deg+trackLSB/2)/trackLSB)) & 0xFF)
}

func sanitizeCallsign(s string) []byte {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 8 {
		s = s[:8]
	}
	b := []byte(s)
	for i, c := range b {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z')) {
			b[i] = ' '
		}
	}
	for len(b) < 8 {
		b = append(b, ' ')
	}
	return b
}
