package traffic

import "trafficalert/internal/gdl90"

// FromGDL90 normalizes a decoded GDL90 traffic report into a Report.
func FromGDL90(t gdl90.Traffic) Report {
	r := Report{
		Kind:        KindGDL90,
		Identity:    Identity{Type: idTypeFromAddr(t.AddrType), ID: gdl90.ICAOToUint32(t.ICAO)},
		Track:       t.TrackDeg,
		GroundSpeed: gdl90.KnotsToMps(t.GroundKt),
		ClimbRate:   gdl90.FpmToMps(t.VvelFpm),
		AcftType:    acftTypeFromEmitter(t.EmitterCategory),
		Callsign:    t.Tail,
		Geometry: Position{
			LatDeg: t.LatDeg,
			LonDeg: t.LonDeg,
			AltM:   gdl90.FeetToMetres(t.AltFeet),
		},
	}
	if t.Alert {
		r.AlarmLevel = AlarmLow
	}
	return r
}

// ToGDL90 renders a contact as a traffic report target for EFBs.
func ToGDL90(c *Contact) gdl90.Traffic {
	return gdl90.Traffic{
		AddrType:        addrFromIDType(c.Identity.Type),
		ICAO:            gdl90.ICAOFromUint32(c.Identity.ID),
		Alert:           c.AlarmLevel >= AlarmLow,
		LatDeg:          c.Latitude,
		LonDeg:          c.Longitude,
		AltFeet:         gdl90.MetresToFeet(c.Altitude),
		NIC:             8,
		NACp:            8,
		GroundKt:        gdl90.MpsToKnots(c.GroundSpeed),
		TrackDeg:        c.Track,
		VvelFpm:         gdl90.MpsToFpm(c.ClimbRate),
		EmitterCategory: emitterFromAcftType(c.AcftType),
		Tail:            c.CallsignString(),
	}
}

// OwnshipToGDL90 renders the own-aircraft state.
func OwnshipToGDL90(o Ownship, id uint32, callsign string) gdl90.Ownship {
	return gdl90.Ownship{
		ICAO:     gdl90.ICAOFromUint32(id),
		LatDeg:   o.LatDeg,
		LonDeg:   o.LonDeg,
		AltFeet:  gdl90.MetresToFeet(o.AltM),
		GroundKt: gdl90.MpsToKnots(o.GroundSpeed),
		TrackDeg: o.Track,
		VvelFpm:  gdl90.MpsToFpm(o.ClimbRate),
		Callsign: callsign,
	}
}

func idTypeFromAddr(addr byte) IDType {
	switch addr {
	case gdl90.AddrADSBICAO, gdl90.AddrTISBICAO, gdl90.AddrSurface:
		return IDICAO
	case gdl90.AddrADSBSelf:
		return IDAnonymous
	default:
		return IDRandom
	}
}

func addrFromIDType(t IDType) byte {
	if t == IDICAO {
		return gdl90.AddrADSBICAO
	}
	return gdl90.AddrADSBSelf
}

// FLARM aircraft types: 1 glider, 3 rotorcraft, 4 skydiver, 7 paraglider,
// 8 piston, 9 jet, 0xB balloon, 0xD UAV, 0xF static obstacle.
func acftTypeFromEmitter(e byte) uint8 {
	switch e {
	case 1:
		return 0x8
	case 2, 3, 4, 5, 6:
		return 0x9
	case 7:
		return 0x3
	case 9:
		return 0x1
	case 10:
		return 0xB
	case 11:
		return 0x4
	case 12:
		return 0x7
	case 14:
		return 0xD
	case 19:
		return 0xF
	default:
		return 0x0
	}
}

func emitterFromAcftType(a uint8) byte {
	switch a {
	case 0x1:
		return 9
	case 0x2, 0x5, 0x8:
		return 1
	case 0x3:
		return 7
	case 0x4:
		return 11
	case 0x6, 0x7:
		return 12
	case 0x9:
		return 3
	case 0xB, 0xC:
		return 10
	case 0xD:
		return 14
	case 0xF:
		return 19
	default:
		return 0
	}
}
