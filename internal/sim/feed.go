package sim

import (
	"math"
	"time"

	"trafficalert/internal/gdl90"
	"trafficalert/internal/traffic"
)

const earthRadiusM = 6371000.0

// Feed turns scenario states into the reports a receiver would have decoded.
type Feed struct {
	scn   *Scenario
	loop  bool
	start int64
	begun bool
}

func NewFeed(scn *Scenario, loop bool) *Feed {
	return &Feed{scn: scn, loop: loop}
}

// Step samples the scenario at nowMs, measured from the first call, and
// returns the ownship state and one report per active target.
func (f *Feed) Step(nowMs int64) (traffic.Ownship, []traffic.Report) {
	if !f.begun {
		f.start = nowMs
		f.begun = true
	}
	st := f.scn.StateAt(time.Duration(nowMs-f.start)*time.Millisecond, f.loop)
	return f.scn.Reports(st)
}

// Done reports whether a non-looping feed has played the whole scenario.
func (f *Feed) Done(nowMs int64) bool {
	return !f.loop && f.begun && time.Duration(nowMs-f.start)*time.Millisecond > f.scn.Duration()
}

// Reports renders st into core types.
func (s *Scenario) Reports(st ScenarioState) (traffic.Ownship, []traffic.Report) {
	own := ownshipOf(st.Ownship)
	out := make([]traffic.Report, 0, len(st.Traffic))
	for _, ts := range st.Traffic {
		tg := s.targets[ts.Index]
		callsign := s.script.Traffic[ts.Index].Callsign
		out = append(out, reportFor(tg, callsign, own, ts.ScenarioAircraftState))
	}
	return own, out
}

func ownshipOf(a ScenarioAircraftState) traffic.Ownship {
	return traffic.Ownship{
		LatDeg:      a.LatDeg,
		LonDeg:      a.LonDeg,
		AltM:        gdl90.FeetToMetres(a.AltFeet),
		Track:       a.TrackDeg,
		GroundSpeed: gdl90.KnotsToMps(a.GroundKt),
		ClimbRate:   gdl90.FpmToMps(a.VvelFpm),
	}
}

func reportFor(tg target, callsign string, own traffic.Ownship, a ScenarioAircraftState) traffic.Report {
	if tg.kind == traffic.KindGDL90 {
		r := traffic.FromGDL90(gdl90.Traffic{
			AddrType: addrType(tg.identity.Type),
			ICAO:     gdl90.ICAOFromUint32(tg.identity.ID),
			Alert:    tg.alarm >= traffic.AlarmLow,
			LatDeg:   a.LatDeg,
			LonDeg:   a.LonDeg,
			AltFeet:  a.AltFeet,
			GroundKt: a.GroundKt,
			TrackDeg: a.TrackDeg,
			VvelFpm:  a.VvelFpm,
			Tail:     callsign,
		})
		r.AlarmLevel = max(r.AlarmLevel, tg.alarm)
		return r
	}

	north, east := offset(own.LatDeg, own.LonDeg, a.LatDeg, a.LonDeg)
	vertical := gdl90.FeetToMetres(a.AltFeet) - own.AltM
	r := traffic.Report{
		Kind:       tg.kind,
		Identity:   tg.identity,
		AlarmLevel: tg.alarm,
		Callsign:   callsign,
	}
	if tg.kind == traffic.KindPFLAU {
		abs := math.Atan2(east, north) * 180 / math.Pi
		r.Geometry = traffic.Bearing{
			RelativeBearing: wrap180(abs - own.Track),
			Distance:        math.Hypot(north, east),
			Vertical:        vertical,
		}
		return r
	}
	r.Track = a.TrackDeg
	r.GroundSpeed = gdl90.KnotsToMps(a.GroundKt)
	r.ClimbRate = gdl90.FpmToMps(a.VvelFpm)
	r.Geometry = traffic.Offset{North: north, East: east, Vertical: vertical}
	return r
}

// GDL90 address types carry the identity type through the adapter.
func addrType(t traffic.IDType) byte {
	switch t {
	case traffic.IDICAO:
		return gdl90.AddrADSBICAO
	case traffic.IDAnonymous:
		return gdl90.AddrADSBSelf
	default:
		return gdl90.AddrTISBTrack
	}
}

func offset(lat0, lon0, lat1, lon1 float64) (north, east float64) {
	const rad = math.Pi / 180
	north = (lat1 - lat0) * rad * earthRadiusM
	east = wrap180(lon1-lon0) * rad * earthRadiusM * math.Cos(lat0*rad)
	return north, east
}

func wrap180(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}
