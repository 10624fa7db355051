package traffic

// Geometry is the position part of a report. It is one of Offset, Bearing or
// Position; normalize turns any of them into relative north/east/vertical.
type Geometry interface {
	isGeometry()
}

// Offset is a local displacement from own aircraft in metres (PFLAA).
type Offset struct {
	North    float64
	East     float64
	Vertical float64
}

// Bearing is a bearing/range fix relative to own track (PFLAU).
type Bearing struct {
	RelativeBearing float64 // degrees, negative is left
	Distance        float64 // metres
	Vertical        float64 // metres, positive above
}

// Position is an absolute fix (GDL90 traffic report).
type Position struct {
	LatDeg float64
	LonDeg float64
	AltM   float64
}

func (Offset) isGeometry()   {}
func (Bearing) isGeometry()  {}
func (Position) isGeometry() {}

// Report is a decoded traffic message handed over by the link-layer decoder.
// The core assumes it is well formed.
type Report struct {
	Kind       Kind
	Identity   Identity
	AlarmLevel AlarmLevel

	Track       float64
	TurnRate    float64
	GroundSpeed float64
	ClimbRate   float64
	AcftType    uint8
	NoTrack     bool
	Source      uint8

	Callsign string
	Geometry Geometry
}

func (r Report) kind() Kind {
	if r.Kind != KindNone {
		return r.Kind
	}
	switch r.Geometry.(type) {
	case Offset:
		return KindPFLAA
	case Bearing:
		return KindPFLAU
	case Position:
		return KindGDL90
	}
	return KindNone
}

func putCallsign(dst *[CallsignSize]byte, s string) {
	*dst = [CallsignSize]byte{}
	copy(dst[:], s)
}
