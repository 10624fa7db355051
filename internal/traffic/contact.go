package traffic

import (
	"fmt"
	"strings"
)

// MaxContacts is the fixed capacity of the contact table.
const MaxContacts = 8

// CallsignSize matches the GDL90 traffic report call-sign field.
const CallsignSize = 8

// IDType qualifies a numeric ID. IDs are only unique within one type.
type IDType uint8

const (
	IDRandom    IDType = 0
	IDICAO      IDType = 1
	IDFLARM     IDType = 2
	IDAnonymous IDType = 3
)

// Identity keys a contact.
type Identity struct {
	Type IDType
	ID   uint32
}

func (id Identity) String() string {
	return fmt.Sprintf("%d:%06X", id.Type, id.ID)
}

// Label is the short display tag: the rightmost two hex digits of the ID.
func (id Identity) Label() string {
	s := fmt.Sprintf("%06X", id.ID)
	return s[len(s)-2:]
}

func compareIdentity(a, b Identity) int {
	switch {
	case a.Type < b.Type:
		return -1
	case a.Type > b.Type:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// Kind tags which report shape last refreshed a contact.
type Kind uint8

const (
	KindNone Kind = iota
	// KindPFLAA carries north/east/vertical offsets and velocity.
	KindPFLAA
	// KindPFLAU carries relative bearing, distance and vertical.
	KindPFLAU
	// KindGDL90 carries absolute latitude/longitude/altitude.
	KindGDL90
)

func (k Kind) String() string {
	switch k {
	case KindPFLAA:
		return "PFLAA"
	case KindPFLAU:
		return "PFLAU"
	case KindGDL90:
		return "GDL90"
	default:
		return "none"
	}
}

// AlarmLevel is the FLARM alarm ordinal shared by source reports and local
// classification.
type AlarmLevel int8

const (
	AlarmNone      AlarmLevel = 0
	AlarmLow       AlarmLevel = 1 // 13-18 s to impact
	AlarmImportant AlarmLevel = 2 // 9-12 s to impact
	AlarmUrgent    AlarmLevel = 3 // 0-8 s to impact
)

func (l AlarmLevel) String() string {
	switch l {
	case AlarmNone:
		return "none"
	case AlarmLow:
		return "low"
	case AlarmImportant:
		return "important"
	case AlarmUrgent:
		return "urgent"
	default:
		return fmt.Sprintf("alarm(%d)", int8(l))
	}
}

// ParseAlarmLevel accepts the names printed by AlarmLevel.String.
func ParseAlarmLevel(s string) (AlarmLevel, error) {
	for l := AlarmNone; l <= AlarmUrgent; l++ {
		if strings.EqualFold(strings.TrimSpace(s), l.String()) {
			return l, nil
		}
	}
	return AlarmNone, fmt.Errorf("unknown alarm level %q", s)
}

func clampAlarm(l AlarmLevel) AlarmLevel {
	if l < AlarmNone {
		return AlarmNone
	}
	if l > AlarmUrgent {
		return AlarmUrgent
	}
	return l
}

// Bits within Contact.Alert.
const (
	AlertVoice uint8 = 1 << 0
	AlertBuzz  uint8 = 1 << 1
)

// Contact is one slot of the table. The zero value is the empty sentinel.
type Contact struct {
	Timestamp int64 // ms, from the engine clock
	Kind      Kind

	AlarmLevel AlarmLevel
	Identity   Identity

	Track       float64 // degrees true
	TurnRate    float64 // degrees/s
	GroundSpeed float64 // m/s
	ClimbRate   float64 // m/s
	AcftType    uint8
	NoTrack     bool // PFLAA only
	Source      uint8

	// MinAlert is the lowest alarm level that produces a voice alert.
	MinAlert AlarmLevel

	RelativeNorth    float64 // metres
	RelativeEast     float64
	RelativeVertical float64
	RelativeBearing  float64 // degrees from own track, (-180, 180]

	Distance float64 // horizontal metres
	AdjDist  float64 // vertically weighted metres
	Zone     Zone

	Latitude  float64
	Longitude float64
	Altitude  float64 // metres

	Callsign [CallsignSize]byte

	// Alert records which alert channels fired during the current episode.
	Alert uint8

	AlertState AlertState
	LastFired  int64
	FiredLevel AlarmLevel

	// reported is the alarm level carried by the latest source report.
	reported AlarmLevel
	geometry Geometry
	live     bool
}

// Live reports whether the slot holds a tracked contact.
func (c *Contact) Live() bool {
	return c != nil && c.live
}

// CallsignString returns the trimmed call-sign.
func (c *Contact) CallsignString() string {
	return strings.TrimRight(string(c.Callsign[:]), " \x00")
}

// Ownship is the own-aircraft state the geometry is computed against.
type Ownship struct {
	LatDeg      float64
	LonDeg      float64
	AltM        float64
	Track       float64
	GroundSpeed float64
	ClimbRate   float64
}
