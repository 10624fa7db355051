package traffic

import "math"

const (
	earthRadiusM = 6371000.0
	degToRad     = math.Pi / 180
	radToDeg     = 180 / math.Pi
)

// Zone is the distance band a contact falls in, judged on AdjDist.
type Zone uint8

const (
	ZoneNone Zone = iota
	ZoneFar
	ZoneClose
	ZoneImportant
	ZoneUrgent
)

func (z Zone) String() string {
	switch z {
	case ZoneFar:
		return "far"
	case ZoneClose:
		return "close"
	case ZoneImportant:
		return "important"
	case ZoneUrgent:
		return "urgent"
	default:
		return "none"
	}
}

// Alarm maps a zone to the alarm level it implies on its own.
func (z Zone) Alarm() AlarmLevel {
	switch z {
	case ZoneClose:
		return AlarmLow
	case ZoneImportant:
		return AlarmImportant
	case ZoneUrgent:
		return AlarmUrgent
	default:
		return AlarmNone
	}
}

func (c Config) classify(adjDist float64) Zone {
	switch {
	case adjDist <= c.ZoneUrgent:
		return ZoneUrgent
	case adjDist <= c.ZoneImportant:
		return ZoneImportant
	case adjDist <= c.ZoneClose:
		return ZoneClose
	case adjDist <= c.ZoneNone:
		return ZoneFar
	default:
		return ZoneNone
	}
}

// AdjustedDistance weights vertical separation slope times heavier than
// lateral separation. Lateral distance is shrunk by 1/slope so a co-altitude
// contact reads nearer than its map distance.
func AdjustedDistance(distance, vertical, slope float64) float64 {
	if slope < 1 {
		slope = 1
	}
	return math.Hypot(distance*(1-1/slope), slope*vertical)
}

// normalize fills the relative geometry of c from whichever report shape
// refreshed it last. This is the only place that looks at the shape.
func normalize(own *Contact, c *Contact) {
	switch g := c.geometry.(type) {
	case Offset:
		c.RelativeNorth = g.North
		c.RelativeEast = g.East
		c.RelativeVertical = g.Vertical
		c.Distance = math.Hypot(g.North, g.East)
		c.RelativeBearing = relativeBearing(math.Atan2(g.East, g.North)*radToDeg, own.Track)
		c.Latitude, c.Longitude = offsetPosition(own, g.North, g.East)
		c.Altitude = own.Altitude + g.Vertical
	case Bearing:
		abs := (own.Track + g.RelativeBearing) * degToRad
		c.RelativeNorth = g.Distance * math.Cos(abs)
		c.RelativeEast = g.Distance * math.Sin(abs)
		c.RelativeVertical = g.Vertical
		c.Distance = math.Abs(g.Distance)
		c.RelativeBearing = relativeBearing(g.RelativeBearing, 0)
		c.Latitude, c.Longitude = offsetPosition(own, c.RelativeNorth, c.RelativeEast)
		c.Altitude = own.Altitude + g.Vertical
	case Position:
		dLat := g.LatDeg - own.Latitude
		dLon := wrap180(g.LonDeg - own.Longitude)
		c.RelativeNorth = dLat * degToRad * earthRadiusM
		c.RelativeEast = dLon * degToRad * earthRadiusM * math.Cos(own.Latitude*degToRad)
		c.RelativeVertical = g.AltM - own.Altitude
		c.Distance = math.Hypot(c.RelativeNorth, c.RelativeEast)
		c.RelativeBearing = relativeBearing(math.Atan2(c.RelativeEast, c.RelativeNorth)*radToDeg, own.Track)
		c.Latitude = g.LatDeg
		c.Longitude = g.LonDeg
		c.Altitude = g.AltM
	}
}

func offsetPosition(own *Contact, north, east float64) (lat, lon float64) {
	lat = own.Latitude + north/earthRadiusM*radToDeg
	cosLat := math.Cos(own.Latitude * degToRad)
	if cosLat < 1e-6 {
		return lat, own.Longitude
	}
	lon = wrap180(own.Longitude + east/(earthRadiusM*cosLat)*radToDeg)
	return lat, lon
}

// relativeBearing returns abs-track in (-180, 180].
func relativeBearing(abs, track float64) float64 {
	return -wrap180(track - abs)
}

// wrap180 maps deg into [-180, 180).
func wrap180(deg float64) float64 {
	deg = math.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}
