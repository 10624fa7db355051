package gdl90

const (
	MetresPerFoot   = 0.3048
	MetresPerSecKt  = 1852.0 / 3600.0
	MetresPerSecFpm = MetresPerFoot / 60.0
)

func FeetToMetres(ft int) float64 { return float64(ft) * MetresPerFoot }

func MetresToFeet(m float64) int { return int(m / MetresPerFoot) }

func KnotsToMps(kt int) float64 { return float64(kt) * MetresPerSecKt }

func MpsToKnots(mps float64) int { return int(mps/MetresPerSecKt + 0.5) }

func FpmToMps(fpm int) float64 { return float64(fpm) * MetresPerSecFpm }

func MpsToFpm(mps float64) int { return int(mps / MetresPerSecFpm) }
