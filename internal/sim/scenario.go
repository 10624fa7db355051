package sim

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trafficalert/internal/gdl90"
	"trafficalert/internal/traffic"
)

// ScenarioScript is a deterministic, script-driven traffic scenario.
//
// Time is expressed as Go duration strings (e.g. "0s", "250ms", "10s").
// If Duration is zero, it is derived from the latest keyframe time.
//
// YAML schema (v1):
//
//	version: 1
//	duration: 60s
//	ownship:
//	  keyframes:
//	    - t: 0s
//	      lat_deg: 47.0
//	      lon_deg: 8.0
//	      alt_feet: 4500
//	      ground_kt: 90
//	      track_deg: 0
//	traffic:
//	  - id: "4B1234"
//	    id_type: icao      # random|icao|flarm|anonymous; gdl90 defaults to icao
//	    kind: gdl90        # pflaa|pflau|gdl90
//	    callsign: "HBABC"
//	    alarm_level: none  # level reported by the source
//	    from: 0s           # first report
//	    until: 40s         # last report; 0 means until the end
//	    keyframes: ...
//
// pflaa targets are reported as north/east/vertical offsets from ownship,
// pflau targets as relative bearing and distance without velocity, and gdl90
// targets as absolute positions run through the GDL90 adapter.
type ScenarioScript struct {
	Version  int               `yaml:"version"`
	Duration time.Duration     `yaml:"duration"`
	Ownship  ScenarioOwnship   `yaml:"ownship"`
	Traffic  []ScenarioTraffic `yaml:"traffic"`
}

type ScenarioOwnship struct {
	Keyframes []Keyframe `yaml:"keyframes"`
}

type ScenarioTraffic struct {
	ID         string        `yaml:"id"`
	IDType     string        `yaml:"id_type"`
	Kind       string        `yaml:"kind"`
	Callsign   string        `yaml:"callsign"`
	AlarmLevel string        `yaml:"alarm_level"`
	From       time.Duration `yaml:"from"`
	Until      time.Duration `yaml:"until"`
	Keyframes  []Keyframe    `yaml:"keyframes"`
}

// Keyframe is a time-stamped aircraft state.
type Keyframe struct {
	T        time.Duration `yaml:"t"`
	LatDeg   float64       `yaml:"lat_deg"`
	LonDeg   float64       `yaml:"lon_deg"`
	AltFeet  int           `yaml:"alt_feet"`
	GroundKt int           `yaml:"ground_kt"`
	TrackDeg float64       `yaml:"track_deg"`
	VvelFpm  int           `yaml:"vvel_fpm"`
}

// Scenario is the validated, runtime representation.
type Scenario struct {
	script   ScenarioScript
	targets  []target
	duration time.Duration
}

type target struct {
	identity traffic.Identity
	kind     traffic.Kind
	alarm    traffic.AlarmLevel
}

// LoadScenarioScript reads and unmarshals a YAML scenario script from path.
func LoadScenarioScript(path string) (ScenarioScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScenarioScript{}, err
	}
	return ParseScenarioScriptYAML(b)
}

func ParseScenarioScriptYAML(b []byte) (ScenarioScript, error) {
	var s ScenarioScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return ScenarioScript{}, err
	}
	return s, nil
}

// NewScenario validates script and returns a runtime Scenario.
func NewScenario(script ScenarioScript) (*Scenario, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version %d", script.Version)
	}
	if len(script.Ownship.Keyframes) == 0 {
		return nil, fmt.Errorf("ownship.keyframes is required")
	}
	if err := validateKeyframes(script.Ownship.Keyframes, "ownship"); err != nil {
		return nil, err
	}

	targets := make([]target, 0, len(script.Traffic))
	seen := make(map[traffic.Identity]bool, len(script.Traffic))
	for i, tr := range script.Traffic {
		where := fmt.Sprintf("traffic[%d]", i)
		if len(tr.Keyframes) == 0 {
			return nil, fmt.Errorf("%s.keyframes is required", where)
		}
		if err := validateKeyframes(tr.Keyframes, where); err != nil {
			return nil, err
		}
		tg, err := parseTarget(tr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", where, err)
		}
		if seen[tg.identity] {
			return nil, fmt.Errorf("%s: duplicate identity %s", where, tg.identity)
		}
		seen[tg.identity] = true
		if tr.From < 0 || (tr.Until > 0 && tr.Until < tr.From) {
			return nil, fmt.Errorf("%s: from/until out of order", where)
		}
		targets = append(targets, tg)
	}

	dur := script.Duration
	if dur <= 0 {
		dur = maxKeyframeTime(script)
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration is required (or deriveable from keyframes)")
	}

	return &Scenario{script: script, targets: targets, duration: dur}, nil
}

func parseTarget(tr ScenarioTraffic) (target, error) {
	icao, err := gdl90.ParseICAOHex(tr.ID)
	if err != nil {
		return target{}, fmt.Errorf("id: %w", err)
	}
	var tg target
	tg.identity.ID = gdl90.ICAOToUint32(icao)

	switch strings.ToLower(tr.Kind) {
	case "", "pflaa":
		tg.kind = traffic.KindPFLAA
	case "pflau":
		tg.kind = traffic.KindPFLAU
	case "gdl90":
		tg.kind = traffic.KindGDL90
	default:
		return target{}, fmt.Errorf("unknown kind %q", tr.Kind)
	}

	idType := strings.ToLower(tr.IDType)
	if idType == "" {
		idType = "flarm"
		if tg.kind == traffic.KindGDL90 {
			idType = "icao"
		}
	}
	switch idType {
	case "flarm":
		if tg.kind == traffic.KindGDL90 {
			return target{}, fmt.Errorf("gdl90 targets cannot carry flarm ids")
		}
		tg.identity.Type = traffic.IDFLARM
	case "icao":
		tg.identity.Type = traffic.IDICAO
	case "random":
		tg.identity.Type = traffic.IDRandom
	case "anonymous":
		tg.identity.Type = traffic.IDAnonymous
	default:
		return target{}, fmt.Errorf("unknown id_type %q", tr.IDType)
	}

	if tr.AlarmLevel != "" {
		if tg.alarm, err = traffic.ParseAlarmLevel(tr.AlarmLevel); err != nil {
			return target{}, err
		}
	}
	return tg, nil
}

// Duration returns the effective scenario duration.
func (s *Scenario) Duration() time.Duration {
	if s == nil {
		return 0
	}
	return s.duration
}

// ScenarioAircraftState is an interpolated aircraft state.
type ScenarioAircraftState struct {
	LatDeg   float64
	LonDeg   float64
	AltFeet  int
	GroundKt int
	TrackDeg float64
	VvelFpm  int
}

// ScenarioTrafficState is a target that is reporting at the sampled time.
type ScenarioTrafficState struct {
	ScenarioAircraftState
	Index int
}

type ScenarioState struct {
	Ownship ScenarioAircraftState
	Traffic []ScenarioTrafficState
}

// StateAt computes scenario state at elapsed. Targets outside their
// from/until window are left out.
//
// If loop is true, elapsed wraps around Duration(). Otherwise elapsed is clamped
// to [0, Duration()].
func (s *Scenario) StateAt(elapsed time.Duration, loop bool) ScenarioState {
	if s == nil {
		return ScenarioState{}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if s.duration > 0 {
		if loop {
			elapsed = elapsed % s.duration
		} else if elapsed > s.duration {
			elapsed = s.duration
		}
	}

	out := ScenarioState{Ownship: sample(s.script.Ownship.Keyframes, elapsed)}
	for i, tr := range s.script.Traffic {
		if elapsed < tr.From || (tr.Until > 0 && elapsed > tr.Until) {
			continue
		}
		out.Traffic = append(out.Traffic, ScenarioTrafficState{
			ScenarioAircraftState: sample(tr.Keyframes, elapsed),
			Index:                 i,
		})
	}
	return out
}

func validateKeyframes(kfs []Keyframe, where string) error {
	for i := range kfs {
		if kfs[i].T < 0 {
			return fmt.Errorf("%s.keyframes[%d].t must be >= 0", where, i)
		}
		if i > 0 && kfs[i].T < kfs[i-1].T {
			return fmt.Errorf("%s.keyframes must be sorted by t (index %d)", where, i)
		}
	}
	return nil
}

func maxKeyframeTime(s ScenarioScript) time.Duration {
	var last time.Duration
	for _, kf := range s.Ownship.Keyframes {
		last = max(last, kf.T)
	}
	for _, tr := range s.Traffic {
		for _, kf := range tr.Keyframes {
			last = max(last, kf.T)
		}
		last = max(last, tr.Until)
	}
	return last
}

func sample(kfs []Keyframe, t time.Duration) ScenarioAircraftState {
	kf0, kf1, alpha := selectSegment(kfs, t)
	return ScenarioAircraftState{
		LatDeg:   lerp(kf0.LatDeg, kf1.LatDeg, alpha),
		LonDeg:   lerp(kf0.LonDeg, kf1.LonDeg, alpha),
		AltFeet:  int(lerp(float64(kf0.AltFeet), float64(kf1.AltFeet), alpha)),
		GroundKt: int(lerp(float64(kf0.GroundKt), float64(kf1.GroundKt), alpha)),
		TrackDeg: lerpAngleDeg(kf0.TrackDeg, kf1.TrackDeg, alpha),
		VvelFpm:  int(lerp(float64(kf0.VvelFpm), float64(kf1.VvelFpm), alpha)),
	}
}

func selectSegment(kfs []Keyframe, t time.Duration) (Keyframe, Keyframe, float64) {
	if len(kfs) == 1 {
		return kfs[0], kfs[0], 0
	}
	idx := sort.Search(len(kfs), func(i int) bool { return kfs[i].T > t })
	if idx <= 0 {
		return kfs[0], kfs[0], 0
	}
	if idx >= len(kfs) {
		last := kfs[len(kfs)-1]
		return last, last, 0
	}
	k0 := kfs[idx-1]
	k1 := kfs[idx]
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1, k1, 0
	}
	alpha := float64(t-k0.T) / float64(dt)
	return k0, k1, min(max(alpha, 0), 1)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerpAngleDeg(a0, a1, t float64) float64 {
	// Shortest-path interpolation across wraparound, in [0, 360).
	norm := func(x float64) float64 {
		for x < 0 {
			x += 360
		}
		for x >= 360 {
			x -= 360
		}
		return x
	}
	a0 = norm(a0)
	a1 = norm(a1)
	delta := a1 - a0
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return norm(a0 + delta*t)
}
