package traffic

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"trafficalert/internal/logging"
)

// Voice wordings, most urgent last.
const (
	WarningWord1 = "alert"
	WarningWord2 = "warning"
	WarningWord3 = "danger"
	AdvisoryWord = "traffic"
)

// Wording picks the leading word for an alarm level.
func Wording(level AlarmLevel) string {
	switch {
	case level >= AlarmUrgent:
		return WarningWord3
	case level == AlarmImportant:
		return WarningWord2
	case level == AlarmLow:
		return WarningWord1
	default:
		return AdvisoryWord
	}
}

// AlertState is the per-contact alert state machine.
type AlertState uint8

const (
	AlertIdle AlertState = iota
	AlertArmed
	AlertFiring
	AlertCooling
)

func (s AlertState) String() string {
	switch s {
	case AlertArmed:
		return "armed"
	case AlertFiring:
		return "firing"
	case AlertCooling:
		return "cooling"
	default:
		return "idle"
	}
}

// Announcement is what the voice collaborator is asked to say.
type Announcement struct {
	Word       string
	Identity   Identity
	Callsign   string
	AlarmLevel AlarmLevel

	RelativeBearing  float64
	Distance         float64
	RelativeVertical float64
}

func newAnnouncement(c *Contact) Announcement {
	return Announcement{
		Word:             Wording(c.AlarmLevel),
		Identity:         c.Identity,
		Callsign:         c.CallsignString(),
		AlarmLevel:       c.AlarmLevel,
		RelativeBearing:  c.RelativeBearing,
		Distance:         c.Distance,
		RelativeVertical: c.RelativeVertical,
	}
}

// Phrase renders the announcement, e.g. "danger, 2 o'clock, 500 metres, below".
func (a Announcement) Phrase() string {
	parts := []string{a.Word}
	if a.Word != AdvisoryWord {
		parts = append(parts, AdvisoryWord)
	}
	parts = append(parts, ClockPosition(a.RelativeBearing), spokenDistance(a.Distance), spokenVertical(a.RelativeVertical))
	return strings.Join(parts, ", ")
}

// ClockPosition converts a relative bearing to "N o'clock".
func ClockPosition(relBearing float64) string {
	h := int(math.Round(relBearing/30)) % 12
	if h <= 0 {
		h += 12
	}
	return fmt.Sprintf("%d o'clock", h)
}

func spokenDistance(m float64) string {
	m = math.Abs(m)
	if m < 1000 {
		hundreds := int(math.Round(m/100)) * 100
		if hundreds < 100 {
			hundreds = 100
		}
		return fmt.Sprintf("%d metres", hundreds)
	}
	km := int(math.Round(m / 1000))
	if km == 1 {
		return "1 kilometre"
	}
	return fmt.Sprintf("%d kilometres", km)
}

func spokenVertical(v float64) string {
	switch {
	case v >= 50:
		return "above"
	case v <= -50:
		return "below"
	default:
		return "level"
	}
}

// Voice receives announcements. Implementations must not block.
type Voice interface {
	Announce(Announcement)
}

// Buzzer plays a tone burst. Implementations must not block.
type Buzzer interface {
	Beep(d time.Duration)
}

type nopVoice struct{}

func (nopVoice) Announce(Announcement) {}

type nopBuzzer struct{}

func (nopBuzzer) Beep(time.Duration) {}

// Scheduler runs the alert state machines and owns the global voice gate.
type Scheduler struct {
	cfg    Config
	voice  Voice
	buzzer Buzzer
	log    *slog.Logger

	lastVoice int64
	voiced    bool
	fired     uint64
}

func NewScheduler(cfg Config, voice Voice, buzzer Buzzer, log *slog.Logger) *Scheduler {
	if voice == nil {
		voice = nopVoice{}
	}
	if buzzer == nil {
		buzzer = nopBuzzer{}
	}
	return &Scheduler{
		cfg:    cfg.withDefaults(),
		voice:  voice,
		buzzer: buzzer,
		log:    logging.OrDiscard(log),
	}
}

// Fired returns the number of alerts issued so far.
func (s *Scheduler) Fired() uint64 {
	return s.fired
}

func (s *Scheduler) isTimeToVoice(now int64) bool {
	return !s.voiced || now-s.lastVoice > s.cfg.VoiceGap.Milliseconds()
}

func (s *Scheduler) qualifies(c *Contact) bool {
	if c.AlarmLevel < c.MinAlert {
		return false
	}
	return c.AlarmLevel > AlarmNone || c.Zone >= ZoneFar
}

// Step advances every contact in byAlarm and fires at most one alert, for
// the first entry, when it is armed and the voice gate is open.
func (s *Scheduler) Step(now int64, byAlarm []Entry) (Announcement, bool) {
	for i := range byAlarm {
		s.advance(now, byAlarm[i].Contact)
	}
	if len(byAlarm) == 0 {
		return Announcement{}, false
	}
	top := byAlarm[0].Contact
	if top.AlertState != AlertArmed || !s.isTimeToVoice(now) {
		return Announcement{}, false
	}
	return s.fire(now, top), true
}

func (s *Scheduler) advance(now int64, c *Contact) {
	if !s.qualifies(c) {
		if c.AlertState != AlertIdle {
			s.log.Debug("alert episode ended", slog.String("id", c.Identity.String()), slog.String("level", c.AlarmLevel.String()))
		}
		c.AlertState = AlertIdle
		c.Alert = 0
		c.FiredLevel = AlarmNone
		return
	}
	switch c.AlertState {
	case AlertIdle:
		c.AlertState = AlertArmed
	case AlertFiring:
		c.AlertState = AlertCooling
	case AlertCooling:
		if c.AlarmLevel > c.FiredLevel || now-c.LastFired >= s.cfg.repeatWindow(c.AlarmLevel) {
			c.AlertState = AlertArmed
		}
	}
}

func (s *Scheduler) fire(now int64, c *Contact) Announcement {
	c.AlertState = AlertFiring
	a := newAnnouncement(c)
	s.voice.Announce(a)
	s.buzzer.Beep(s.cfg.BuzzDuration)

	c.Alert |= AlertVoice | AlertBuzz
	c.LastFired = now
	c.FiredLevel = c.AlarmLevel
	c.AlertState = AlertCooling
	s.lastVoice = now
	s.voiced = true
	s.fired++

	s.log.Info("traffic alert",
		slog.String("id", c.Identity.String()),
		slog.String("word", a.Word),
		slog.String("level", c.AlarmLevel.String()),
		slog.Float64("adj_dist_m", c.AdjDist),
		slog.String("phrase", a.Phrase()))
	return a
}
