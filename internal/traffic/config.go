package traffic

import "time"

// Defaults. Config exposes them so a device can tune them without changing
// behavior when left at zero.
const (
	EntryExpirationTime = 5 * time.Second
	UpdateInterval      = 2 * time.Second

	AlarmZoneNone      = 10000.0 // metres
	AlarmZoneClose     = 6000.0
	AlarmZoneImportant = 2000.0
	AlarmZoneUrgent    = 1000.0

	VerticalSlope = 5.0

	VoiceGap     = 2000 * time.Millisecond
	RepeatTick   = 10 * time.Millisecond
	Alarm1Repeat = 600 // ticks
	Alarm2Repeat = 400
	Alarm3Repeat = 200
	BuzzDuration = 100 * time.Millisecond
)

type Config struct {
	// Expiration drops a contact that has not been refreshed for this long.
	Expiration time.Duration
	// UpdateInterval is the period of the update loop. It leaves the rest of
	// the device loop to the display refresh.
	UpdateInterval time.Duration

	ZoneNone      float64
	ZoneClose     float64
	ZoneImportant float64
	ZoneUrgent    float64
	VerticalSlope float64

	// MinAlert is assigned to new contacts.
	MinAlert AlarmLevel

	VoiceGap   time.Duration
	RepeatTick time.Duration
	// Repeat holds the repeat windows in ticks for AlarmLow, AlarmImportant
	// and AlarmUrgent.
	Repeat       [3]int
	BuzzDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Expiration:     EntryExpirationTime,
		UpdateInterval: UpdateInterval,
		ZoneNone:       AlarmZoneNone,
		ZoneClose:      AlarmZoneClose,
		ZoneImportant:  AlarmZoneImportant,
		ZoneUrgent:     AlarmZoneUrgent,
		VerticalSlope:  VerticalSlope,
		MinAlert:       AlarmLow,
		VoiceGap:       VoiceGap,
		RepeatTick:     RepeatTick,
		Repeat:         [3]int{Alarm1Repeat, Alarm2Repeat, Alarm3Repeat},
		BuzzDuration:   BuzzDuration,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Expiration <= 0 {
		c.Expiration = d.Expiration
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = d.UpdateInterval
	}
	if c.ZoneNone <= 0 {
		c.ZoneNone = d.ZoneNone
	}
	if c.ZoneClose <= 0 {
		c.ZoneClose = d.ZoneClose
	}
	if c.ZoneImportant <= 0 {
		c.ZoneImportant = d.ZoneImportant
	}
	if c.ZoneUrgent <= 0 {
		c.ZoneUrgent = d.ZoneUrgent
	}
	if c.VerticalSlope < 1 {
		c.VerticalSlope = d.VerticalSlope
	}
	c.MinAlert = clampAlarm(c.MinAlert)
	if c.VoiceGap <= 0 {
		c.VoiceGap = d.VoiceGap
	}
	if c.RepeatTick <= 0 {
		c.RepeatTick = d.RepeatTick
	}
	for i := range c.Repeat {
		if c.Repeat[i] <= 0 {
			c.Repeat[i] = d.Repeat[i]
		}
	}
	if c.BuzzDuration <= 0 {
		c.BuzzDuration = d.BuzzDuration
	}
	return c
}

// repeatWindow returns the repeat suppression window in ms for level.
// Advisories share the AlarmLow window.
func (c Config) repeatWindow(level AlarmLevel) int64 {
	i := int(level) - 1
	if i < 0 {
		i = 0
	}
	if i > 2 {
		i = 2
	}
	return int64(c.Repeat[i]) * c.RepeatTick.Milliseconds()
}
