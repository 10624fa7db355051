package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"trafficalert/internal/gdl90"
	"trafficalert/internal/logging"
	"trafficalert/internal/traffic"
)

type Config struct {
	Traffic TrafficConfig `yaml:"traffic"`
	Alert   AlertConfig   `yaml:"alert"`
	Voice   VoiceConfig   `yaml:"voice"`
	Buzzer  BuzzerConfig  `yaml:"buzzer"`
	GDL90   GDL90Config   `yaml:"gdl90"`
	Log     LogConfig     `yaml:"log"`
	Sim     SimConfig     `yaml:"sim"`
}

type TrafficConfig struct {
	Expiration     time.Duration `yaml:"expiration"`
	UpdateInterval time.Duration `yaml:"update_interval"`

	AlarmZoneNoneM      float64 `yaml:"alarm_zone_none_m"`
	AlarmZoneCloseM     float64 `yaml:"alarm_zone_close_m"`
	AlarmZoneImportantM float64 `yaml:"alarm_zone_important_m"`
	AlarmZoneUrgentM    float64 `yaml:"alarm_zone_urgent_m"`
	VerticalSlope       float64 `yaml:"vertical_slope"`

	// MinAlert is one of none, low, important, urgent. "none" enables
	// advisories for traffic in the far zone.
	MinAlert string `yaml:"min_alert"`
}

type AlertConfig struct {
	VoiceGap   time.Duration `yaml:"voice_gap"`
	RepeatTick time.Duration `yaml:"repeat_tick"`
	// Repeat windows in ticks.
	RepeatLow       int           `yaml:"repeat_low"`
	RepeatImportant int           `yaml:"repeat_important"`
	RepeatUrgent    int           `yaml:"repeat_urgent"`
	BuzzDuration    time.Duration `yaml:"buzz_duration"`
}

type VoiceConfig struct {
	Enable  bool     `yaml:"enable"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type BuzzerConfig struct {
	Enable bool `yaml:"enable"`
	// GPIOPin is BCM GPIO numbering.
	GPIOPin int `yaml:"gpio_pin"`
}

type GDL90Config struct {
	Enable   bool   `yaml:"enable"`
	Dest     string `yaml:"dest"`
	ICAO     string `yaml:"icao"`
	Callsign string `yaml:"callsign"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Dir    string `yaml:"dir"`
	Stderr bool   `yaml:"stderr"`
}

type SimConfig struct {
	// Scenario is a YAML scenario script; empty disables the simulator.
	Scenario       string        `yaml:"scenario"`
	Loop           bool          `yaml:"loop"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

var linePrefix = regexp.MustCompile(`^line \d+: `)

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			msgs := make([]string, 0, len(te.Errors))
			unknown := false
			for _, m := range te.Errors {
				unknown = unknown || strings.Contains(m, "not found in type")
				msgs = append(msgs, linePrefix.ReplaceAllString(m, ""))
			}
			if unknown {
				return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(msgs, "; "))
			}
			return Config{}, fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return Config{}, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	d := traffic.DefaultConfig()

	t := &cfg.Traffic
	if t.Expiration <= 0 {
		t.Expiration = d.Expiration
	}
	if t.UpdateInterval <= 0 {
		t.UpdateInterval = d.UpdateInterval
	}
	if t.AlarmZoneNoneM == 0 {
		t.AlarmZoneNoneM = d.ZoneNone
	}
	if t.AlarmZoneCloseM == 0 {
		t.AlarmZoneCloseM = d.ZoneClose
	}
	if t.AlarmZoneImportantM == 0 {
		t.AlarmZoneImportantM = d.ZoneImportant
	}
	if t.AlarmZoneUrgentM == 0 {
		t.AlarmZoneUrgentM = d.ZoneUrgent
	}
	if t.VerticalSlope == 0 {
		t.VerticalSlope = d.VerticalSlope
	}
	if t.MinAlert == "" {
		t.MinAlert = d.MinAlert.String()
	}

	a := &cfg.Alert
	if a.VoiceGap <= 0 {
		a.VoiceGap = d.VoiceGap
	}
	if a.RepeatTick <= 0 {
		a.RepeatTick = d.RepeatTick
	}
	if a.RepeatLow == 0 {
		a.RepeatLow = d.Repeat[0]
	}
	if a.RepeatImportant == 0 {
		a.RepeatImportant = d.Repeat[1]
	}
	if a.RepeatUrgent == 0 {
		a.RepeatUrgent = d.Repeat[2]
	}
	if a.BuzzDuration <= 0 {
		a.BuzzDuration = d.BuzzDuration
	}

	if cfg.Buzzer.GPIOPin == 0 {
		cfg.Buzzer.GPIOPin = 17
	}
	if cfg.GDL90.Dest == "" {
		cfg.GDL90.Dest = "192.168.10.255:4000"
	}
	if cfg.GDL90.ICAO == "" {
		cfg.GDL90.ICAO = "F00000"
	}
	if cfg.GDL90.Callsign == "" {
		cfg.GDL90.Callsign = "TRAFFIC"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Sim.ReportInterval <= 0 {
		cfg.Sim.ReportInterval = time.Second
	}
}

func (cfg Config) validate() error {
	t := cfg.Traffic
	if t.AlarmZoneUrgentM <= 0 {
		return fmt.Errorf("traffic.alarm_zone_urgent_m must be > 0")
	}
	if t.AlarmZoneUrgentM >= t.AlarmZoneImportantM {
		return fmt.Errorf("traffic.alarm_zone_urgent_m must be < traffic.alarm_zone_important_m")
	}
	if t.AlarmZoneImportantM >= t.AlarmZoneCloseM {
		return fmt.Errorf("traffic.alarm_zone_important_m must be < traffic.alarm_zone_close_m")
	}
	if t.AlarmZoneCloseM >= t.AlarmZoneNoneM {
		return fmt.Errorf("traffic.alarm_zone_close_m must be < traffic.alarm_zone_none_m")
	}
	if t.VerticalSlope < 1 {
		return fmt.Errorf("traffic.vertical_slope must be >= 1")
	}
	if _, err := parseAlarmLevel(t.MinAlert); err != nil {
		return err
	}
	if t.UpdateInterval >= t.Expiration {
		return fmt.Errorf("traffic.update_interval must be < traffic.expiration")
	}

	a := cfg.Alert
	if a.RepeatLow < 0 || a.RepeatImportant < 0 || a.RepeatUrgent < 0 {
		return fmt.Errorf("alert.repeat_* must be >= 0 (0 selects the default)")
	}

	if cfg.Voice.Enable && strings.ContainsAny(cfg.Voice.Command, "\r\n") {
		return fmt.Errorf("voice.command contains invalid characters")
	}
	if cfg.Buzzer.Enable && cfg.Buzzer.GPIOPin < 0 {
		return fmt.Errorf("buzzer.gpio_pin must be >= 0")
	}
	if cfg.GDL90.Enable {
		if _, err := cfg.OwnshipICAO(); err != nil {
			return fmt.Errorf("gdl90.icao: %w", err)
		}
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Sim.Loop && cfg.Sim.Scenario == "" {
		return fmt.Errorf("sim.loop requires sim.scenario")
	}
	return nil
}

func parseAlarmLevel(s string) (traffic.AlarmLevel, error) {
	l, err := traffic.ParseAlarmLevel(s)
	if err != nil {
		return traffic.AlarmNone, fmt.Errorf("traffic.min_alert must be one of none, low, important, urgent")
	}
	return l, nil
}

// TrafficCore returns the core configuration. Load has validated it.
func (cfg Config) TrafficCore() traffic.Config {
	minAlert, _ := parseAlarmLevel(cfg.Traffic.MinAlert)
	return traffic.Config{
		Expiration:     cfg.Traffic.Expiration,
		UpdateInterval: cfg.Traffic.UpdateInterval,
		ZoneNone:       cfg.Traffic.AlarmZoneNoneM,
		ZoneClose:      cfg.Traffic.AlarmZoneCloseM,
		ZoneImportant:  cfg.Traffic.AlarmZoneImportantM,
		ZoneUrgent:     cfg.Traffic.AlarmZoneUrgentM,
		VerticalSlope:  cfg.Traffic.VerticalSlope,
		MinAlert:       minAlert,
		VoiceGap:       cfg.Alert.VoiceGap,
		RepeatTick:     cfg.Alert.RepeatTick,
		Repeat:         [3]int{cfg.Alert.RepeatLow, cfg.Alert.RepeatImportant, cfg.Alert.RepeatUrgent},
		BuzzDuration:   cfg.Alert.BuzzDuration,
	}
}

// OwnshipICAO parses gdl90.icao as a 24-bit address.
func (cfg Config) OwnshipICAO() (uint32, error) {
	b, err := gdl90.ParseICAOHex(cfg.GDL90.ICAO)
	if err != nil {
		return 0, err
	}
	return gdl90.ICAOToUint32(b), nil
}

func (cfg Config) LogOptions() logging.Options {
	return logging.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, Stderr: cfg.Log.Stderr}
}
