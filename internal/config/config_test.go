package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"trafficalert/internal/traffic"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeTempConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(traffic.DefaultConfig(), cfg.TrafficCore()); diff != "" {
		t.Fatalf("core config (-want +got):\n%s", diff)
	}
	if cfg.GDL90.Dest != "192.168.10.255:4000" || cfg.Buzzer.GPIOPin != 17 || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Sim.ReportInterval != time.Second {
		t.Fatalf("report_interval=%s want 1s", cfg.Sim.ReportInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeTempConfig(t, `
traffic:
  expiration: 8s
  update_interval: 1s
  alarm_zone_none_m: 12000
  alarm_zone_close_m: 5000
  alarm_zone_important_m: 1500
  alarm_zone_urgent_m: 700
  vertical_slope: 4
  min_alert: none
alert:
  voice_gap: 3s
  repeat_urgent: 300
voice:
  enable: true
  command: espeak-ng
  args: ["-s", "170"]
gdl90:
  enable: true
  dest: '127.0.0.1:4000'
  icao: 'ABC123'
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	core := cfg.TrafficCore()
	want := traffic.DefaultConfig()
	want.Expiration = 8 * time.Second
	want.UpdateInterval = time.Second
	want.ZoneNone = 12000
	want.ZoneClose = 5000
	want.ZoneImportant = 1500
	want.ZoneUrgent = 700
	want.VerticalSlope = 4
	want.MinAlert = traffic.AlarmNone
	want.VoiceGap = 3 * time.Second
	want.Repeat[2] = 300
	if diff := cmp.Diff(want, core); diff != "" {
		t.Fatalf("core config (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"-s", "170"}, cfg.Voice.Args); diff != "" {
		t.Fatalf("voice args (-want +got):\n%s", diff)
	}
	id, err := cfg.OwnshipICAO()
	if err != nil || id != 0xABC123 {
		t.Fatalf("icao=%06X err=%v", id, err)
	}
}

func TestLoad_ZoneOrdering(t *testing.T) {
	cases := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "CloseBeyondNone",
			extra: "traffic:\n  alarm_zone_close_m: 11000\n",
			want:  "traffic.alarm_zone_close_m must be < traffic.alarm_zone_none_m",
		},
		{
			name:  "ImportantBeyondClose",
			extra: "traffic:\n  alarm_zone_important_m: 6000\n",
			want:  "traffic.alarm_zone_important_m must be < traffic.alarm_zone_close_m",
		},
		{
			name:  "UrgentBeyondImportant",
			extra: "traffic:\n  alarm_zone_urgent_m: 2500\n",
			want:  "traffic.alarm_zone_urgent_m must be < traffic.alarm_zone_important_m",
		},
		{
			name:  "NegativeUrgent",
			extra: "traffic:\n  alarm_zone_urgent_m: -5\n",
			want:  "traffic.alarm_zone_urgent_m must be > 0",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.extra))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_SlopeBelowOneRejected(t *testing.T) {
	_, err := Load(writeTempConfig(t, "traffic:\n  vertical_slope: 0.5\n"))
	requireErrEq(t, err, "traffic.vertical_slope must be >= 1")
}

func TestLoad_MinAlertValidated(t *testing.T) {
	_, err := Load(writeTempConfig(t, "traffic:\n  min_alert: loud\n"))
	requireErrEq(t, err, "traffic.min_alert must be one of none, low, important, urgent")
}

func TestLoad_UpdateIntervalBelowExpiration(t *testing.T) {
	_, err := Load(writeTempConfig(t, "traffic:\n  update_interval: 6s\n"))
	requireErrEq(t, err, "traffic.update_interval must be < traffic.expiration")
}

func TestLoad_NegativeRepeatRejected(t *testing.T) {
	_, err := Load(writeTempConfig(t, "alert:\n  repeat_low: -1\n"))
	requireErrEq(t, err, "alert.repeat_* must be >= 0 (0 selects the default)")
}

func TestLoad_ZeroRepeatSelectsDefault(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "alert:\n  repeat_urgent: 0\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Alert.RepeatUrgent, traffic.DefaultConfig().Repeat[2]; got != want {
		t.Fatalf("repeat_urgent=%d want %d", got, want)
	}
}

func TestLoad_NegativeGPIOPinRejected(t *testing.T) {
	_, err := Load(writeTempConfig(t, "buzzer:\n  enable: true\n  gpio_pin: -4\n"))
	requireErrEq(t, err, "buzzer.gpio_pin must be >= 0")
}

func TestLoad_BadLogLevel(t *testing.T) {
	_, err := Load(writeTempConfig(t, "log:\n  level: chatty\n"))
	requireErrEq(t, err, `log.level: invalid log level "chatty"`)
}

func TestLoad_BadOwnshipICAO(t *testing.T) {
	_, err := Load(writeTempConfig(t, "gdl90:\n  enable: true\n  icao: 'XYZ'\n"))
	requireErrEq(t, err, "gdl90.icao: icao must be 6 hex chars")
}

func TestLoad_SimLoopRequiresScenario(t *testing.T) {
	_, err := Load(writeTempConfig(t, "sim:\n  loop: true\n"))
	requireErrEq(t, err, "sim.loop requires sim.scenario")
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "gdl90:\n  dest: '127.0.0.1:4000'\n  mode: gdl90\n")
	_, err := Load(path)
	requireErrEq(t, err, "config contains unknown fields: field mode not found in type config.GDL90Config")
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
