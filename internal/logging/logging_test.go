package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_WritesJSONFile(t *testing.T) {
	dir := t.TempDir()
	l, closer, err := New(Options{Level: "debug", Dir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.Debug("contact added", slog.String("id", "1:ABC123"))
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "trafficalert.slog"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		t.Fatalf("log file empty")
	}
	var rec map[string]any
	if err := json.Unmarshal(s.Bytes(), &rec); err != nil {
		t.Fatalf("log line not JSON: %v", err)
	}
	if rec["msg"] != "contact added" || rec["id"] != "1:ABC123" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_FileAndStderrBothReceive(t *testing.T) {
	var buf bytes.Buffer
	orig := stderr
	stderr = &buf
	t.Cleanup(func() { stderr = orig })

	dir := t.TempDir()
	l, closer, err := New(Options{Level: "info", Dir: dir, Stderr: true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	l.With(slog.String("component", "engine")).Info("alert fired", slog.String("word", "warning"))
	l.Debug("below level")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	text := buf.String()
	if !strings.Contains(text, "alert fired") || !strings.Contains(text, "component=engine") {
		t.Fatalf("stderr missing record: %q", text)
	}
	if strings.Contains(text, "below level") {
		t.Fatalf("debug record leaked at info level: %q", text)
	}

	b, err := os.ReadFile(filepath.Join(dir, "trafficalert.slog"))
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("file lines=%d want 1: %q", len(lines), b)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line not JSON: %v", err)
	}
	if rec["component"] != "engine" || rec["word"] != "warning" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatalf("OrDiscard(nil) returned nil")
	}
	l := slog.Default()
	if OrDiscard(l) != l {
		t.Fatalf("OrDiscard should return the given logger")
	}
}
