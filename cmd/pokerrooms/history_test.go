package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/pokerrooms/internal/phh"
	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/internal/server"
)

func TestRenderHandSummarisesResult(t *testing.T) {
	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "kitchen",
		Seats:             []int{2, 1},
		BlindsOrStraddles: []int{5, 10},
		StartingStacks:    []int{1000, 1000},
		FinishingStacks:   []int{990, 1010},
		Actions:           []string{"d dh p1 KcKd", "d dh p2 AsAd", "p1 f"},
		Players:           []string{"bob", "alice"},
		HandID:            "h1",
		Time:              "12:30:00",
		TimeZone:          "UTC",
		Day:               16,
		Month:             10,
		Year:              2026,
	}

	var buf bytes.Buffer
	if err := renderHand(&buf, hand); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Hand h1 at kitchen on 2026-10-16 12:30:00 UTC",
		"Blinds 5/10",
		"p1 seat 2  bob",
		"(-10)",
		"p2 seat 1  alice",
		"(+10)",
		"  p1 f\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHandWithoutResults(t *testing.T) {
	hand := &phh.HandHistory{
		StartingStacks: []int{300, 500},
		Actions:        []string{"p1 cbr 300"},
		HandID:         "h2",
	}
	var buf bytes.Buffer
	if err := renderHand(&buf, hand); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "->") {
		t.Fatalf("unfinished stacks should not be rendered:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "p2 seat 0  p2") {
		t.Fatalf("missing placeholder name:\n%s", buf.String())
	}
}

func TestHistoryShowReadsWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	path, err := phh.WriteFile(dir, &phh.HandHistory{
		Variant:         "NT",
		Table:           "t1",
		Antes:           []int{0, 0},
		StartingStacks:  []int{100, 100},
		FinishingStacks: []int{95, 105},
		Actions:         []string{"p1 f"},
		HandID:          "h3",
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (HistoryShowCmd{Files: []string{path}}).Run(); err != nil {
		t.Fatalf("show: %v", err)
	}

	bad := filepath.Join(dir, "bad.phh")
	if err := os.WriteFile(bad, []byte("hello = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := (HistoryShowCmd{Files: []string{bad}}).Run(); err == nil {
		t.Fatal("expected error for a file that is not PHH")
	}
}

func TestPrintRoomConfig(t *testing.T) {
	cfg := server.DefaultConfig()
	rc := room.DefaultConfig()
	rc.AutoStart = true

	var buf bytes.Buffer
	if err := printRoomConfig(&buf, cfg.Server, rc); err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"blinds:           5/10", "(max unlimited)", "action timeout:   30s", "auto start:       true (delay 3s)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestNewLoggerJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.log")
	settings := server.DefaultConfig().Server
	settings.LogFormat = "json"
	settings.LogFile = path

	logger, closeLog, err := newLogger(settings, os.Stderr)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	logger.Info("Room created", "room", "abc")
	logger.Debug("Hidden at info level")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"room":"abc"`) {
		t.Fatalf("expected a JSON log line, got %q", line)
	}
	if strings.Contains(line, "Hidden") {
		t.Fatalf("debug line written at info level: %q", line)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	settings := server.DefaultConfig().Server
	settings.LogLevel = "shouty"
	if _, _, err := newLogger(settings, os.Stderr); err == nil {
		t.Fatal("expected error")
	}
}
