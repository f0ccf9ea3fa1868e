package phh_test

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/lox/pokerrooms/internal/game"
	"github.com/lox/pokerrooms/internal/phh"
	"github.com/lox/pokerrooms/poker"
)

func playedHand(t *testing.T, deal string, stacks ...int) *game.Hand {
	t.Helper()
	deck, err := poker.NewStackedDeck(poker.MustParseCards(deal)...)
	if err != nil {
		t.Fatalf("stacked deck: %v", err)
	}
	entrants := make([]game.Entrant, len(stacks))
	for i, s := range stacks {
		entrants[i] = game.Entrant{Seat: i, Identity: string(rune('a' + i)), Name: []string{"alice", "bob", "carol"}[i], Stack: s}
	}
	h, err := game.NewHand(game.HandConfig{ID: "h1", Button: 0, SmallBlind: 5, BigBlind: 10}, entrants, game.WithDeck(deck))
	if err != nil {
		t.Fatalf("NewHand: %v", err)
	}
	return h
}

func act(t *testing.T, h *game.Hand, seat int, a game.Action, amount int) {
	t.Helper()
	if _, err := h.Act(seat, a, amount); err != nil {
		t.Fatalf("seat %d %s: %v", seat, a, err)
	}
}

func TestFromHandCheckDown(t *testing.T) {
	t.Parallel()

	h := playedHand(t, "As Kc Ad Kd 2h 7s 9c 3d 4h", 1000, 1000)
	act(t, h, 0, game.Call, 0)
	act(t, h, 1, game.Check, 0)
	for range 3 {
		act(t, h, 1, game.Check, 0)
		act(t, h, 0, game.Check, 0)
	}

	now := time.Date(2026, time.March, 4, 18, 30, 5, 0, time.UTC)
	hh, err := phh.FromHand("room-1", 6, h, now)
	if err != nil {
		t.Fatalf("FromHand: %v", err)
	}

	want := []string{
		"d dh p1 KcKd",
		"d dh p2 AsAd",
		"p1 cc",
		"p2 cc",
		"d db 2h7s9c",
		"p2 cc",
		"p1 cc",
		"d db 3d",
		"p2 cc",
		"p1 cc",
		"d db 4h",
		"p2 cc",
		"p1 cc",
		"p2 sm AsAd",
		"p1 sm KcKd",
	}
	if !slices.Equal(hh.Actions, want) {
		t.Fatalf("actions:\n got %q\nwant %q", hh.Actions, want)
	}
	if !slices.Equal(hh.BlindsOrStraddles, []int{5, 10}) {
		t.Errorf("blinds = %v", hh.BlindsOrStraddles)
	}
	if !slices.Equal(hh.Seats, []int{1, 2}) {
		t.Errorf("seats = %v", hh.Seats)
	}
	if !slices.Equal(hh.FinishingStacks, []int{990, 1010}) {
		t.Errorf("finishing stacks = %v", hh.FinishingStacks)
	}
	if !slices.Equal(hh.Winnings, []int{0, 20}) {
		t.Errorf("winnings = %v", hh.Winnings)
	}
	if !slices.Equal(hh.Net(), []int{-10, 10}) {
		t.Errorf("net = %v", hh.Net())
	}
	if hh.Time != "18:30:05" || hh.Day != 4 || hh.Month != 3 || hh.Year != 2026 {
		t.Errorf("timestamp fields = %s %d/%d/%d", hh.Time, hh.Day, hh.Month, hh.Year)
	}
	if hh.Seat(1) != 1 || hh.Seat(5) != -1 {
		t.Errorf("Seat mapping wrong: %d %d", hh.Seat(1), hh.Seat(5))
	}
}

func TestFromHandAllInRunOut(t *testing.T) {
	t.Parallel()

	h := playedHand(t, "As Kc Ad Kd 2h 7s 9c 3d 4h", 300, 500)
	act(t, h, 0, game.AllIn, 0)
	act(t, h, 1, game.Call, 0)
	if !h.Complete() {
		t.Fatal("hand should run out after the call")
	}

	hh, err := phh.FromHand("room-1", 2, h, time.Now())
	if err != nil {
		t.Fatalf("FromHand: %v", err)
	}
	want := []string{
		"d dh p1 KcKd",
		"d dh p2 AsAd",
		"p1 cbr 300",
		"p2 cc",
		"d db 2h7s9c",
		"d db 3d",
		"d db 4h",
		"p2 sm AsAd",
		"p1 sm KcKd",
	}
	if !slices.Equal(hh.Actions, want) {
		t.Fatalf("actions:\n got %q\nwant %q", hh.Actions, want)
	}
	if !slices.Equal(hh.FinishingStacks, []int{0, 800}) {
		t.Errorf("finishing stacks = %v", hh.FinishingStacks)
	}
}

func TestFromHandRejectsUnfinished(t *testing.T) {
	t.Parallel()

	h := playedHand(t, "As Kc Ad Kd", 1000, 1000)
	if _, err := phh.FromHand("r", 2, h, time.Now()); err == nil {
		t.Fatal("expected error for running hand")
	}
	h.Abort()
	if _, err := phh.FromHand("r", 2, h, time.Now()); err == nil {
		t.Fatal("expected error for aborted hand")
	}
}

func TestFormatAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pos     int
		ev      game.Event
		current int
		want    string
		after   int
	}{
		{"fold", 0, game.Event{Action: game.Fold}, 10, "p1 f", 10},
		{"check", 1, game.Event{Action: game.Check}, 0, "p2 cc", 0},
		{"call", 3, game.Event{Action: game.Call, Added: 50, BetTo: 50}, 50, "p4 cc", 50},
		{"bet", 1, game.Event{Action: game.Bet, Added: 40, BetTo: 40}, 0, "p2 cbr 40", 40},
		{"raise", 0, game.Event{Action: game.Raise, Added: 110, BetTo: 120}, 40, "p1 cbr 120", 120},
		{"all-in raise", 2, game.Event{Action: game.AllIn, Added: 350, BetTo: 350}, 120, "p3 cbr 350", 350},
		{"all-in call", 2, game.Event{Action: game.AllIn, Added: 80, BetTo: 80}, 120, "p3 cc", 120},
	}

	for _, tt := range tests {
		current := tt.current
		if got := phh.FormatAction(tt.pos, tt.ev, &current); got != tt.want {
			t.Errorf("%s: got %q want %q", tt.name, got, tt.want)
		}
		if current != tt.after {
			t.Errorf("%s: street bet %d, want %d", tt.name, current, tt.after)
		}
	}
}

func TestEncodeHandHistory(t *testing.T) {
	t.Parallel()

	hand := &phh.HandHistory{
		Variant:           "NT",
		Table:             "lobby",
		SeatCount:         3,
		Seats:             []int{1, 2, 3},
		Antes:             []int{0, 0, 0},
		BlindsOrStraddles: []int{1, 2, 0},
		MinBet:            2,
		StartingStacks:    []int{200, 200, 200},
		FinishingStacks:   []int{199, 198, 203},
		Winnings:          []int{0, 0, 5},
		Actions:           []string{"d dh p1 AhKh", "d dh p2 7c2d", "d dh p3 QsJs", "p3 cbr 6", "p1 f", "p2 f"},
		Players:           []string{"alice", "bob", "carol"},
		HandID:            "hand-00042",
		Time:              "15:22:00",
		TimeZone:          "UTC",
		Day:               14,
		Month:             11,
		Year:              2025,
	}

	var buf bytes.Buffer
	if err := phh.Encode(&buf, hand); err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	want := "" +
		"variant = \"NT\"\n" +
		"table = \"lobby\"\n" +
		"seat_count = 3\n" +
		"seats = [1, 2, 3]\n" +
		"antes = [0, 0, 0]\n" +
		"blinds_or_straddles = [1, 2, 0]\n" +
		"min_bet = 2\n" +
		"starting_stacks = [200, 200, 200]\n" +
		"finishing_stacks = [199, 198, 203]\n" +
		"winnings = [0, 0, 5]\n" +
		"actions = [\"d dh p1 AhKh\", \"d dh p2 7c2d\", \"d dh p3 QsJs\", \"p3 cbr 6\", \"p1 f\", \"p2 f\"]\n" +
		"players = [\"alice\", \"bob\", \"carol\"]\n" +
		"hand = \"hand-00042\"\n" +
		"time = \"15:22:00\"\n" +
		"time_zone = \"UTC\"\n" +
		"day = 14\n" +
		"month = 11\n" +
		"year = 2025\n"

	if got := buf.String(); got != want {
		t.Fatalf("Encode output mismatch.\nGot:\n%s\nWant:\n%s", got, want)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	t.Parallel()

	h := playedHand(t, "As Kc Ad Kd 2h 7s 9c 3d 4h", 1000, 1000)
	act(t, h, 0, game.Fold, 0)

	hh, err := phh.FromHand("table-9", 2, h, time.Now())
	if err != nil {
		t.Fatalf("FromHand: %v", err)
	}

	dir := t.TempDir()
	path, err := phh.WriteFile(dir, hh)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if want := filepath.Join(dir, "table-9", "h1.phh"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	got, err := phh.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.HandID != "h1" || !slices.Equal(got.Actions, hh.Actions) || !slices.Equal(got.Winnings, []int{0, 10}) {
		t.Errorf("read back %+v", got)
	}
}

func TestDecodeRejectsNonPHH(t *testing.T) {
	t.Parallel()

	if _, err := phh.Decode(strings.NewReader("name = \"not a hand\"\n")); err == nil {
		t.Fatal("expected error for document without variant")
	}
	if _, err := phh.Decode(strings.NewReader("variant = [")); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}
