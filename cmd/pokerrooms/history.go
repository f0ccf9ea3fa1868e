package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/pokerrooms/internal/phh"
)

// HistoryCmd is the root command for PHH utilities.
type HistoryCmd struct {
	Show HistoryShowCmd `cmd:"" help:"Print a readable summary of PHH hand files"`
}

// HistoryShowCmd summarises one or more .phh files.
type HistoryShowCmd struct {
	Files []string `arg:"" name:"file" type:"existingfile" help:"PHH files written by the server"`
}

func (cmd HistoryShowCmd) Run() error {
	for i, path := range cmd.Files {
		hand, err := phh.ReadFile(path)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		if err := renderHand(os.Stdout, hand); err != nil {
			return err
		}
	}
	return nil
}

func renderHand(w io.Writer, h *phh.HandHistory) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hand %s", h.HandID)
	if h.Table != "" {
		fmt.Fprintf(&b, " at %s", h.Table)
	}
	if h.Year > 0 {
		fmt.Fprintf(&b, " on %04d-%02d-%02d %s %s", h.Year, h.Month, h.Day, h.Time, h.TimeZone)
	}
	b.WriteString("\n")
	if len(h.BlindsOrStraddles) >= 2 {
		fmt.Fprintf(&b, "Blinds %d/%d\n", h.BlindsOrStraddles[0], h.BlindsOrStraddles[1])
	}

	net := h.Net()
	for pos := range h.StartingStacks {
		name := fmt.Sprintf("p%d", pos+1)
		if pos < len(h.Players) {
			name = h.Players[pos]
		}
		fmt.Fprintf(&b, "  p%d seat %d  %-12s %6d", pos+1, h.Seat(pos)+1, name, h.StartingStacks[pos])
		if pos < len(net) {
			fmt.Fprintf(&b, " -> %6d (%+d)", h.FinishingStacks[pos], net[pos])
		}
		b.WriteString("\n")
	}

	b.WriteString("Actions:\n")
	for _, a := range h.Actions {
		fmt.Fprintf(&b, "  %s\n", a)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
