package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokerrooms/internal/room"
	"github.com/lox/pokerrooms/internal/server"
)

// configFlags are shared by commands that read the HCL configuration.
type configFlags struct {
	Config   string `short:"c" default:"pokerrooms.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     int64  `help:"Deterministic shuffle seed (overrides config)"`
}

func (f configFlags) load() (*server.Config, error) {
	cfg, err := server.LoadConfig(f.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if f.Addr != "" {
		cfg.Server.Address = f.Addr
	}
	if f.LogLevel != "" {
		cfg.Server.LogLevel = f.LogLevel
	}
	if f.Seed != 0 {
		cfg.Table.Seed = f.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ServeCmd runs the WebSocket server until interrupted.
type ServeCmd struct {
	configFlags
}

func (c *ServeCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Server, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	rc, err := cfg.RoomConfig()
	if err != nil {
		return err
	}
	opts := []room.Option{room.WithCodeValidator(cfg.CodeValidator())}
	if dir := cfg.Server.HandHistoryDir; dir != "" {
		opts = append(opts, room.WithRecorder(room.DirRecorder{Dir: dir}))
	}
	manager, err := room.NewManager(rc, logger, opts...)
	if err != nil {
		return err
	}
	defer manager.Close()

	logger.Info("Starting pokerrooms",
		"version", version,
		"addr", cfg.Server.Address,
		"seats", rc.Seats,
		"stakes", fmt.Sprintf("%d/%d", rc.SmallBlind, rc.BigBlind),
		"actionTimeout", rc.ActionTimeout,
		"autoStart", rc.AutoStart,
		"handHistory", cfg.Server.HandHistoryDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(*cfg.Server, manager, logger).ListenAndServe(ctx)
}

// CheckConfigCmd validates configuration without starting the server.
type CheckConfigCmd struct {
	configFlags
}

func (c *CheckConfigCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	rc, err := cfg.RoomConfig()
	if err != nil {
		return err
	}
	return printRoomConfig(os.Stdout, cfg.Server, rc)
}

func printRoomConfig(w io.Writer, s *server.ServerSettings, rc room.Config) error {
	maxBuyIn := "unlimited"
	if rc.MaxBuyIn > 0 {
		maxBuyIn = fmt.Sprint(rc.MaxBuyIn)
	}
	_, err := fmt.Fprintf(w, `address:          %s
room codes:       %s
seats:            %d
blinds:           %d/%d
buy-in:           %d (max %s)
action timeout:   %s
disconnect grace: %s
auto start:       %t (delay %s)
`,
		s.Address, s.RoomCodes, rc.Seats, rc.SmallBlind, rc.BigBlind,
		rc.DefaultBuyIn, maxBuyIn, rc.ActionTimeout, rc.DisconnectGrace,
		rc.AutoStart, rc.NextHandDelay)
	return err
}

// newLogger builds the process logger from the server block. The returned
// func closes the log file, if any.
func newLogger(s *server.ServerSettings, stderr io.Writer) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	out, closer := stderr, func() {}
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out, closer = f, func() { _ = f.Close() }
	}

	formatter := log.TextFormatter
	if s.LogFormat == "json" {
		formatter = log.JSONFormatter
	}
	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return logger, closer, nil
}
