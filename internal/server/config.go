package server

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerrooms/internal/room"
)

// Config is the HCL configuration file. Both blocks are optional.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Table  *TableSettings  `hcl:"table,block"`
}

// ServerSettings contains process-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	LogFormat      string   `hcl:"log_format,optional"` // text or json
	LogFile        string   `hcl:"log_file,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	RoomCodes      string   `hcl:"room_codes,optional"` // any or uuid
	HandHistoryDir string   `hcl:"hand_history_dir,optional"`
	SendBuffer     int      `hcl:"send_buffer,optional"`
}

// TableSettings are the rules every room is created with. Durations use Go
// syntax, e.g. "30s".
type TableSettings struct {
	Seats           int    `hcl:"seats,optional"`
	SmallBlind      int    `hcl:"small_blind,optional"`
	BigBlind        int    `hcl:"big_blind,optional"`
	DefaultBuyIn    int    `hcl:"default_buy_in,optional"`
	MaxBuyIn        int    `hcl:"max_buy_in,optional"`
	ActionTimeout   string `hcl:"action_timeout,optional"`
	DisconnectGrace string `hcl:"disconnect_grace,optional"`
	AutoStart       bool   `hcl:"auto_start,optional"`
	NextHandDelay   string `hcl:"next_hand_delay,optional"`
	Seed            int64  `hcl:"seed,optional"`
}

var logFormats = []string{"text", "json"}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads an HCL file. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and fills in defaults.
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	s := c.Server
	if s.Address == "" {
		s.Address = ":8080"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
	if s.RoomCodes == "" {
		s.RoomCodes = "any"
	}
	if s.SendBuffer == 0 {
		s.SendBuffer = 256
	}

	def := room.DefaultConfig()
	if c.Table == nil {
		c.Table = &TableSettings{}
	}
	t := c.Table
	if t.Seats == 0 {
		t.Seats = def.Seats
	}
	if t.SmallBlind == 0 {
		t.SmallBlind = def.SmallBlind
	}
	if t.BigBlind == 0 {
		t.BigBlind = t.SmallBlind * 2
	}
	if t.DefaultBuyIn == 0 {
		t.DefaultBuyIn = t.BigBlind * 100
	}
	if t.ActionTimeout == "" {
		t.ActionTimeout = def.ActionTimeout.String()
	}
	if t.DisconnectGrace == "" {
		t.DisconnectGrace = def.DisconnectGrace.String()
	}
	if t.NextHandDelay == "" {
		t.NextHandDelay = def.NextHandDelay.String()
	}
}

// RoomConfig converts the table block into room rules.
func (c *Config) RoomConfig() (room.Config, error) {
	t := c.Table
	cfg := room.Config{
		Seats:        t.Seats,
		SmallBlind:   t.SmallBlind,
		BigBlind:     t.BigBlind,
		DefaultBuyIn: t.DefaultBuyIn,
		MaxBuyIn:     t.MaxBuyIn,
		AutoStart:    t.AutoStart,
		Seed:         t.Seed,
	}
	var err error
	if cfg.ActionTimeout, err = time.ParseDuration(t.ActionTimeout); err != nil {
		return room.Config{}, fmt.Errorf("table: action_timeout: %w", err)
	}
	if cfg.DisconnectGrace, err = time.ParseDuration(t.DisconnectGrace); err != nil {
		return room.Config{}, fmt.Errorf("table: disconnect_grace: %w", err)
	}
	if cfg.NextHandDelay, err = time.ParseDuration(t.NextHandDelay); err != nil {
		return room.Config{}, fmt.Errorf("table: next_hand_delay: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server: log_level: %w", err)
	}
	if !slices.Contains(logFormats, c.Server.LogFormat) {
		return fmt.Errorf("server: log_format must be text or json, got %q", c.Server.LogFormat)
	}
	if c.Server.RoomCodes != "any" && c.Server.RoomCodes != "uuid" {
		return fmt.Errorf("server: room_codes must be any or uuid, got %q", c.Server.RoomCodes)
	}
	if c.Server.SendBuffer < 1 {
		return fmt.Errorf("server: send_buffer must be positive, got %d", c.Server.SendBuffer)
	}
	cfg, err := c.RoomConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	return nil
}

// CodeValidator returns the room code check selected by room_codes.
func (c *Config) CodeValidator() func(string) error {
	if c.Server.RoomCodes != "uuid" {
		return nil
	}
	return func(code string) error {
		_, err := uuid.Parse(code)
		return err
	}
}
