package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/dominoes/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	LineAddress   string `hcl:"line_address,optional"`
	Seats         int    `hcl:"seats,optional"`
	SendBuffer    int    `hcl:"send_buffer,optional"`
	SendTimeoutMs int    `hcl:"send_timeout_ms,optional"`
	LogLevel      string `hcl:"log_level,optional"`
}

const (
	DefaultAddress     = "localhost:8080"
	DefaultLineAddress = "localhost:4000"
	DefaultSeats       = 4
	DefaultSendBuffer  = 64
	DefaultSendTimeout = time.Second
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:       DefaultAddress,
			LineAddress:   DefaultLineAddress,
			Seats:         DefaultSeats,
			SendBuffer:    DefaultSendBuffer,
			SendTimeoutMs: int(DefaultSendTimeout / time.Millisecond),
			LogLevel:      "info",
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	defaults := DefaultServerConfig().Server

	if c.Server.Address == "" {
		c.Server.Address = defaults.Address
	}
	if c.Server.LineAddress == "" {
		c.Server.LineAddress = defaults.LineAddress
	}
	if c.Server.Seats == 0 {
		c.Server.Seats = defaults.Seats
	}
	if c.Server.SendBuffer == 0 {
		c.Server.SendBuffer = defaults.SendBuffer
	}
	if c.Server.SendTimeoutMs == 0 {
		c.Server.SendTimeoutMs = defaults.SendTimeoutMs
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaults.LogLevel
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Seats < game.MinSeats || c.Server.Seats > game.MaxSeats {
		return fmt.Errorf("seats must be between %d and %d, got %d", game.MinSeats, game.MaxSeats, c.Server.Seats)
	}
	if c.Server.SendBuffer < 1 {
		return fmt.Errorf("send_buffer must be positive, got %d", c.Server.SendBuffer)
	}
	if c.Server.SendTimeoutMs < 1 {
		return fmt.Errorf("send_timeout_ms must be positive, got %d", c.Server.SendTimeoutMs)
	}
	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.Server.LogLevel)
	}
	return nil
}

// SendTimeout returns the outbound queue wait as a duration
func (c *ServerConfig) SendTimeout() time.Duration {
	return time.Duration(c.Server.SendTimeoutMs) * time.Millisecond
}

// Options converts the settings into server options
func (c *ServerConfig) Options() []Option {
	return []Option{
		WithAddress(c.Server.Address),
		WithLineAddress(c.Server.LineAddress),
		WithSeats(c.Server.Seats),
		WithSendBuffer(c.Server.SendBuffer),
		WithSendTimeout(c.SendTimeout()),
	}
}
