package main

import (
	"fmt"

	"github.com/lox/dominoes/cmd/dominoes/shared"
	"github.com/lox/dominoes/internal/randutil"
	"github.com/lox/dominoes/internal/server"
)

// ServerCmd runs the server with HCL configuration and flag overrides
type ServerCmd struct {
	Config        string `short:"c" default:"dominoes.hcl" env:"DOMINOES_CONFIG" help:"Path to HCL configuration file"`
	Addr          string `env:"DOMINOES_ADDR" help:"HTTP address for WebSocket, stream and metrics (overrides config)"`
	LineAddr      string `env:"DOMINOES_LINE_ADDR" help:"TCP address for line clients (overrides config)"`
	Seats         int    `env:"DOMINOES_SEATS" help:"Seats per match, 2 to 4 (overrides config)"`
	SendTimeoutMs int    `help:"Milliseconds to wait on a full send queue before dropping (overrides config)"`
	Seed          *int64 `env:"DOMINOES_SEED" help:"Deterministic RNG seed for deals (optional)"`
	LogLevel      string `short:"l" env:"DOMINOES_LOG_LEVEL" help:"Log level: debug, info, warn, error (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LineAddr != "" {
		cfg.Server.LineAddress = c.LineAddr
	}
	if c.Seats != 0 {
		cfg.Server.Seats = c.Seats
	}
	if c.SendTimeoutMs != 0 {
		cfg.Server.SendTimeoutMs = c.SendTimeoutMs
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	seed, rng := randutil.Resolve(c.Seed)
	logger.Info("Using seed", "seed", seed, "deterministic", c.Seed != nil)

	srv := server.NewServer(logger, rng, cfg.Options()...)

	logger.Info("Starting dominoes server",
		"address", cfg.Server.Address,
		"line_address", cfg.Server.LineAddress,
		"seats", cfg.Server.Seats,
		"send_buffer", cfg.Server.SendBuffer,
		"send_timeout", cfg.SendTimeout())

	ctx := shared.SetupSignalHandler(logger)
	return srv.Run(ctx)
}
