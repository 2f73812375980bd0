package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/dominoes/internal/client"
)

// GlobalFlags holds common configuration for all client commands
type GlobalFlags struct {
	Config    string `short:"c" default:"dominoes-client.hcl" help:"Path to HCL configuration file"`
	Server    string `short:"s" env:"DOMINOES_SERVER" help:"Server URL to connect to (overrides config)"`
	Transport string `short:"t" help:"Transport to play over: websocket or stream (overrides config)"`
	Player    string `short:"p" env:"DOMINOES_PLAYER" help:"Player name (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	LogFile   string `help:"Log file path (overrides config)"`
}

// LoadConfig reads the configuration file and applies command line overrides
func LoadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Transport != "" {
		cfg.Server.Transport = flags.Transport
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}

	return cfg, nil
}

// SetupClient connects a player logging to stderr
func SetupClient(ctx context.Context, flags *GlobalFlags) (client.Player, *client.ClientConfig, *log.Logger, error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	return setupClientConfigured(ctx, cfg, os.Stderr, nil)
}

// SetupClientWithFileLogging connects a player logging to the configured
// file, for when the terminal belongs to the UI
func SetupClientWithFileLogging(ctx context.Context, flags *GlobalFlags) (client.Player, *client.ClientConfig, *log.Logger, func(), error) {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// Overwrite each run
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	player, cfg, logger, err := setupClientConfigured(ctx, cfg, logFile, os.Stdin)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = player.Close()
		_ = logFile.Close()
	}
	return player, cfg, logger, cleanup, nil
}

// setupClientConfigured connects with an already loaded config. When prompt
// is set and no name is configured, the name is read from it.
func setupClientConfigured(ctx context.Context, cfg *client.ClientConfig, logWriter io.Writer, prompt io.Reader) (client.Player, *client.ClientConfig, *log.Logger, error) {
	if cfg.Player.Name == "" && prompt != nil {
		fmt.Print("Enter your player name: ")
		var input string
		_, _ = fmt.Fscanln(prompt, &input)
		cfg.Player.Name = strings.TrimSpace(input)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := NewLogger(logWriter, cfg.UI.LogLevel)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()

	player, err := client.Dial(dialCtx, cfg.Server.Transport, cfg.Server.URL, cfg.Player.Name, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	return player, cfg, logger, nil
}

// NewLogger builds a logger at the named level, defaulting to warn
func NewLogger(w io.Writer, level string) *log.Logger {
	logger := log.New(w)
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
