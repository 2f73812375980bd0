package main

import (
	"io"

	"github.com/lox/dominoes/cmd/dominoes/shared"
	"github.com/lox/dominoes/internal/client/commands"
	"github.com/lox/dominoes/internal/tui"
)

// ClientCmd plays a seat interactively in the terminal
type ClientCmd struct {
	commands.GlobalFlags
}

func (c *ClientCmd) Run() error {
	// The terminal belongs to the UI, so signals are not logged
	ctx := shared.SetupSignalHandler(shared.NewLogger(io.Discard, "error"))

	player, cfg, logger, cleanup, err := commands.SetupClientWithFileLogging(ctx, &c.GlobalFlags)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(ctx, player, cfg.Player.Name, logger)
}
