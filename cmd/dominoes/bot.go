package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/dominoes/cmd/dominoes/shared"
	"github.com/lox/dominoes/internal/bot"
	"github.com/lox/dominoes/internal/client/commands"
	"github.com/lox/dominoes/internal/randutil"
)

// BotCmd seats one built-in bot and plays until the match ends
type BotCmd struct {
	commands.GlobalFlags
	Strategy string `default:"first" enum:"first,random,heavy" help:"Strategy: first, random or heavy"`
	Seed     *int64 `help:"Seed for the random strategy (optional)"`
}

func (c *BotCmd) Run() error {
	if c.Player == "" {
		c.Player = "bot-" + c.Strategy
	}

	ctx := shared.SetupSignalHandler(shared.SetupLogger("info"))

	player, _, logger, err := commands.SetupClient(ctx, &c.GlobalFlags)
	if err != nil {
		return err
	}
	defer player.Close()

	_, rng := randutil.Resolve(c.Seed)
	strategy, err := bot.ByName(c.Strategy, rng)
	if err != nil {
		return fmt.Errorf("choose strategy: %w", err)
	}

	err = bot.New(player, strategy, logger).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
