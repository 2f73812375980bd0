package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the domino server"`
	Client  ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Bot     BotCmd           `cmd:"" help:"Run a built-in bot"`
	Spawn   SpawnCmd         `cmd:"" help:"Run a server with bots seated for testing/demos"`
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("dominoes"),
		kong.Description("Four-seat domino server for human and bot players"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
