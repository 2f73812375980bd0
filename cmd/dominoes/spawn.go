package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dominoes/cmd/dominoes/shared"
	"github.com/lox/dominoes/internal/bot"
	"github.com/lox/dominoes/internal/client"
	"github.com/lox/dominoes/internal/randutil"
	"github.com/lox/dominoes/internal/server"
)

// SpawnCmd starts a server and seats in-process bots against it, leaving
// open seats for humans
type SpawnCmd struct {
	Addr      string `default:"localhost:0" help:"HTTP address, defaults to a random port on localhost"`
	LineAddr  string `default:"localhost:0" help:"TCP address for line clients"`
	Seats     int    `default:"4" help:"Seats per match"`
	Spec      string `default:"first:4" help:"Bot specification (e.g. first:2,random:1,heavy:1)"`
	Transport string `default:"websocket" enum:"websocket,stream" help:"Transport the bots play over"`
	Seed      *int64 `help:"Seed for deals and random bots (optional)"`
	Output    string `default:"logs" enum:"logs,pretty" help:"Output format: logs (all logs) or pretty (match commentary)"`
	LogLevel  string `short:"l" default:"info" help:"Log level (debug|info|warn|error)"`
}

// botSpec is one entry of the --spec list
type botSpec struct {
	strategy string
	count    int
}

func parseSpec(spec string) ([]botSpec, error) {
	var specs []botSpec
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, n, ok := strings.Cut(part, ":")
		if !slices.Contains(bot.Strategies, name) {
			return nil, fmt.Errorf("unknown strategy %q, expected one of %s", name, strings.Join(bot.Strategies, ", "))
		}
		count := 1
		if ok {
			var err error
			count, err = strconv.Atoi(n)
			if err != nil || count < 1 {
				return nil, fmt.Errorf("invalid bot count in %q", part)
			}
		}
		specs = append(specs, botSpec{strategy: name, count: count})
	}
	return specs, nil
}

func (c *SpawnCmd) Run() error {
	level := c.LogLevel
	var opts []server.Option
	if c.Output == "pretty" {
		// Commentary goes to stdout, so keep stderr quiet
		level = "warn"
		color := termenv.EnvColorProfile() != termenv.Ascii
		opts = append(opts, server.WithMonitor(server.NewPrettyMonitor(os.Stdout, color)))
	}
	logger := shared.SetupLogger(level)

	specs, err := parseSpec(c.Spec)
	if err != nil {
		return err
	}

	seed, rng := randutil.Resolve(c.Seed)
	logger.Info("Using seed", "seed", seed)

	httpLn, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.Addr, err)
	}
	lineLn, err := net.Listen("tcp", c.LineAddr)
	if err != nil {
		_ = httpLn.Close()
		return fmt.Errorf("listen on %s: %w", c.LineAddr, err)
	}

	srv := server.NewServer(logger, rng, append(opts, server.WithSeats(c.Seats))...)
	serverURL := "http://" + httpLn.Addr().String()
	logger.Info("Spawned server", "url", serverURL, "line", lineLn.Addr().String())
	if c.Output == "pretty" {
		fmt.Printf("Server %s, line clients on %s, seed %d\n", serverURL, lineLn.Addr(), seed)
	}

	ctx := shared.SetupSignalHandler(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ctx, httpLn, lineLn)
	})

	n := 0
	for _, spec := range specs {
		for range spec.count {
			n++
			name := fmt.Sprintf("%s-%d", spec.strategy, n)

			// Each bot gets its own stream derived from the seed
			strategy, _ := bot.ByName(spec.strategy, randutil.New(seed+int64(n)))

			g.Go(func() error {
				player, err := client.Dial(ctx, c.Transport, serverURL, name, logger)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				defer player.Close()

				err = bot.New(player, strategy, logger.With("bot", name)).Run(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}
	}

	logger.Info("Bots seated", "count", n, "transport", c.Transport)
	return g.Wait()
}
