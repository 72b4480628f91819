// Command tidalbridge bridges a Tidal account onto a local HTTP API and an
// MCP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tidalbridge/tidalbridge/internal/bridge"
	"github.com/tidalbridge/tidalbridge/internal/config"
	"github.com/tidalbridge/tidalbridge/internal/coordinator"
	"github.com/tidalbridge/tidalbridge/internal/entity"
	mcpservice "github.com/tidalbridge/tidalbridge/internal/mcp/service"
	"github.com/tidalbridge/tidalbridge/internal/setup"
	"github.com/tidalbridge/tidalbridge/internal/telemetry"
	"github.com/tidalbridge/tidalbridge/internal/tidal"
	"github.com/tidalbridge/tidalbridge/internal/web"
)

func main() {
	// A local .env can stand in for exported variables.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "tidalbridge",
		Usage: "Bridge a Tidal account onto a local HTTP API and MCP server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Poll the library and serve the HTTP API",
				Action: runServe,
			},
			{
				Name:  "configure",
				Usage: "Link a Tidal account and store the config entry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reauth",
						Usage: "force a new browser authorization",
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "two-letter country code for catalog lookups",
					},
				},
				Action: runConfigure,
			},
			{
				Name:  "mcp",
				Usage: "Serve the library and playback tools over MCP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "transport",
						Value: "stdio",
						Usage: "stdio or http",
					},
				},
				Action: runMCP,
			},
			{
				Name:   "unlink",
				Usage:  "Remove the stored account entry",
				Action: runUnlink,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newStore(cfg config.Env) (*setup.Store, error) {
	if cfg.EntryPath != "" {
		return setup.NewStore(cfg.EntryPath), nil
	}
	return setup.DefaultStore()
}

func loadEntry(store *setup.Store) (*setup.Entry, error) {
	entry, err := store.Load()
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.Token == nil {
		return nil, errors.New("no account configured; run `tidalbridge configure` first")
	}
	return entry, nil
}

// buildBridge wires the client, coordinator, player, and action service for
// the stored account and primes the library once. Bad credentials fail here
// rather than on the first background tick.
func buildBridge(ctx context.Context, cfg config.Env, store *setup.Store) (*coordinator.Coordinator, *entity.Player, *bridge.Service, error) {
	entry, err := loadEntry(store)
	if err != nil {
		return nil, nil, nil, err
	}

	client := tidal.NewClient(tidal.Config{
		UserID:      entry.UserID,
		CountryCode: entry.CountryCode,
		TokenSource: store.TokenSource(ctx, entry),
	})

	coord := coordinator.New(client, coordinator.WithInterval(cfg.PollInterval))
	if _, err := coord.RefreshNow(ctx); err != nil {
		var authErr *tidal.AuthError
		if errors.As(err, &authErr) {
			return nil, nil, nil, fmt.Errorf("credentials rejected: %w; run `tidalbridge configure --reauth`", err)
		}
		log.Printf("initial refresh failed: %v", err)
	}

	player := entity.NewPlayer(client, coord)
	actions := bridge.New(client, coord, player)
	return coord, player, actions, nil
}

func runServe(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(c.Context, "tidalbridge", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutting down tracing: %v", err)
		}
	}()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	coord, player, actions, err := buildBridge(c.Context, cfg, store)
	if err != nil {
		return err
	}

	coord.Start()
	defer coord.Stop()

	addr := cfg.ListenAddr
	if addr == "" {
		addr = web.DefaultAddr
	}
	server := web.NewServer(web.ServerConfig{
		Addr:    addr,
		Library: coord,
		Player:  player,
		Actions: actions,
	})

	return server.Run()
}

func runConfigure(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	entry, err := setup.NewFlow(store).Run(c.Context, setup.FlowOptions{
		Reauth:  c.Bool("reauth"),
		Country: c.String("country"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Configured Tidal account %s (country %s)\n", entry.UserID, entry.CountryCode)
	fmt.Printf("Entry stored at %s\n", store.Path())
	return nil
}

func runMCP(c *cli.Context) error {
	// Stdout may carry the MCP protocol; logs stay on stderr with a marker.
	log.SetPrefix("[MCP] ")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord, player, actions, err := buildBridge(ctx, cfg, store)
	if err != nil {
		return err
	}

	coord.Start()
	defer coord.Stop()

	return mcpservice.Run(ctx, mcpservice.Config{
		Transport: mcpservice.TransportKind(c.String("transport")),
		HTTPAddr:  cfg.MCPAddr,
	}, mcpservice.Deps{
		Library:  coord,
		Player:   player,
		Searcher: actions,
	})
}

func runUnlink(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	entry, err := store.Load()
	if err != nil {
		return err
	}
	if entry == nil {
		fmt.Println("No account configured.")
		return nil
	}

	if err := store.Delete(); err != nil {
		return err
	}
	fmt.Printf("Removed entry for user %s (%s)\n", entry.UserID, store.Path())
	return nil
}
