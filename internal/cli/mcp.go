package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/local_places/internal/config"
	"github.com/lewisedginton/local_places/internal/mcpserver"
	"github.com/lewisedginton/local_places/internal/places"
	"github.com/lewisedginton/local_places/pkg/logger"
)

// MCPCommand returns the command that serves the tool set over stdio for
// MCP clients. Stdout carries the protocol, so all logging goes to stderr.
func MCPCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Serve the places tools over the Model Context Protocol on stdio",
		Action: mcpAction,
	}
}

func mcpAction(ctx *cli.Context) error {
	cfg, err := appconfig.Load(ctx.String("config-file"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logConfig := cfg.LoggerConfig("local-places-mcp")
	logConfig.Output = os.Stderr
	log := logger.NewLogger(logConfig)

	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for the MCP server")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx.Context, poolConfig)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		manager := places.NewMigrationManager(pool, log)
		if err := manager.RunMigrations(); err != nil {
			return err
		}
		if err := manager.Close(); err != nil {
			log.Warn("failed to close migration connection", logger.ErrorField(err))
		}
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := places.NewPlaceStore(pool, log)
	return mcpserver.New(store, log).Run(runCtx)
}
