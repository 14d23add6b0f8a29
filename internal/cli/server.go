// Package cli defines the assistant's command line interface.
package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/luthortech/aiops-assistant/internal/server"
	"github.com/luthortech/aiops-assistant/pkg/logger"
)

// ServerCommand returns a command for server operations
func ServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Server operations",
		Subcommands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Start the API server",
				Action: serverStartAction,
			},
		},
	}
}

func serverStartAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load config", logger.ErrorField(err))
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", logger.ErrorField(err))
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log = logger.NewLogger(logger.Config{
		Level:   cfg.GetLogLevel(),
		Format:  cfg.Common.LogFormat,
		Service: cfg.ServiceName,
	})
	cfg.LogConfig(log)

	s, err := server.New(ctx.Context, cfg, log)
	if err != nil {
		log.Error("Failed to create server", logger.ErrorField(err))
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := s.Run(); err != nil {
		log.Error("Server error", logger.ErrorField(err))
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
