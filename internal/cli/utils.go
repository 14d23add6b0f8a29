package cli

import (
	"github.com/urfave/cli/v2"

	appconfig "github.com/luthortech/aiops-assistant/internal/config"
	"github.com/luthortech/aiops-assistant/pkg/logger"
)

// getLogger retrieves the logger from the CLI context metadata
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata["logger"].(logger.Logger); ok {
			return log
		}
	}

	// Fallback to default logger if not found
	return logger.NewLogger(logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Service: "aiops-assistant",
	})
}

// loadConfig loads application configuration from the --config-file
// flag (when set) with environment overrides.
func loadConfig(ctx *cli.Context) (*appconfig.AppConfig, error) {
	return appconfig.Load(ctx.String("config-file"))
}
