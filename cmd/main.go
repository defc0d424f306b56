package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	shared.ApplyEnv(config)
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	if err := config.Validate(); err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "mosaic",
		Usage:    "Capture, browse and share photos from a networked stereo camera",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrCaptureInProgress):
			logger.Warn("a capture is already in progress, try again shortly")
			os.Exit(0)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
