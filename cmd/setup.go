package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/urfave/cli/v3"
)

const staleTempAge = time.Hour

// Setup writes config.toml from the embedded template when it is missing and initializes the photo directory.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	shared.ApplyEnv(config)

	if err := config.Validate(); err != nil {
		return err
	}

	repo := repositories.NewPhotoRepository(repositories.RepositoryOpts{
		Dir:       config.Repository.Path,
		Prefix:    config.Repository.Prefix,
		Extension: config.Repository.Extension,
		Logger:    r.logger,
	})

	r.logger.Info("initializing photo directory", "path", repo.Dir())
	if err := repo.EnsureInitialized(); err != nil {
		return fmt.Errorf("failed to initialize photo directory: %w", err)
	}
	if removed := repo.SweepTemp(staleTempAge); removed > 0 {
		r.logger.Info("removed interrupted writes", "count", removed)
	}

	r.writePlain("✓ Config: %s\n", configPath)
	r.writePlain("✓ Photos: %s (%d)\n", repo.Dir(), repo.List().Len())
	r.writePlain("  Device: %s\n", config.Device.BaseURL)
	r.writePlain("  Library: %s\n", libraryLabel(config.Library))
	return nil
}

func libraryLabel(cfg shared.LibraryConfig) string {
	switch cfg.Kind {
	case shared.LibraryDirectory:
		return fmt.Sprintf("directory %s", cfg.Path)
	case shared.LibraryS3:
		return fmt.Sprintf("s3 %s/%s", cfg.S3.Endpoint, cfg.S3.Bucket)
	default:
		return "none"
	}
}
