package main

import (
	"context"
	"errors"

	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Capture triggers the device once and saves the photo.
func (r *Runner) Capture(ctx context.Context, cmd *cli.Command) error {
	export := cmd.Bool("export")
	asJSON := cmd.Bool("json")

	var library services.Library
	if export {
		var err error
		if library, err = r.resolveLibrary(ctx); err != nil {
			return err
		}
		if library == nil {
			r.logger.Warn("no library configured, skipping export")
		}
	}

	var (
		result *tasks.CaptureResult
		err    error
	)
	pipeline := r.pipeline(library)
	if asJSON {
		result, err = pipeline.Capture(ctx, export, nil)
	} else {
		r.writePlain("Capturing from %s\n", r.config.Device.BaseURL)
		r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
			result, err = pipeline.Capture(ctx, export, progress)
		})
	}

	if err != nil {
		var captureErr *shared.CaptureError
		if errors.As(err, &captureErr) {
			r.writePlain("✗ %s\n", captureErr.UserMessage())
		}
		return err
	}

	if asJSON {
		return r.writeJSON(result.Entry, true)
	}

	r.writePlain("✓ Saved %s (%s)\n", result.Entry.ID, shared.HumanSize(result.Entry.Size))
	r.writePlain("  %s\n", result.Entry.Path)
	switch {
	case result.Exported:
		r.writePlain("✓ Exported to %s\n", library.Name())
	case result.ExportErr != nil:
		r.writePlain("✗ Export failed: %v\n", result.ExportErr)
	}
	return nil
}
