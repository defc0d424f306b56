package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// GalleryList prints the photos in the repository as a table, JSON or CSV.
func (r *Runner) GalleryList(ctx context.Context, cmd *cli.Command) error {
	listing := r.coordinator(nil, "").Refresh()

	switch {
	case cmd.Bool("json"):
		data, err := formatter.ListingToJSON(listing)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	case cmd.Bool("csv"):
		data, err := formatter.ListingToCSV(listing)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	default:
		return r.writePlain("%s", formatter.ListingToText(listing))
	}
}

// GalleryShow prints one photo's details and optionally opens it.
func (r *Runner) GalleryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: photo id", shared.ErrMissingArgument)
	}

	entry, err := r.store.Stat(id)
	if err != nil {
		return err
	}

	r.writePlain("%s", formatter.EntryDetail(*entry))
	if cmd.Bool("open") {
		return shared.OpenPath(entry.Path)
	}
	return nil
}

// GalleryDelete deletes the photos named on the command line.
func (r *Runner) GalleryDelete(ctx context.Context, cmd *cli.Command) error {
	c := r.coordinator(nil, "")
	if err := r.selectFromArgs(c, cmd, false); err != nil {
		return err
	}

	var result models.BatchResult
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		result = c.DeleteSelected(ctx, progress)
	})

	return r.writePlain("%s", formatter.BatchSummary(result))
}

// GalleryExport copies photos to the configured library.
func (r *Runner) GalleryExport(ctx context.Context, cmd *cli.Command) error {
	library, err := r.resolveLibrary(ctx)
	if err != nil {
		return err
	}
	if library == nil {
		return fmt.Errorf("%w: set library.kind in %s", shared.ErrServiceUnavailable, defaultConfigPath)
	}

	c := r.coordinator(library, cmd.String("manifest"))
	if err := r.selectFromArgs(c, cmd, true); err != nil {
		return err
	}

	var result models.BatchResult
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		result, err = c.ExportSelected(ctx, progress)
	})
	if err != nil {
		return err
	}

	r.writePlain("%s", formatter.BatchSummary(result))
	if dir := cmd.String("manifest"); dir != "" {
		r.writePlain("Manifest written to %s\n", dir)
	}
	return nil
}

// GalleryShare bundles photos into one share archive.
func (r *Runner) GalleryShare(ctx context.Context, cmd *cli.Command) error {
	c := r.coordinator(nil, "")
	if err := r.selectFromArgs(c, cmd, true); err != nil {
		return err
	}

	var (
		result models.BatchResult
		err    error
	)
	r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
		result, err = c.ShareSelected(ctx, progress)
	})

	r.writePlain("%s", formatter.BatchSummary(result))
	if err != nil {
		return err
	}

	if archive, ok := r.share.(*services.ArchiveShare); ok && archive.LastArchive() != "" {
		r.writePlain("✓ Archive: %s\n", archive.LastArchive())
	}
	return nil
}

// GalleryImport copies every image in a directory into the repository.
func (r *Runner) GalleryImport(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return fmt.Errorf("%w: source directory", shared.ErrMissingArgument)
	}

	blobs, err := services.NewDirectorySource(dir, r.logger).Images(ctx)
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		return r.writePlain("No images found in %s\n", dir)
	}

	c := r.coordinator(nil, "")
	asJSON := cmd.Bool("json")

	var result *models.ImportResult
	if asJSON {
		result, err = c.ImportExternal(ctx, blobs, nil)
	} else {
		r.withProgress(func(progress chan<- tasks.ProgressUpdate) {
			result, err = c.ImportExternal(ctx, blobs, progress)
		})
	}
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result, true)
	}
	return r.writePlain("%s", formatter.ImportSummary(*result))
}

// selectFromArgs selects the ids given as arguments, or everything when allowAll is set and --all was passed.
func (r *Runner) selectFromArgs(c *tasks.BatchCoordinator, cmd *cli.Command, allowAll bool) error {
	listing := c.Refresh()

	if allowAll && cmd.Bool("all") {
		if c.SelectAll() == 0 {
			return fmt.Errorf("%w: the gallery is empty", shared.ErrInvalidArgument)
		}
		return nil
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one photo id", shared.ErrMissingArgument)
	}
	for _, id := range ids {
		if !listing.Contains(id) {
			r.logger.Warn("no such photo", "id", id)
		}
	}
	if c.Select(ids...) == 0 {
		return fmt.Errorf("%w: none of the given photos exist", shared.ErrInvalidArgument)
	}
	return nil
}
