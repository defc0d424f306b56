package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

const maxNameAttempts = 3

// ImportExternal saves each blob under a freshly generated identifier using a bounded number of parallel writers.
//
// Outcomes are recorded per input index. Entries already written are never retracted when another input fails.
// The only returned error is failure to initialize the repository; the listing is refreshed afterwards.
func (c *BatchCoordinator) ImportExternal(ctx context.Context, blobs []models.Blob, progress chan<- ProgressUpdate) (*models.ImportResult, error) {
	if err := c.store.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("failed to initialize repository: %w", err)
	}

	result := &models.ImportResult{
		BatchID:  ulid.Make().String(),
		Outcomes: make([]models.ImportOutcome, len(blobs)),
	}
	logger := c.logger.With("batch", result.BatchID)

	updates := make(chan models.ImportOutcome, len(blobs))
	g := new(errgroup.Group)
	g.SetLimit(c.workers)

	for i, blob := range blobs {
		g.Go(func() error {
			o := c.importOne(ctx, i, blob)
			result.Outcomes[i] = o
			updates <- o
			return nil
		})
	}

	go func() {
		g.Wait()
		close(updates)
	}()

	completed := 0
	for o := range updates {
		completed++
		if !o.OK() {
			logger.Warn("import item failed", "index", o.Index, "source", o.Source, "error", o.Err)
		}
		sendProgress(progress, importedUpdate(completed, len(blobs), o))
	}

	c.Refresh()
	logger.Info("import complete", "succeeded", result.Succeeded(), "failed", result.Failed())
	return result, nil
}

func (c *BatchCoordinator) importOne(ctx context.Context, index int, blob models.Blob) models.ImportOutcome {
	o := models.ImportOutcome{Index: index, Source: blob.Name}
	if err := ctx.Err(); err != nil {
		o.Err = err
		return o
	}
	if len(blob.Data) == 0 {
		o.Err = fmt.Errorf("%w: empty image", shared.ErrInvalidInput)
		return o
	}

	contentType := blob.ContentType
	if contentType == "" {
		detected, err := services.DetectImage(blob.Data)
		if err != nil {
			o.Err = err
			return o
		}
		contentType = detected
	}

	ext := services.ExtensionFor(contentType, "")
	for attempt := 0; ; attempt++ {
		entry, err := c.store.Save(blob, c.store.GenerateUniqueName("", ext))
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < maxNameAttempts {
			// Another writer on the same directory took the name first.
			continue
		}
		o.Entry, o.Err = entry, err
		return o
	}
}
