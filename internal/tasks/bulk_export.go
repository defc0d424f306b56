package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"
)

type exportJob struct {
	id string
}

type exportOutcome struct {
	id      string
	skipped bool
	err     error
}

// ExportSelected copies every selected entry to the library with a rate-limited worker pool.
//
// Entries already gone are skipped and other failures are collected per item. The selection is kept. When a
// manifest directory is configured an export manifest is written there; failing to write it is logged, not
// counted against the batch.
func (c *BatchCoordinator) ExportSelected(ctx context.Context, progress chan<- ProgressUpdate) (models.BatchResult, error) {
	result := models.BatchResult{Operation: "export", BatchID: ulid.Make().String()}
	if c.library == nil {
		return result, fmt.Errorf("%w: no library configured", shared.ErrServiceUnavailable)
	}

	ids := c.Selection().IDs()
	if len(ids) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(c.rateLimit), 1)
	jobs := make(chan exportJob, len(ids))
	outcomes := make(chan exportOutcome, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < min(c.workers, len(ids)); i++ {
		wg.Add(1)
		go c.exportWorker(ctx, &wg, limiter, jobs, outcomes)
	}

	for _, id := range ids {
		jobs <- exportJob{id: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	exported := make([]string, 0, len(ids))
	completed := 0
	for o := range outcomes {
		completed++
		switch {
		case o.skipped:
			result.Skipped++
			sendProgress(progress, skippedUpdate(ExportItems, completed, len(ids), o.id))
		case o.err != nil:
			result.Failed++
			result.Errors = append(result.Errors, models.ItemError{ID: o.id, Err: o.err})
			sendProgress(progress, itemUpdate(ExportItems, completed, len(ids), o.id, o.err))
		default:
			result.Succeeded++
			exported = append(exported, o.id)
			sendProgress(progress, itemUpdate(ExportItems, completed, len(ids), o.id, nil))
		}
	}

	c.logger.Info("exported selection", "batch", result.BatchID, "library", c.library.Name(),
		"succeeded", result.Succeeded, "skipped", result.Skipped, "failed", result.Failed)

	if c.manifestDir != "" {
		path := filepath.Join(c.manifestDir, fmt.Sprintf("export_%s.json", result.BatchID))
		manifest := formatter.NewExportManifest(result, c.library.Name(), exported)
		if err := formatter.WriteExportManifest(manifest, path); err != nil {
			c.logger.Warn("failed to write export manifest", "path", path, "error", err)
		}
	}

	return result, nil
}

// exportWorker drains jobs until the channel closes. Once ctx is done the remaining jobs fail with its error.
func (c *BatchCoordinator) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	outcomes chan<- exportOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			outcomes <- exportOutcome{id: job.id, err: err}
			continue
		}
		outcomes <- c.exportOne(ctx, job.id)
	}
}

func (c *BatchCoordinator) exportOne(ctx context.Context, id string) exportOutcome {
	blob, err := c.store.Read(id)
	if shared.IsNotFound(err) {
		return exportOutcome{id: id, skipped: true}
	}
	if err != nil {
		return exportOutcome{id: id, err: err}
	}

	if err := c.library.Export(ctx, id, blob); err != nil {
		return exportOutcome{id: id, err: err}
	}
	return exportOutcome{id: id}
}
