package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/oklog/ulid/v2"
)

// Selection is an immutable snapshot of the identifiers chosen for a batch action, in identifier order.
type Selection struct {
	ids []string
}

func newSelection(set map[string]struct{}) Selection {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return Selection{ids: ids}
}

// IDs returns a copy of the selected identifiers.
func (s Selection) IDs() []string { return slices.Clone(s.ids) }

// Len returns the number of selected identifiers.
func (s Selection) Len() int { return len(s.ids) }

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool { return len(s.ids) == 0 }

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// BatchCoordinatorOpts contains configuration for a [BatchCoordinator].
type BatchCoordinatorOpts struct {
	Store       Store
	Library     services.Library     // Export target; nil makes ExportSelected fail with ErrServiceUnavailable
	Share       services.ShareTarget // Share target; nil makes ShareSelected fail with ErrServiceUnavailable
	Logger      *log.Logger
	Workers     int     // Concurrent workers for export and import (default: 4, max: 16)
	RateLimit   float64 // Export items per second (default: 20)
	ManifestDir string  // When set, ExportSelected writes a manifest here
}

// BatchCoordinator owns the working Selection over the last repository listing and runs bulk actions on it.
//
// Callers read snapshots ([BatchCoordinator.Listing], [BatchCoordinator.Selection]) and issue commands; the
// Selection is always a subset of the last listing.
type BatchCoordinator struct {
	store       Store
	library     services.Library
	share       services.ShareTarget
	logger      *log.Logger
	workers     int
	rateLimit   float64
	manifestDir string

	mu       sync.Mutex
	listing  models.Listing
	selected map[string]struct{}
}

// NewBatchCoordinator creates a coordinator with an empty listing. Call Refresh to load the repository.
func NewBatchCoordinator(opts BatchCoordinatorOpts) *BatchCoordinator {
	if opts.Logger == nil {
		opts.Logger = shared.NewQuietLogger()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 16 {
		opts.Workers = 16
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}

	return &BatchCoordinator{
		store:       opts.Store,
		library:     opts.Library,
		share:       opts.Share,
		logger:      opts.Logger,
		workers:     opts.Workers,
		rateLimit:   opts.RateLimit,
		manifestDir: opts.ManifestDir,
		selected:    make(map[string]struct{}),
	}
}

// Refresh re-lists the repository and drops selected identifiers that are gone.
func (c *BatchCoordinator) Refresh() models.Listing {
	listing := c.store.List()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.listing = listing
	for id := range c.selected {
		if !listing.Contains(id) {
			delete(c.selected, id)
			c.logger.Debug("dropped vanished selection", "id", id)
		}
	}
	return listing
}

// Listing returns the last listing.
func (c *BatchCoordinator) Listing() models.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listing
}

// Selection returns a snapshot of the current selection.
func (c *BatchCoordinator) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return newSelection(c.selected)
}

// Toggle adds or removes id and reports whether it is selected afterwards. Identifiers absent from the last
// listing are ignored.
func (c *BatchCoordinator) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listing.Contains(id) {
		return false
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
		return false
	}
	c.selected[id] = struct{}{}
	return true
}

// Select adds every listed id in ids and returns how many are selected afterwards.
func (c *BatchCoordinator) Select(ids ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		if c.listing.Contains(id) {
			c.selected[id] = struct{}{}
		}
	}
	return len(c.selected)
}

// SelectAll selects every entry in the last listing.
func (c *BatchCoordinator) SelectAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.listing.Entries {
		c.selected[e.ID] = struct{}{}
	}
	return len(c.selected)
}

// Cancel clears the selection.
func (c *BatchCoordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.selected)
}

// DeleteSelected deletes every selected entry.
//
// Entries already gone are skipped; other failures are collected. The selection is cleared whatever the outcome
// and the listing is refreshed.
func (c *BatchCoordinator) DeleteSelected(ctx context.Context, progress chan<- ProgressUpdate) models.BatchResult {
	ids := c.Selection().IDs()
	result := models.BatchResult{Operation: "delete", BatchID: ulid.Make().String()}

	for i, id := range ids {
		if ctx.Err() != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.ItemError{ID: id, Err: ctx.Err()})
			continue
		}

		err := c.store.Delete(id)
		switch {
		case err == nil:
			result.Succeeded++
			sendProgress(progress, itemUpdate(DeleteItems, i+1, len(ids), id, nil))
		case shared.IsNotFound(err):
			result.Skipped++
			sendProgress(progress, skippedUpdate(DeleteItems, i+1, len(ids), id))
		default:
			result.Failed++
			result.Errors = append(result.Errors, models.ItemError{ID: id, Err: err})
			sendProgress(progress, itemUpdate(DeleteItems, i+1, len(ids), id, err))
		}
	}

	c.Cancel()
	c.Refresh()

	c.logger.Info("deleted selection", "batch", result.BatchID,
		"succeeded", result.Succeeded, "skipped", result.Skipped, "failed", result.Failed)
	return result
}

// ShareSelected reads every selected entry and hands the readable ones to the share target in one call.
//
// Entries already gone are skipped. If the share target fails, the error is returned and every blob handed to it
// counts as failed. The selection is kept.
func (c *BatchCoordinator) ShareSelected(ctx context.Context, progress chan<- ProgressUpdate) (models.BatchResult, error) {
	result := models.BatchResult{Operation: "share", BatchID: ulid.Make().String()}
	if c.share == nil {
		return result, shared.ErrServiceUnavailable
	}

	ids := c.Selection().IDs()
	blobs := make([]models.Blob, 0, len(ids))
	read := make([]string, 0, len(ids))

	for i, id := range ids {
		blob, err := c.store.Read(id)
		switch {
		case err == nil:
			blobs = append(blobs, blob)
			read = append(read, id)
			sendProgress(progress, itemUpdate(ShareItems, i+1, len(ids), id, nil))
		case shared.IsNotFound(err):
			result.Skipped++
			sendProgress(progress, skippedUpdate(ShareItems, i+1, len(ids), id))
		default:
			result.Failed++
			result.Errors = append(result.Errors, models.ItemError{ID: id, Err: err})
			sendProgress(progress, itemUpdate(ShareItems, i+1, len(ids), id, err))
		}
	}

	if len(blobs) == 0 {
		return result, nil
	}

	if err := c.share.Share(ctx, blobs); err != nil {
		shareErr := errors.Join(shared.ErrShareFailed, err)
		if errors.Is(err, shared.ErrShareFailed) {
			shareErr = err
		}
		result.Failed += len(read)
		for _, id := range read {
			result.Errors = append(result.Errors, models.ItemError{ID: id, Err: shareErr})
		}
		c.logger.Error("share failed", "batch", result.BatchID, "error", err)
		return result, shareErr
	}

	result.Succeeded = len(read)
	c.logger.Info("shared selection", "batch", result.BatchID, "count", result.Succeeded)
	return result, nil
}
