// package tasks implements the capture pipeline and batch operations over the local gallery.
//
// Both operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"github.com/desertthunder/mosaic/internal/models"
)

// Store is the local repository as seen by the capture pipeline and batch coordinator.
//
// repositories.PhotoRepository implements it.
type Store interface {
	EnsureInitialized() error
	GenerateUniqueName(prefix, ext string) string
	Save(blob models.Blob, id string) (*models.Entry, error)
	List() models.Listing
	Read(id string) (models.Blob, error)
	Delete(id string) error
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full, skip this update
	}
}
