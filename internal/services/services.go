// package services defines the collaborators the capture and gallery tasks talk to
//
// Remote camera device, external photo library, share target, import source
package services

import (
	"context"

	"github.com/desertthunder/mosaic/internal/models"
)

// CaptureDevice is the remote camera endpoint.
type CaptureDevice interface {
	// TriggerCapture asks the device to take a photo. Succeeds only on HTTP 200.
	TriggerCapture(ctx context.Context) (*models.Ack, error)

	// FetchImage retrieves the image produced by the last trigger.
	FetchImage(ctx context.Context) (*models.CapturedImage, error)
}

// Library is an external photo library that exported images are copied into.
type Library interface {
	// Export copies blob into the library under name. The library may rename it to avoid a collision.
	Export(ctx context.Context, name string, blob models.Blob) error

	// Name returns a short label for logs and output (e.g., "directory", "s3").
	Name() string
}

// ShareTarget hands a set of images to whatever the host uses for sharing.
type ShareTarget interface {
	Share(ctx context.Context, blobs []models.Blob) error
}

// ImportSource provides images picked from outside the repository.
type ImportSource interface {
	Images(ctx context.Context) ([]models.Blob, error)
}
