package tasks

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
)

// CaptureState is the stage of the current or most recent capture.
type CaptureState int32

const (
	Idle CaptureState = iota
	Triggering
	Fetching
	Persisting
	Done
	Failed
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggering:
		return "triggering"
	case Fetching:
		return "fetching"
	case Persisting:
		return "persisting"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a capture.
func (s CaptureState) Terminal() bool { return s == Done || s == Failed }

// CaptureResult is returned by a successful capture.
type CaptureResult struct {
	Entry     *models.Entry // The new repository entry
	Exported  bool          // Set when the library export succeeded
	ExportErr error         // Library export failure; the capture itself still succeeded
}

// CapturePipelineOpts contains the collaborators of a [CapturePipeline].
type CapturePipelineOpts struct {
	Device  services.CaptureDevice
	Store   Store
	Library services.Library // Optional; nil disables export after capture
	Logger  *log.Logger
	Prefix  string // Identifier prefix (default: the store's)
}

// CapturePipeline runs trigger → fetch → persist as one operation.
//
// At most one capture is in flight. A second request while one is running is rejected with
// [shared.ErrCaptureInProgress] before the device is contacted.
type CapturePipeline struct {
	device  services.CaptureDevice
	store   Store
	library services.Library
	logger  *log.Logger
	prefix  string

	busy  atomic.Bool
	state atomic.Int32
}

// NewCapturePipeline creates a pipeline in the Idle state.
func NewCapturePipeline(opts CapturePipelineOpts) *CapturePipeline {
	if opts.Logger == nil {
		opts.Logger = shared.NewQuietLogger()
	}
	return &CapturePipeline{
		device:  opts.Device,
		store:   opts.Store,
		library: opts.Library,
		logger:  opts.Logger,
		prefix:  opts.Prefix,
	}
}

// State returns the stage of the running capture, or the outcome of the last one.
func (p *CapturePipeline) State() CaptureState {
	return CaptureState(p.state.Load())
}

// Busy reports whether a capture is in flight.
func (p *CapturePipeline) Busy() bool { return p.busy.Load() }

// HasLibrary reports whether captures can be exported.
func (p *CapturePipeline) HasLibrary() bool { return p.library != nil }

func (p *CapturePipeline) transition(s CaptureState) {
	p.state.Store(int32(s))
	p.logger.Debug("capture state", "state", s)
}

// Capture triggers the device, fetches the image and saves it under a new identifier.
//
// Failures are returned whole as a [shared.CaptureError]. When export is set and a library is configured the new
// entry is copied to it afterwards; an export failure is reported in [CaptureResult.ExportErr] and never fails the
// capture. The context bounds the network calls, but a sent trigger is not rescinded.
func (p *CapturePipeline) Capture(ctx context.Context, export bool, progress chan<- ProgressUpdate) (*CaptureResult, error) {
	if p.device == nil || p.store == nil {
		return nil, shared.ErrServiceUnavailable
	}
	if !p.busy.CompareAndSwap(false, true) {
		return nil, shared.ErrCaptureInProgress
	}
	defer p.busy.Store(false)

	p.transition(Triggering)
	sendProgress(progress, triggerUpdate())
	if _, err := p.device.TriggerCapture(ctx); err != nil {
		return nil, p.fail(shared.RemoteTriggerFailed, err)
	}

	p.transition(Fetching)
	sendProgress(progress, fetchUpdate())
	img, err := p.device.FetchImage(ctx)
	if err != nil {
		return nil, p.fail(shared.RemoteFetchFailed, err)
	}

	p.transition(Persisting)
	sendProgress(progress, persistUpdate(img))
	entry, err := p.persist(img)
	if err != nil {
		return nil, p.fail(shared.PersistFailed, err)
	}
	sendProgress(progress, savedUpdate(entry))

	result := &CaptureResult{Entry: entry}
	if export && p.library != nil {
		blob := *img
		blob.Name = entry.ID
		if err := p.library.Export(ctx, entry.ID, blob); err != nil {
			p.logger.Warn("library export failed", "id", entry.ID, "library", p.library.Name(), "error", err)
			result.ExportErr = err
		} else {
			result.Exported = true
		}
		sendProgress(progress, libraryExportUpdate(entry, p.library.Name(), result.ExportErr))
	}

	p.transition(Done)
	p.logger.Info("capture complete", "id", entry.ID, "bytes", entry.Size)
	return result, nil
}

func (p *CapturePipeline) persist(img *models.CapturedImage) (*models.Entry, error) {
	if err := p.store.EnsureInitialized(); err != nil {
		return nil, err
	}
	id := p.store.GenerateUniqueName(p.prefix, services.ExtensionFor(img.ContentType, ""))
	return p.store.Save(*img, id)
}

func (p *CapturePipeline) fail(kind shared.CaptureErrorKind, err error) error {
	p.transition(Failed)
	capErr := &shared.CaptureError{Kind: kind, Err: err}
	p.logger.Error("capture failed", "stage", kind, "error", err)
	return capErr
}
