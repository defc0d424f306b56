package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Network errors
	ErrTransport = fmt.Errorf("device transport failed")
	ErrDecode    = fmt.Errorf("response is not an image")

	// Storage errors
	ErrWriteFailed       = fmt.Errorf("storage write failed")
	ErrNotFound          = fmt.Errorf("entry not found")
	ErrAlreadyExists     = fmt.Errorf("entry already exists")
	ErrInvalidIdentifier = fmt.Errorf("invalid identifier")

	// Capture errors
	ErrCaptureInProgress   = fmt.Errorf("capture already in progress")
	ErrRemoteTriggerFailed = fmt.Errorf("remote trigger failed")
	ErrRemoteFetchFailed   = fmt.Errorf("remote fetch failed")
	ErrPersistFailed       = fmt.Errorf("persisting capture failed")

	// Collaborator errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrExportFailed       = fmt.Errorf("library export failed")
	ErrShareFailed        = fmt.Errorf("share failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// NetworkErrorKind classifies a [NetworkError].
type NetworkErrorKind int

const (
	Transport NetworkErrorKind = iota // connectivity, timeout or non-success status
	Decode                            // body is not an image
)

func (k NetworkErrorKind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Decode:
		return "decode"
	default:
		return "unknown"
	}
}

// NetworkError is returned by the device client for every failed remote call.
type NetworkError struct {
	Kind       NetworkErrorKind
	Op         string // "trigger" or "fetch"
	StatusCode int    // zero when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches the [ErrTransport] and [ErrDecode] sentinels.
func (e *NetworkError) Is(target error) bool {
	switch e.Kind {
	case Transport:
		return target == ErrTransport
	case Decode:
		return target == ErrDecode
	}
	return false
}

// StorageErrorKind classifies a [StorageError].
type StorageErrorKind int

const (
	WriteFailed StorageErrorKind = iota
	NotFound
)

func (k StorageErrorKind) String() string {
	switch k {
	case WriteFailed:
		return "write failed"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// StorageError is returned by the local repository.
type StorageError struct {
	Kind StorageErrorKind
	ID   string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage %s for %q: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("storage %s for %q", e.Kind, e.ID)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is matches the [ErrWriteFailed] and [ErrNotFound] sentinels.
func (e *StorageError) Is(target error) bool {
	switch e.Kind {
	case WriteFailed:
		return target == ErrWriteFailed
	case NotFound:
		return target == ErrNotFound
	}
	return false
}

// NewNotFound builds a NotFound [StorageError] for id.
func NewNotFound(id string, err error) *StorageError {
	return &StorageError{Kind: NotFound, ID: id, Err: err}
}

// NewWriteFailed builds a WriteFailed [StorageError] for id.
func NewWriteFailed(id string, err error) *StorageError {
	return &StorageError{Kind: WriteFailed, ID: id, Err: err}
}

// CaptureErrorKind classifies a [CaptureError] by the stage that failed.
type CaptureErrorKind int

const (
	RemoteTriggerFailed CaptureErrorKind = iota
	RemoteFetchFailed
	PersistFailed
)

func (k CaptureErrorKind) String() string {
	switch k {
	case RemoteTriggerFailed:
		return "remote trigger failed"
	case RemoteFetchFailed:
		return "remote fetch failed"
	case PersistFailed:
		return "persist failed"
	default:
		return "unknown"
	}
}

// CaptureError is returned whole by the capture pipeline.
type CaptureError struct {
	Kind CaptureErrorKind
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("capture: %s", e.Kind)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// Is matches the stage sentinels.
func (e *CaptureError) Is(target error) bool {
	switch e.Kind {
	case RemoteTriggerFailed:
		return target == ErrRemoteTriggerFailed
	case RemoteFetchFailed:
		return target == ErrRemoteFetchFailed
	case PersistFailed:
		return target == ErrPersistFailed
	}
	return false
}

// UserMessage describes the failure for people. Trigger and fetch failures mean nothing was saved and the
// capture can be retried; a persist failure means the device took a photo that is now lost.
func (e *CaptureError) UserMessage() string {
	switch e.Kind {
	case RemoteTriggerFailed, RemoteFetchFailed:
		return "Nothing was captured. Check the camera connection and try again."
	case PersistFailed:
		return "The photo was taken but could not be saved and has been lost."
	default:
		return "Capture failed."
	}
}

// IsNotFound reports whether err is a NotFound storage error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
