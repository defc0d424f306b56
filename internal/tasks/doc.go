// Package tasks runs the capture pipeline and batch operations over the local gallery with real-time progress
// reporting.
//
// # Capture
//
// [CapturePipeline.Capture] performs one trigger → fetch → persist cycle:
//
//  1. Triggering: POST to the device; failure is [shared.RemoteTriggerFailed] and the fetch never happens
//  2. Fetching: GET the image; failure is [shared.RemoteFetchFailed] and nothing is saved
//  3. Persisting: save under a new identifier; failure is [shared.PersistFailed] and the image is discarded
//  4. Optional best-effort copy to the configured library
//
// Only one capture runs at a time. A request while one is in flight fails fast with
// [shared.ErrCaptureInProgress] and never reaches the device. [CapturePipeline.State] reports the current stage
// or the outcome of the last capture.
//
// # Batch Operations
//
// [BatchCoordinator] owns the [Selection], always a subset of the last listing:
//   - [BatchCoordinator.DeleteSelected] : sequential deletes, selection cleared afterwards
//   - [BatchCoordinator.ExportSelected] : rate-limited worker pool copying entries to the library
//   - [BatchCoordinator.ShareSelected] : one hand-off of all readable entries to the share target
//   - [BatchCoordinator.ImportExternal] : parallel saves with errgroup, one outcome per input
//
// Entries that vanish mid-batch are skipped, other per-item failures are collected into the result. A batch is
// never aborted by a single item.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
