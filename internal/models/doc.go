// Package models defines the data that flows between the device client, the local photo repository and the
// batch coordinator.
//
//   - [Blob] : image bytes plus content type, transient between fetch/import and persist
//   - [CapturedImage] : a [Blob] fresh off the camera device
//   - [Ack] : acknowledgement of a successful capture trigger
//   - [Entry] : one persisted image, identified by its file name
//   - [Listing] : point-in-time snapshot of all entries
//   - [BatchResult], [ImportResult] : per-batch summaries with per-item errors
//
// A [Listing] is never a live view: entries may be added or removed right after it is taken, so callers reading
// an entry from a listing must tolerate it being gone.
package models
