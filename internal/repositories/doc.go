// Package repositories implements the local photo repository: a flat directory of independent image files.
//
// Key Implementations:
//   - [PhotoRepository] : create, list, read, delete and stat entries keyed by file name
//   - [NameGenerator] : `<prefix>_<millis>.<ext>` names with strictly increasing tokens
//
// There is no manifest or index file; the directory listing is the index. Saves go to a hidden temp file in the
// same directory and are published with a no-clobber link, so listings never show partial files and an existing
// entry is never overwritten. No locking spans entries because no invariant spans entries.
//
// Errors are [shared.StorageError] values: NotFound when an entry is gone (batch callers skip and continue) and
// WriteFailed for I/O failures.
package repositories
