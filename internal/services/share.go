package services

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/oklog/ulid/v2"
)

// ArchiveShare shares images by bundling them into one zip archive in a folder.
//
// Each call produces a new archive named share_<ulid>.zip. The archive is written under a temp name and renamed
// once complete.
type ArchiveShare struct {
	dir    string
	logger *log.Logger

	mu   sync.Mutex
	last string
}

// NewArchiveShare creates a share target writing into dir.
func NewArchiveShare(dir string, logger *log.Logger) *ArchiveShare {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &ArchiveShare{dir: dir, logger: logger}
}

// LastArchive returns the path of the most recent archive, or "" before the first share.
func (s *ArchiveShare) LastArchive() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Share writes blobs into a new archive. An empty set is rejected.
func (s *ArchiveShare) Share(ctx context.Context, blobs []models.Blob) error {
	if len(blobs) == 0 {
		return fmt.Errorf("%w: %w: nothing to share", shared.ErrShareFailed, shared.ErrInvalidInput)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrShareFailed, err)
	}

	id := ulid.Make().String()
	final := filepath.Join(s.dir, fmt.Sprintf("share_%s.zip", id))
	tmp := filepath.Join(s.dir, fmt.Sprintf(".share_%s.zip.tmp", id))

	if err := s.writeArchive(ctx, tmp, blobs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", shared.ErrShareFailed, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", shared.ErrShareFailed, err)
	}

	s.mu.Lock()
	s.last = final
	s.mu.Unlock()

	s.logger.Info("shared images", "count", len(blobs), "archive", final)
	return nil
}

func (s *ArchiveShare) writeArchive(ctx context.Context, path string, blobs []models.Blob) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	used := make(map[string]bool, len(blobs))
	now := time.Now()

	for i, blob := range blobs {
		if err := ctx.Err(); err != nil {
			zw.Close()
			f.Close()
			return err
		}

		name := archiveName(blob, i, used)
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: now})
		if err != nil {
			zw.Close()
			f.Close()
			return err
		}
		if _, err := w.Write(blob.Data); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// archiveName picks a unique entry name, preferring the blob's own name.
func archiveName(blob models.Blob, index int, used map[string]bool) string {
	name := filepath.Base(blob.Name)
	if blob.Name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("image_%03d.%s", index+1, ExtensionFor(blob.ContentType, "bin"))
	}

	stem, ext := splitName(name)
	candidate := name
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	used[candidate] = true
	return candidate
}
