package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// maxCollisionSuffix bounds the search for a free name in a library folder.
const maxCollisionSuffix = 10000

// DirectoryLibrary exports images into a folder, the desktop stand-in for the device photo library.
//
// Exports never replace a file already in the folder: a colliding name gets a numeric suffix
// (photo_1.jpg, photo_1-1.jpg, photo_1-2.jpg, ...).
type DirectoryLibrary struct {
	dir    string
	logger *log.Logger
}

// NewDirectoryLibrary creates a library rooted at dir. The folder is created on first export.
func NewDirectoryLibrary(dir string, logger *log.Logger) *DirectoryLibrary {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &DirectoryLibrary{dir: dir, logger: logger}
}

func (l *DirectoryLibrary) Name() string { return shared.LibraryDirectory }

// Dir returns the library folder.
func (l *DirectoryLibrary) Dir() string { return l.dir }

// Export copies blob into the folder. The copy is written to a temp file and linked into place.
func (l *DirectoryLibrary) Export(ctx context.Context, name string, blob models.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %w: %q", shared.ErrExportFailed, shared.ErrInvalidIdentifier, name)
	}
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}

	tmp, err := os.CreateTemp(l.dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
	}

	stem, ext := splitName(name)
	for i := 0; i < maxCollisionSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}

		err := os.Link(tmp.Name(), filepath.Join(l.dir, candidate))
		if err == nil {
			l.logger.Debug("exported image", "name", candidate, "dir", l.dir)
			return nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %w", shared.ErrExportFailed, err)
		}
	}

	return fmt.Errorf("%w: no free name for %s", shared.ErrExportFailed, name)
}

func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// NewLibrary builds the library selected by cfg, or nil when exports are disabled.
func NewLibrary(ctx context.Context, cfg shared.LibraryConfig, logger *log.Logger) (Library, error) {
	switch cfg.Kind {
	case "", shared.LibraryNone:
		return nil, nil
	case shared.LibraryDirectory:
		return NewDirectoryLibrary(cfg.Path, logger), nil
	case shared.LibraryS3:
		library, err := NewS3Library(ctx, cfg.S3, logger)
		if err != nil {
			return nil, err
		}
		return library, nil
	default:
		return nil, fmt.Errorf("%w: unknown library kind %q", shared.ErrInvalidConfig, cfg.Kind)
	}
}
