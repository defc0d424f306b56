package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// DirectorySource picks every decodable image in a folder, in name order.
//
// Hidden files, subdirectories and files that are not images are skipped.
type DirectorySource struct {
	dir    string
	logger *log.Logger
}

// NewDirectorySource creates an import source reading dir.
func NewDirectorySource(dir string, logger *log.Logger) *DirectorySource {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}
	return &DirectorySource{dir: dir, logger: logger}
}

// Images reads the folder. Only failing to read the folder itself is an error.
func (s *DirectorySource) Images(ctx context.Context) ([]models.Blob, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read import directory: %w", shared.ErrInvalidInput, err)
	}

	blobs := make([]models.Blob, 0, len(entries))
	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable file", "file", name, "error", err)
			continue
		}

		contentType, err := DetectImage(data)
		if err != nil {
			s.logger.Warn("skipping non-image file", "file", name)
			continue
		}

		blobs = append(blobs, models.Blob{Name: name, Data: data, ContentType: contentType})
	}

	s.logger.Debug("collected import images", "dir", s.dir, "count", len(blobs))
	return blobs, nil
}
