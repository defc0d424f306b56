package repositories

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

const (
	DefaultPrefix    = "photo"
	DefaultExtension = "jpg"

	tempSuffix = ".tmp"
)

// RepositoryOpts contains configuration for a [PhotoRepository].
type RepositoryOpts struct {
	Dir       string         // Backing directory, created by EnsureInitialized
	Prefix    string         // Name prefix (default: photo)
	Extension string         // Name extension (default: jpg)
	Logger    *log.Logger    // Defaults to a quiet logger
	Names     *NameGenerator // Defaults to a generator on the wall clock

	// WrapWriter wraps the temp file writer during Save. Tests use it to simulate a full disk.
	WrapWriter func(io.Writer) io.Writer
}

// PhotoRepository stores images as independent files in one flat directory.
//
// The directory listing is the index. Files are published with a no-clobber link from a hidden temp file in the
// same directory, so a reader that can open an identifier always sees complete bytes and an existing identifier
// is never overwritten.
type PhotoRepository struct {
	dir    string
	prefix string
	ext    string
	names  *NameGenerator
	logger *log.Logger
	wrap   func(io.Writer) io.Writer
}

// NewPhotoRepository creates a repository rooted at opts.Dir. It does not touch the disk.
func NewPhotoRepository(opts RepositoryOpts) *PhotoRepository {
	dir := opts.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewQuietLogger()
	}
	if opts.Names == nil {
		opts.Names = NewNameGenerator(nil)
	}
	if opts.WrapWriter == nil {
		opts.WrapWriter = func(w io.Writer) io.Writer { return w }
	}

	return &PhotoRepository{
		dir:    dir,
		prefix: opts.Prefix,
		ext:    strings.TrimPrefix(opts.Extension, "."),
		names:  opts.Names,
		logger: opts.Logger,
		wrap:   opts.WrapWriter,
	}
}

// Dir returns the absolute backing directory.
func (r *PhotoRepository) Dir() string { return r.dir }

// Prefix returns the default name prefix.
func (r *PhotoRepository) Prefix() string { return r.prefix }

// Extension returns the default name extension.
func (r *PhotoRepository) Extension() string { return r.ext }

// Path returns the on-disk path for id.
func (r *PhotoRepository) Path(id string) string {
	return filepath.Join(r.dir, id)
}

// EnsureInitialized creates the backing directory if it is absent. It is idempotent and safe to call
// concurrently.
func (r *PhotoRepository) EnsureInitialized() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}

	info, err := os.Stat(r.dir)
	if err != nil {
		return fmt.Errorf("failed to stat repository directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidConfig, r.dir)
	}
	return nil
}

// GenerateUniqueName returns an identifier not present in the repository at the time of the check.
//
// Empty prefix or ext fall back to the repository defaults.
func (r *PhotoRepository) GenerateUniqueName(prefix, ext string) string {
	if prefix == "" {
		prefix = r.prefix
	}
	if ext == "" {
		ext = r.ext
	}

	for {
		name := r.names.Next(prefix, ext)
		if _, err := os.Lstat(r.Path(name)); err != nil {
			// Absent, or unreadable in a way Save will report.
			return name
		}
		r.logger.Debug("skipping name already on disk", "id", name)
	}
}

// Save writes blob under id. The write is all-or-nothing: on any failure the temp file is removed and id does
// not appear in later listings.
func (r *PhotoRepository) Save(blob models.Blob, id string) (*models.Entry, error) {
	if err := validateID(id); err != nil {
		return nil, shared.NewWriteFailed(id, err)
	}
	if len(blob.Data) == 0 {
		return nil, shared.NewWriteFailed(id, fmt.Errorf("%w: empty image", shared.ErrInvalidInput))
	}

	final := r.Path(id)
	if _, err := os.Lstat(final); err == nil {
		return nil, shared.NewWriteFailed(id, shared.ErrAlreadyExists)
	}

	tmp := filepath.Join(r.dir, fmt.Sprintf(".%s.%s%s", id, shared.GenerateID(), tempSuffix))
	if err := r.writeTemp(tmp, blob.Data); err != nil {
		os.Remove(tmp)
		return nil, shared.NewWriteFailed(id, err)
	}

	if err := publish(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, shared.NewWriteFailed(id, err)
	}

	r.logger.Debug("saved image", "id", id, "bytes", len(blob.Data))

	entry, err := r.Stat(id)
	if err != nil {
		// Deleted between publish and stat; the write itself succeeded.
		return &models.Entry{ID: id, Path: final, Size: int64(len(blob.Data)), CreatedAt: time.Now()}, nil
	}
	return entry, nil
}

func (r *PhotoRepository) writeTemp(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := r.wrap(f).Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close image: %w", err)
	}
	return nil
}

// publish moves tmp to final without ever replacing an existing final.
//
// A hard link fails atomically when final exists. Filesystems without links fall back to a checked rename.
func publish(tmp, final string) error {
	err := os.Link(tmp, final)
	if err == nil {
		os.Remove(tmp)
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return shared.ErrAlreadyExists
	}

	if _, statErr := os.Lstat(final); statErr == nil {
		return shared.ErrAlreadyExists
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to publish image: %w", err)
	}
	return nil
}

// List returns a snapshot of the repository. It never fails: an unreadable directory yields an empty listing and
// a warning.
func (r *PhotoRepository) List() models.Listing {
	now := time.Now()

	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		r.logger.Warn("failed to list repository", "dir", r.dir, "error", err)
		return models.NewListing(nil, now)
	}

	entries := make([]models.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		info, err := de.Info()
		if err != nil {
			// Removed since ReadDir.
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		entries = append(entries, models.Entry{
			ID:        name,
			Path:      filepath.Join(r.dir, name),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	return models.NewListing(entries, now)
}

// Read returns the bytes stored under id, or a NotFound [shared.StorageError] if it no longer exists.
func (r *PhotoRepository) Read(id string) (models.Blob, error) {
	if err := validateID(id); err != nil {
		return models.Blob{}, shared.NewNotFound(id, err)
	}

	data, err := os.ReadFile(r.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return models.Blob{}, shared.NewNotFound(id, nil)
	}
	if err != nil {
		return models.Blob{}, fmt.Errorf("failed to read %s: %w", id, err)
	}

	return models.Blob{Name: id, Data: data, ContentType: http.DetectContentType(data)}, nil
}

// Delete removes id. A missing entry is a NotFound error; any other failure is WriteFailed.
func (r *PhotoRepository) Delete(id string) error {
	if err := validateID(id); err != nil {
		return shared.NewNotFound(id, err)
	}

	err := os.Remove(r.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return shared.NewNotFound(id, nil)
	}
	if err != nil {
		return shared.NewWriteFailed(id, err)
	}

	r.logger.Debug("deleted image", "id", id)
	return nil
}

// Stat returns the entry for id with its size and capture time.
func (r *PhotoRepository) Stat(id string) (*models.Entry, error) {
	if err := validateID(id); err != nil {
		return nil, shared.NewNotFound(id, err)
	}

	path := r.Path(id)
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.NewNotFound(id, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", id, err)
	}
	if !info.Mode().IsRegular() {
		return nil, shared.NewNotFound(id, fmt.Errorf("%s is not a regular file", id))
	}

	return &models.Entry{ID: id, Path: path, Size: info.Size(), CreatedAt: info.ModTime()}, nil
}

// SweepTemp removes temp files older than age left behind by interrupted writers and returns how many it removed.
func (r *PhotoRepository) SweepTemp(age time.Duration) int {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, tempSuffix) {
			continue
		}
		info, err := de.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, name)); err == nil {
			removed++
		}
	}

	if removed > 0 {
		r.logger.Info("removed stale temp files", "count", removed)
	}
	return removed
}

func validateID(id string) error {
	switch {
	case id == "", id == ".", id == "..":
		return fmt.Errorf("%w: %q", shared.ErrInvalidIdentifier, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q is hidden", shared.ErrInvalidIdentifier, id)
	case strings.ContainsAny(id, `/\`), filepath.Base(id) != id:
		return fmt.Errorf("%w: %q contains a path separator", shared.ErrInvalidIdentifier, id)
	}
	return nil
}
