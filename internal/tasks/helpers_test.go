package tasks

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/shared"
	tu "github.com/desertthunder/mosaic/internal/testing"
)

// newTestRepo creates an initialized repository in a temp directory. wrap may be nil.
func newTestRepo(t *testing.T, wrap func(io.Writer) io.Writer) *repositories.PhotoRepository {
	t.Helper()
	repo := repositories.NewPhotoRepository(repositories.RepositoryOpts{
		Dir:        filepath.Join(t.TempDir(), "photos"),
		WrapWriter: wrap,
	})
	if err := repo.EnsureInitialized(); err != nil {
		t.Fatalf("failed to initialize repository: %v", err)
	}
	return repo
}

// seed saves n JPEG entries and returns their identifiers.
func seed(t *testing.T, repo *repositories.PhotoRepository, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		id := repo.GenerateUniqueName("", "")
		if _, err := repo.Save(tu.JPEGBlob(t), id); err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
		ids[i] = id
	}
	return ids
}

// assertNoTempFiles fails if any hidden temp file remains in dir.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read %s: %v", dir, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("orphan temp file left behind: %s", e.Name())
		}
	}
}

// flakyStore wraps a Store and fails selected operations.
type flakyStore struct {
	Store
	deleteErr map[string]error
	readErr   map[string]error
	initErr   error
}

func (s *flakyStore) Delete(id string) error {
	if err, ok := s.deleteErr[id]; ok {
		return err
	}
	return s.Store.Delete(id)
}

func (s *flakyStore) Read(id string) (models.Blob, error) {
	if err, ok := s.readErr[id]; ok {
		return models.Blob{}, err
	}
	return s.Store.Read(id)
}

func (s *flakyStore) EnsureInitialized() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.Store.EnsureInitialized()
}

var errPermission = shared.NewWriteFailed("locked", errors.New("permission denied"))

// drain collects every update currently buffered in ch.
func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}
