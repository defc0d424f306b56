package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/repositories"
	tu "github.com/desertthunder/mosaic/internal/testing"
)

func TestImportExternal(t *testing.T) {
	ctx := context.Background()

	t.Run("N Items Yield N Distinct Entries", func(t *testing.T) {
		frozen := time.UnixMilli(1_729_000_000_000)
		repo := repositories.NewPhotoRepository(repositories.RepositoryOpts{
			Dir:   t.TempDir(),
			Names: repositories.NewNameGenerator(func() time.Time { return frozen }),
		})
		c := NewBatchCoordinator(BatchCoordinatorOpts{Store: repo, Workers: 8})

		const n = 50
		blobs := make([]models.Blob, n)
		for i := range blobs {
			blobs[i] = tu.JPEGBlob(t)
		}

		result, err := c.ImportExternal(ctx, blobs, nil)
		if err != nil {
			t.Fatalf("ImportExternal() error = %v", err)
		}
		if result.Succeeded() != n {
			t.Fatalf("expected %d imports, got %d (failures: %d)", n, result.Succeeded(), result.Failed())
		}

		seen := make(map[string]bool)
		for _, e := range result.Entries() {
			if seen[e.ID] {
				t.Fatalf("duplicate identifier %s", e.ID)
			}
			seen[e.ID] = true
		}
		if repo.List().Len() != n || c.Listing().Len() != n {
			t.Errorf("expected %d listed entries, got %d", n, repo.List().Len())
		}
		if result.BatchID == "" {
			t.Error("expected a batch id")
		}
	})

	t.Run("Concurrent Calls Yield Distinct Entries", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		c := NewBatchCoordinator(BatchCoordinatorOpts{Store: repo})

		const calls, perCall = 8, 10
		var wg sync.WaitGroup
		errs := make(chan error, calls)
		for i := 0; i < calls; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				blobs := make([]models.Blob, perCall)
				for j := range blobs {
					blobs[j] = tu.JPEGBlob(t)
				}
				result, err := c.ImportExternal(ctx, blobs, nil)
				if err == nil && result.Failed() > 0 {
					err = errors.New("import had failures")
				}
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("concurrent import failed: %v", err)
			}
		}
		if got := repo.List().Len(); got != calls*perCall {
			t.Errorf("expected %d entries, got %d", calls*perCall, got)
		}
	})

	t.Run("Partial Failure Keeps Written Entries", func(t *testing.T) {
		repo := newTestRepo(t, nil)
		c := NewBatchCoordinator(BatchCoordinatorOpts{Store: repo})
		blobs := []models.Blob{
			tu.JPEGBlob(t),
			{Name: "notes.txt", Data: []byte("not an image")},
			{Name: "empty.jpg"},
			{Name: "b.png", Data: tu.MustPNG(t)},
		}
		progress := make(chan ProgressUpdate, 10)

		result, err := c.ImportExternal(ctx, blobs, progress)
		if err != nil {
			t.Fatalf("ImportExternal() error = %v", err)
		}
		if result.Succeeded() != 2 || result.Failed() != 2 {
			t.Errorf("expected 2 succeeded and 2 failed, got %d/%d", result.Succeeded(), result.Failed())
		}

		for i, o := range result.Outcomes {
			if o.Index != i {
				t.Errorf("outcome %d has index %d", i, o.Index)
			}
		}
		if !result.Outcomes[0].OK() || result.Outcomes[1].OK() || result.Outcomes[2].OK() || !result.Outcomes[3].OK() {
			t.Errorf("unexpected outcomes %+v", result.Outcomes)
		}
		if ext := result.Outcomes[3].Entry.ID; ext[len(ext)-4:] != ".png" {
			t.Errorf("expected png identifier, got %s", ext)
		}
		if repo.List().Len() != 2 {
			t.Errorf("written entries should remain, got %d", repo.List().Len())
		}
		if n := len(drain(progress)); n != 4 {
			t.Errorf("expected 4 progress updates, got %d", n)
		}
	})

	t.Run("Repository Init Failure", func(t *testing.T) {
		store := &flakyStore{Store: newTestRepo(t, nil), initErr: errors.New("read-only filesystem")}
		c := NewBatchCoordinator(BatchCoordinatorOpts{Store: store})

		if _, err := c.ImportExternal(ctx, []models.Blob{tu.JPEGBlob(t)}, nil); err == nil {
			t.Error("expected error when repository cannot be initialized")
		}
	})

	t.Run("Empty Input", func(t *testing.T) {
		c := NewBatchCoordinator(BatchCoordinatorOpts{Store: newTestRepo(t, nil)})

		result, err := c.ImportExternal(ctx, nil, nil)
		if err != nil || len(result.Outcomes) != 0 {
			t.Errorf("expected empty result, got %+v, %v", result, err)
		}
	})
}
