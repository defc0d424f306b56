package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	tu "github.com/desertthunder/mosaic/internal/testing"
)

func TestDirectoryLibrary(t *testing.T) {
	t.Run("Export Creates Folder And Copies Bytes", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "library")
		lib := NewDirectoryLibrary(dir, nil)
		blob := tu.JPEGBlob(t)

		if err := lib.Export(context.Background(), "photo_1.jpg", blob); err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		got := tu.MustReadFile(t, filepath.Join(dir, "photo_1.jpg"))
		if string(got) != string(blob.Data) {
			t.Error("exported bytes differ")
		}
	})

	t.Run("Collisions Get A Suffix", func(t *testing.T) {
		dir := t.TempDir()
		lib := NewDirectoryLibrary(dir, nil)
		ctx := context.Background()

		for _, body := range []string{"first", "second", "third"} {
			if err := lib.Export(ctx, "photo_1.jpg", models.Blob{Data: []byte(body)}); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
		}

		want := map[string]string{
			"photo_1.jpg":   "first",
			"photo_1-1.jpg": "second",
			"photo_1-2.jpg": "third",
		}
		for name, body := range want {
			if got := tu.MustReadFile(t, filepath.Join(dir, name)); string(got) != body {
				t.Errorf("%s = %q, want %q", name, got, body)
			}
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		lib := NewDirectoryLibrary(dir, nil)

		if err := lib.Export(context.Background(), "photo_1.jpg", tu.JPEGBlob(t)); err != nil {
			t.Fatalf("Export() error = %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected only the exported file, found %d entries", len(entries))
		}
	})

	t.Run("Rejects Path Names", func(t *testing.T) {
		lib := NewDirectoryLibrary(t.TempDir(), nil)

		for _, name := range []string{"", "../escape.jpg", "a/b.jpg", ".hidden.jpg"} {
			err := lib.Export(context.Background(), name, tu.JPEGBlob(t))
			if !errors.Is(err, shared.ErrExportFailed) {
				t.Errorf("Export(%q) expected export error, got %v", name, err)
			}
		}
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := NewDirectoryLibrary(t.TempDir(), nil).Export(ctx, "photo_1.jpg", tu.JPEGBlob(t)); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestNewLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("None", func(t *testing.T) {
		for _, kind := range []string{"", shared.LibraryNone} {
			lib, err := NewLibrary(ctx, shared.LibraryConfig{Kind: kind}, nil)
			if err != nil || lib != nil {
				t.Errorf("kind %q: expected nil library, got %v, %v", kind, lib, err)
			}
		}
	})

	t.Run("Directory", func(t *testing.T) {
		lib, err := NewLibrary(ctx, shared.LibraryConfig{Kind: shared.LibraryDirectory, Path: t.TempDir()}, nil)
		if err != nil {
			t.Fatalf("NewLibrary() error = %v", err)
		}
		if lib.Name() != shared.LibraryDirectory {
			t.Errorf("expected directory library, got %s", lib.Name())
		}
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		_, err := NewLibrary(ctx, shared.LibraryConfig{Kind: "icloud"}, nil)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected invalid config, got %v", err)
		}
	})
}
