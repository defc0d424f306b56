package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
	tu "github.com/desertthunder/mosaic/internal/testing"
)

func setupModel(t *testing.T, n int, device *tu.FakeDevice) (*Model, *repositories.PhotoRepository) {
	t.Helper()
	repo := repositories.NewPhotoRepository(repositories.RepositoryOpts{Dir: filepath.Join(t.TempDir(), "photos")})
	if err := repo.EnsureInitialized(); err != nil {
		t.Fatalf("failed to initialize repository: %v", err)
	}
	for range n {
		if _, err := repo.Save(tu.JPEGBlob(t), repo.GenerateUniqueName("", "")); err != nil {
			t.Fatalf("failed to seed entry: %v", err)
		}
	}

	coordinator := tasks.NewBatchCoordinator(tasks.BatchCoordinatorOpts{Store: repo})
	var pipeline *tasks.CapturePipeline
	if device != nil {
		pipeline = tasks.NewCapturePipeline(tasks.CapturePipelineOpts{Device: device, Store: repo})
	}

	m := NewModel(context.Background(), coordinator, pipeline, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	drive(m, m.Init())
	return m, repo
}

// drive runs cmd and feeds every resulting message back into m until no command remains.
func drive(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModelGallery(t *testing.T) {
	t.Run("lists the repository on init", func(t *testing.T) {
		m, _ := setupModel(t, 3, nil)

		if got := len(m.gallery.Items()); got != 3 {
			t.Errorf("expected 3 items, got %d", got)
		}
		if !strings.Contains(m.View(), "Gallery (3)") {
			t.Errorf("expected gallery title in view, got:\n%s", m.View())
		}
	})

	t.Run("space toggles the highlighted entry", func(t *testing.T) {
		m, _ := setupModel(t, 3, nil)

		press(m, " ")
		if got := m.coordinator.Selection().Len(); got != 1 {
			t.Fatalf("expected 1 selected, got %d", got)
		}
		item := m.gallery.Items()[0].(entryItem)
		if !item.selected || !strings.HasPrefix(item.Title(), "[x]") {
			t.Errorf("expected first item marked, got %q", item.Title())
		}

		press(m, " ")
		if !m.coordinator.Selection().IsEmpty() {
			t.Error("expected second toggle to clear the selection")
		}
	})

	t.Run("select all and clear", func(t *testing.T) {
		m, _ := setupModel(t, 3, nil)

		press(m, "a")
		if got := m.coordinator.Selection().Len(); got != 3 {
			t.Errorf("expected 3 selected, got %d", got)
		}
		if !strings.Contains(m.gallery.Title, "3 selected") {
			t.Errorf("expected selection count in title, got %q", m.gallery.Title)
		}

		press(m, "esc")
		if !m.coordinator.Selection().IsEmpty() {
			t.Error("expected esc to clear the selection")
		}
	})

	t.Run("detail view", func(t *testing.T) {
		m, _ := setupModel(t, 1, nil)

		press(m, "enter")
		if m.view != DetailView {
			t.Fatalf("expected DetailView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "ID:") {
			t.Errorf("expected entry detail, got:\n%s", m.View())
		}

		press(m, "esc")
		if m.view != GalleryView {
			t.Errorf("expected GalleryView, got %d", m.view)
		}
	})
}

func TestModelDelete(t *testing.T) {
	t.Run("confirm deletes the selection", func(t *testing.T) {
		m, repo := setupModel(t, 2, nil)

		press(m, "a")
		press(m, "d")
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected ConfirmDeleteView, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Delete 2 photo(s)?") {
			t.Errorf("expected confirmation prompt, got:\n%s", m.View())
		}

		drive(m, press(m, "y"))

		if m.view != GalleryView {
			t.Errorf("expected GalleryView after delete, got %d", m.view)
		}
		if got := repo.List().Len(); got != 0 {
			t.Errorf("expected empty repository, got %d entries", got)
		}
		if !strings.Contains(m.status, "Delete: 2 succeeded") {
			t.Errorf("expected delete summary, got %q", m.status)
		}
		if len(m.gallery.Items()) != 0 {
			t.Errorf("expected empty gallery, got %d items", len(m.gallery.Items()))
		}
	})

	t.Run("declining keeps everything", func(t *testing.T) {
		m, repo := setupModel(t, 2, nil)

		press(m, "a")
		press(m, "d")
		press(m, "n")

		if m.view != GalleryView {
			t.Errorf("expected GalleryView, got %d", m.view)
		}
		if got := repo.List().Len(); got != 2 {
			t.Errorf("expected 2 entries, got %d", got)
		}
	})

	t.Run("highlighted entry is used without a selection", func(t *testing.T) {
		m, _ := setupModel(t, 2, nil)

		press(m, "d")
		if got := m.coordinator.Selection().Len(); got != 1 {
			t.Errorf("expected highlighted entry selected, got %d", got)
		}
	})

	t.Run("empty gallery warns", func(t *testing.T) {
		m, _ := setupModel(t, 0, nil)

		press(m, "d")
		if m.view != GalleryView || m.status != "Nothing selected" {
			t.Errorf("expected warning, got view %d status %q", m.view, m.status)
		}
	})
}

func TestModelCapture(t *testing.T) {
	t.Run("capture saves and shows the latest entry", func(t *testing.T) {
		device := &tu.FakeDevice{Image: tu.JPEGBlob(t)}
		m, repo := setupModel(t, 0, device)

		drive(m, press(m, "c"))

		if got := repo.List().Len(); got != 1 {
			t.Fatalf("expected 1 entry, got %d", got)
		}
		if m.latest == nil {
			t.Fatal("expected latest entry to be set")
		}
		if !strings.Contains(m.status, m.latest.ID) {
			t.Errorf("expected status to name %s, got %q", m.latest.ID, m.status)
		}
		if len(m.gallery.Items()) != 1 {
			t.Errorf("expected gallery refreshed, got %d items", len(m.gallery.Items()))
		}
	})

	t.Run("trigger failure shows the retry message", func(t *testing.T) {
		device := &tu.FakeDevice{TriggerErr: &shared.NetworkError{Kind: shared.Transport, Op: "trigger"}}
		m, repo := setupModel(t, 0, device)

		drive(m, press(m, "c"))

		if !strings.Contains(m.status, "Nothing was captured") {
			t.Errorf("expected retry message, got %q", m.status)
		}
		if repo.List().Len() != 0 {
			t.Error("expected nothing saved")
		}
	})

	t.Run("without a device", func(t *testing.T) {
		m, _ := setupModel(t, 0, nil)

		if cmd := press(m, "c"); cmd != nil {
			t.Error("expected no command without a pipeline")
		}
		if !strings.Contains(m.status, "not available") {
			t.Errorf("expected warning, got %q", m.status)
		}
	})
}

func TestModelExportWithoutLibrary(t *testing.T) {
	m, _ := setupModel(t, 1, nil)

	drive(m, press(m, "e"))

	if !strings.Contains(m.status, shared.ErrServiceUnavailable.Error()) {
		t.Errorf("expected unavailable library error, got %q", m.status)
	}
}

func TestWaitForProgress(t *testing.T) {
	m, _ := setupModel(t, 0, nil)

	want := errors.New("boom")
	cmd := m.run("Testing", func(progress chan<- tasks.ProgressUpdate) Msg {
		progress <- tasks.ProgressUpdate{Phase: tasks.DeleteItems, Step: 1, Total: 1, Message: "one"}
		return batchCompleteMsg(models.BatchResult{Operation: "delete"}, want)
	})
	if m.view != BusyView {
		t.Fatalf("expected BusyView, got %d", m.view)
	}

	msg := cmd().(Msg)
	if msg.kind != MsgProgressUpdate {
		t.Fatalf("expected progress first, got kind %d", msg.kind)
	}
	_, next := m.Update(msg)
	if !strings.Contains(m.View(), "one") {
		t.Errorf("expected progress message in view, got:\n%s", m.View())
	}

	drive(m, next)
	if m.view != GalleryView {
		t.Errorf("expected GalleryView after completion, got %d", m.view)
	}
	if !strings.Contains(m.status, "boom") {
		t.Errorf("expected error in status, got %q", m.status)
	}
}

func TestStatusStyles(t *testing.T) {
	foreground := func(m *Model) lipgloss.TerminalColor { return m.statusStyle.GetForeground() }

	t.Run("selection changes", func(t *testing.T) {
		m, _ := setupModel(t, 2, nil)

		press(m, "a")
		if got := foreground(m); got != lipgloss.Color(colorSelected) {
			t.Errorf("select all foreground = %v, want %v", got, colorSelected)
		}
		press(m, "esc")
		if got := foreground(m); got != lipgloss.Color(colorSelected) {
			t.Errorf("clear foreground = %v, want %v", got, colorSelected)
		}
	})

	t.Run("capture", func(t *testing.T) {
		m, _ := setupModel(t, 0, &tu.FakeDevice{Image: tu.JPEGBlob(t)})

		drive(m, press(m, "c"))
		if got := foreground(m); got != lipgloss.Color(colorCaptured) {
			t.Errorf("capture foreground = %v, want %v", got, colorCaptured)
		}
	})

	t.Run("batch operations", func(t *testing.T) {
		tests := []struct {
			operation string
			want      string
		}{
			{"export", colorExported},
			{"share", colorExported},
			{"import", colorCaptured},
			{"delete", colorCaptured},
		}
		for _, tt := range tests {
			t.Run(tt.operation, func(t *testing.T) {
				m, _ := setupModel(t, 0, nil)
				m.batchDone(models.BatchResult{Operation: tt.operation, Succeeded: 1}, nil)
				if got := foreground(m); got != lipgloss.Color(tt.want) {
					t.Errorf("foreground = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("failures", func(t *testing.T) {
		m, _ := setupModel(t, 0, nil)
		m.batchDone(models.BatchResult{Operation: "export", Failed: 1}, errors.New("boom"))
		if got := foreground(m); got != lipgloss.Color(colorError) {
			t.Errorf("foreground = %v, want %v", got, colorError)
		}
	})
}
