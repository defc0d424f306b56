package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	GalleryView ViewState = iota
	DetailView
	ConfirmDeleteView
	BusyView
)

const maxConfirmLines = 10

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	pipeline     *tasks.CapturePipeline
	coordinator  *tasks.BatchCoordinator
	logger       *log.Logger
	width        int
	height       int
	gallery      list.Model
	detail       *models.Entry
	latest       *models.Entry
	operation    string
	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	progress     tasks.ProgressUpdate
	status       string
	statusStyle  lipgloss.Style
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies. A nil pipeline disables capture.
func NewModel(ctx context.Context, coordinator *tasks.BatchCoordinator, pipeline *tasks.CapturePipeline, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewQuietLogger()
	}

	gallery := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	gallery.Title = "Gallery"
	gallery.SetFilteringEnabled(false)
	gallery.SetShowHelp(false)
	gallery.DisableQuitKeybindings()

	return &Model{
		ctx:         ctx,
		view:        GalleryView,
		pipeline:    pipeline,
		coordinator: coordinator,
		logger:      logger,
		gallery:     gallery,
		statusStyle: styles.help,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by listing the repository.
func (m *Model) Init() tea.Cmd {
	return m.loadListing()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gallery.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GalleryView:
			return m.handleGalleryKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case BusyView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.gallery, cmd = m.gallery.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgListingLoaded:
		m.syncItems(msg.data.(models.Listing))
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgCaptureComplete:
		outcome := msg.data.(captureOutcome)
		m.finishOperation()
		m.captured(outcome.result, outcome.err)
		return m, m.loadListing()

	case MsgBatchComplete:
		outcome := msg.data.(batchOutcome)
		m.finishOperation()
		m.batchDone(outcome.result, outcome.err)
		return m, m.loadListing()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GalleryView:
		return m.renderGallery()
	case DetailView:
		return m.renderDetail()
	case ConfirmDeleteView:
		return m.renderConfirm()
	case BusyView:
		return m.renderBusy()
	default:
		return ""
	}
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		if entry, ok := m.current(); ok {
			m.coordinator.Toggle(entry.ID)
			m.syncItems(m.coordinator.Listing())
		}
		return m, nil

	case key.Matches(msg, m.keys.selectAll):
		n := m.coordinator.SelectAll()
		m.syncItems(m.coordinator.Listing())
		m.setStatus(styles.selected, fmt.Sprintf("Selected %d photo(s)", n))
		return m, nil

	case key.Matches(msg, m.keys.back):
		m.coordinator.Cancel()
		m.syncItems(m.coordinator.Listing())
		m.setStatus(styles.selected, "Selection cleared")
		return m, nil

	case key.Matches(msg, m.keys.detail):
		if entry, ok := m.current(); ok {
			m.detail = &entry
			m.view = DetailView
		}
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		return m, m.loadListing()

	case key.Matches(msg, m.keys.capture):
		return m, m.startCapture()

	case key.Matches(msg, m.keys.delete):
		if m.ensureSelection() {
			m.view = ConfirmDeleteView
		}
		return m, nil

	case key.Matches(msg, m.keys.export):
		if !m.ensureSelection() {
			return m, nil
		}
		return m, m.run("Exporting to library", func(progress chan<- tasks.ProgressUpdate) Msg {
			return batchCompleteMsg(m.coordinator.ExportSelected(m.ctx, progress))
		})

	case key.Matches(msg, m.keys.share):
		if !m.ensureSelection() {
			return m, nil
		}
		return m, m.run("Sharing", func(progress chan<- tasks.ProgressUpdate) Msg {
			return batchCompleteMsg(m.coordinator.ShareSelected(m.ctx, progress))
		})
	}

	var cmd tea.Cmd
	m.gallery, cmd = m.gallery.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.detail):
		m.detail = nil
		m.view = GalleryView
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.run("Deleting", func(progress chan<- tasks.ProgressUpdate) Msg {
			return batchCompleteMsg(m.coordinator.DeleteSelected(m.ctx, progress), nil)
		})
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = GalleryView
	}
	return m, nil
}

// current returns the highlighted entry.
func (m *Model) current() (models.Entry, bool) {
	item, ok := m.gallery.SelectedItem().(entryItem)
	if !ok {
		return models.Entry{}, false
	}
	return item.entry, true
}

// ensureSelection selects the highlighted entry when nothing is selected yet and reports whether a selection
// exists afterwards.
func (m *Model) ensureSelection() bool {
	if m.coordinator.Selection().IsEmpty() {
		if entry, ok := m.current(); ok {
			m.coordinator.Select(entry.ID)
			m.syncItems(m.coordinator.Listing())
		}
	}
	if m.coordinator.Selection().IsEmpty() {
		m.setStatus(styles.warn, "Nothing selected")
		return false
	}
	return true
}

func (m *Model) syncItems(listing models.Listing) {
	selection := m.coordinator.Selection()
	m.gallery.SetItems(entryItems(listing, selection))
	if selection.IsEmpty() {
		m.gallery.Title = fmt.Sprintf("Gallery (%d)", listing.Len())
	} else {
		m.gallery.Title = fmt.Sprintf("Gallery (%d, %d selected)", listing.Len(), selection.Len())
	}
}

func (m *Model) setStatus(style lipgloss.Style, status string) {
	m.statusStyle = style
	m.status = status
}

func (m *Model) captured(result *tasks.CaptureResult, err error) {
	var captureErr *shared.CaptureError
	switch {
	case errors.Is(err, shared.ErrCaptureInProgress):
		m.setStatus(styles.warn, "A capture is already in progress")
	case errors.As(err, &captureErr):
		m.setStatus(styles.err, fmt.Sprintf("%s (%v)", captureErr.UserMessage(), captureErr.Err))
	case err != nil:
		m.setStatus(styles.err, fmt.Sprintf("Capture failed: %v", err))
	default:
		m.latest = result.Entry
		status := fmt.Sprintf("✓ Captured %s (%s)", result.Entry.ID, shared.HumanSize(result.Entry.Size))
		switch {
		case result.Exported:
			m.setStatus(styles.exported, status+" and exported to the library")
		case result.ExportErr != nil:
			m.setStatus(styles.warn, fmt.Sprintf("%s; library export failed: %v", status, result.ExportErr))
		default:
			m.setStatus(styles.captured, status)
		}
	}
}

func (m *Model) batchDone(result models.BatchResult, err error) {
	summary := strings.TrimRight(formatter.BatchSummary(result), "\n")
	switch {
	case err != nil:
		m.setStatus(styles.err, fmt.Sprintf("%s\n%v", summary, err))
	case result.Failed > 0:
		m.setStatus(styles.warn, summary)
	default:
		m.setStatus(styles.batchStyle(result.Operation), summary)
	}
}

func (m *Model) loadListing() tea.Cmd {
	return func() tea.Msg {
		return listingLoadedMsg(m.coordinator.Refresh())
	}
}

func (m *Model) startCapture() tea.Cmd {
	if m.pipeline == nil {
		m.setStatus(styles.warn, "Capture is not available without a device")
		return nil
	}
	export := m.pipeline.HasLibrary()
	return m.run("Capturing", func(progress chan<- tasks.ProgressUpdate) Msg {
		return captureCompleteMsg(m.pipeline.Capture(m.ctx, export, progress))
	})
}

// run starts op in the background and switches to the busy view. The completion message is delivered after the
// progress channel closes.
func (m *Model) run(operation string, op func(progress chan<- tasks.ProgressUpdate) Msg) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)

	m.view = BusyView
	m.operation = operation
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = progress
	m.doneChan = done
	m.logger.Debug("operation started", "operation", operation)

	go func() {
		done <- op(progress)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) finishOperation() {
	m.view = GalleryView
	m.operation = ""
	m.progressChan = nil
	m.doneChan = nil
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return m.statusStyle.Render(m.status)
	}
	if m.latest != nil {
		return styles.captured.Render(fmt.Sprintf("Latest: %s (%s)", m.latest.ID, shared.HumanSize(m.latest.Size)))
	}
	return ""
}

func (m *Model) renderGallery() string {
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", m.gallery.View(), m.statusLine(), helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	title := styles.title.Render("Photo")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, formatter.EntryDetail(*m.detail), helpView)
}

func (m *Model) renderConfirm() string {
	ids := m.coordinator.Selection().IDs()
	title := styles.title.Render(fmt.Sprintf("Delete %d photo(s)?", len(ids)))

	var b strings.Builder
	for i, id := range ids {
		if i == maxConfirmLines {
			fmt.Fprintf(&b, "  … and %d more\n", len(ids)-maxConfirmLines)
			break
		}
		fmt.Fprintf(&b, "  • %s\n", id)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n%s", title, b.String(), helpView)
}

func (m *Model) renderBusy() string {
	title := styles.title.Render(m.operation)

	phase := "Starting..."
	if m.progress.Total > 0 {
		phase = fmt.Sprintf("%s (%d/%d)", m.progress.Phase, m.progress.Step, m.progress.Total)
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
