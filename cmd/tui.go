package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/mosaic-tui.log"

// TUI launches the interactive gallery.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())

	tr := NewRunner(RunnerOpts{
		Config:     r.config,
		ConfigPath: r.configPath,
		Library:    r.library,
		HTTPClient: r.httpClient,
		Logger:     fileLogger,
		Output:     r.output,
	})

	library, err := tr.resolveLibrary(ctx)
	if err != nil {
		fileLogger.Warn("library unavailable, exports disabled", "error", err)
		library = nil
	}

	coordinator := tr.coordinator(library, "")
	model := ui.NewModel(ctx, coordinator, tr.pipeline(library), fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
