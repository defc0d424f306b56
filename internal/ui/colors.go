package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorTitle    = "#7D56F4"
	colorCaptured = "#04B575"
	colorExported = "#00AFD7"
	colorSelected = "#F25D94"
	colorError    = "#FF0000"
	colorWarning  = "#FFA500"
	colorMuted    = "#626262"
)

var styles = newPalette()

// palette holds one style per kind of gallery status.
type palette struct {
	title    lipgloss.Style
	captured lipgloss.Style // a new photo reached the repository
	exported lipgloss.Style // photos left the repository: export or share
	selected lipgloss.Style // selection changes
	ok       lipgloss.Style // other finished batches
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
}

func newPalette() *palette {
	return &palette{
		title:    newBold(colorTitle).MarginBottom(1),
		captured: newBold(colorCaptured),
		exported: newBold(colorExported),
		selected: newStyle(colorSelected),
		ok:       newBold(colorCaptured),
		err:      newBold(colorError),
		warn:     newStyle(colorWarning),
		help:     newEm(colorMuted),
	}
}

// batchStyle picks the success style for a finished batch operation.
func (p *palette) batchStyle(operation string) lipgloss.Style {
	switch operation {
	case "export", "share":
		return p.exported
	case "import":
		return p.captured
	default:
		return p.ok
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

func newEm(fg string) lipgloss.Style {
	return newStyle(fg).Italic(true)
}
