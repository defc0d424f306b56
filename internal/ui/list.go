package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.Entry] to implement [list.Item].
type entryItem struct {
	entry    models.Entry
	selected bool
}

func (i entryItem) FilterValue() string { return i.entry.ID }

func (i entryItem) Title() string {
	if i.selected {
		return "[x] " + i.entry.ID
	}
	return "[ ] " + i.entry.ID
}

func (i entryItem) Description() string {
	return fmt.Sprintf("%s • %s", shared.HumanSize(i.entry.Size), i.entry.CreatedAt.Local().Format("2006-01-02 15:04:05"))
}

// entryItems builds list items for listing, marking the ids in selection.
func entryItems(listing models.Listing, selection tasks.Selection) []list.Item {
	items := make([]list.Item, len(listing.Entries))
	for i, entry := range listing.Entries {
		items[i] = entryItem{entry: entry, selected: selection.Contains(entry.ID)}
	}
	return items
}
