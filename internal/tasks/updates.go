package tasks

import (
	"fmt"

	"github.com/desertthunder/mosaic/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Trigger Phase = iota
	Fetch
	Persist
	LibraryExport
	DeleteItems
	ExportItems
	ShareItems
	ImportItems
)

func (p Phase) String() string {
	switch p {
	case Trigger:
		return "trigger"
	case Fetch:
		return "fetch"
	case Persist:
		return "persist"
	case LibraryExport:
		return "library_export"
	case DeleteItems:
		return "delete"
	case ExportItems:
		return "export"
	case ShareItems:
		return "share"
	case ImportItems:
		return "import"
	default:
		return ""
	}
}

const captureSteps = 4

func triggerUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Trigger,
		Step:    1,
		Total:   captureSteps,
		Message: "Triggering capture on device...",
	}
}

func fetchUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Fetch,
		Step:    2,
		Total:   captureSteps,
		Message: "Fetching image from device...",
	}
}

func persistUpdate(img *models.CapturedImage) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    3,
		Total:   captureSteps,
		Message: fmt.Sprintf("Saving image (%d bytes, %s)...", img.Size(), img.ContentType),
	}
}

func savedUpdate(entry *models.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Persist,
		Step:    3,
		Total:   captureSteps,
		Message: fmt.Sprintf("Saved %s", entry.ID),
		Data:    entry,
	}
}

func libraryExportUpdate(entry *models.Entry, library string, err error) ProgressUpdate {
	msg := fmt.Sprintf("Exported %s to %s library", entry.ID, library)
	if err != nil {
		msg = fmt.Sprintf("Export of %s to %s library failed: %v", entry.ID, library, err)
	}
	return ProgressUpdate{
		Phase:   LibraryExport,
		Step:    4,
		Total:   captureSteps,
		Message: msg,
		Data:    entry,
	}
}

func itemUpdate(phase Phase, step, total int, id string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   phase,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
		}
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, id),
	}
}

func skippedUpdate(phase Phase, step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (gone)", step, total, id),
	}
}

func importedUpdate(step, total int, o models.ImportOutcome) ProgressUpdate {
	label := o.Source
	if label == "" {
		label = fmt.Sprintf("#%d", o.Index+1)
	}
	if !o.OK() {
		return itemUpdate(ImportItems, step, total, label, o.Err)
	}
	return ProgressUpdate{
		Phase:   ImportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, label, o.Entry.ID),
		Data:    o.Entry,
	}
}
