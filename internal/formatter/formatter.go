// package formatter renders gallery listings and batch results as text, CSV and JSON, and writes export manifests
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

const timeLayout = "2006-01-02 15:04:05"

// ListingToCSV converts a Listing to CSV format with columns: ID, Size, Created, Path
func ListingToCSV(listing models.Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Size", "Created", "Path"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range listing.Entries {
		record := []string{
			entry.ID,
			strconv.FormatInt(entry.Size, 10),
			entry.CreatedAt.UTC().Format(time.RFC3339),
			entry.Path,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ListingToJSON converts a Listing to indented JSON.
func ListingToJSON(listing models.Listing) ([]byte, error) {
	if listing.Entries == nil {
		listing.Entries = []models.Entry{}
	}
	return shared.MarshalJSON(listing, true)
}

// ListingToText renders a Listing as a table with a count footer.
func ListingToText(listing models.Listing) string {
	if listing.Len() == 0 {
		return "No photos in the gallery.\n"
	}

	rows := make([][]string, 0, listing.Len())
	var total int64
	for _, entry := range listing.Entries {
		rows = append(rows, []string{
			entry.ID,
			shared.HumanSize(entry.Size),
			entry.CreatedAt.Local().Format(timeLayout),
		})
		total += entry.Size
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SIZE", "CAPTURED").
		Rows(rows...)

	var buf strings.Builder
	buf.WriteString(t.String())
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf("%d photo(s), %s\n", listing.Len(), shared.HumanSize(total)))
	return buf.String()
}

// EntryDetail describes a single entry: its identifier and capture date.
func EntryDetail(entry models.Entry) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("ID:       %s\n", entry.ID))
	buf.WriteString(fmt.Sprintf("Captured: %s\n", entry.CreatedAt.Local().Format(timeLayout)))
	buf.WriteString(fmt.Sprintf("Size:     %s\n", shared.HumanSize(entry.Size)))
	buf.WriteString(fmt.Sprintf("Path:     %s\n", entry.Path))
	return buf.String()
}

// BatchSummary renders the counts of a batch result followed by one line per failed item.
func BatchSummary(result models.BatchResult) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%s: %d succeeded, %d skipped, %d failed\n",
		operationLabel(result.Operation), result.Succeeded, result.Skipped, result.Failed))

	for _, itemErr := range result.Errors {
		buf.WriteString(fmt.Sprintf("  ✗ %s: %v\n", itemErr.ID, itemErr.Err))
	}
	return buf.String()
}

// ImportSummary renders an import result with one line per input.
func ImportSummary(result models.ImportResult) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("Import %s: %d succeeded, %d failed\n", result.BatchID, result.Succeeded(), result.Failed()))

	for _, o := range result.Outcomes {
		source := o.Source
		if source == "" {
			source = fmt.Sprintf("#%d", o.Index+1)
		}
		if o.OK() {
			buf.WriteString(fmt.Sprintf("  ✓ %s → %s\n", source, o.Entry.ID))
		} else {
			buf.WriteString(fmt.Sprintf("  ✗ %s: %v\n", source, o.Err))
		}
	}
	return buf.String()
}

func operationLabel(op string) string {
	if op == "" {
		return "Batch"
	}
	return strings.ToUpper(op[:1]) + op[1:]
}

// ExportManifest is the JSON document written next to an export.
type ExportManifest struct {
	BatchID   string             `json:"batch_id"`
	Library   string             `json:"library"`
	CreatedAt time.Time          `json:"created_at"`
	Exported  []string           `json:"exported"`
	Succeeded int                `json:"succeeded"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Errors    []models.ItemError `json:"errors,omitempty"`
}

// NewExportManifest builds a manifest for result; exported lists the identifiers that reached the library.
func NewExportManifest(result models.BatchResult, library string, exported []string) ExportManifest {
	if exported == nil {
		exported = []string{}
	}
	return ExportManifest{
		BatchID:   result.BatchID,
		Library:   library,
		CreatedAt: time.Now().UTC(),
		Exported:  exported,
		Succeeded: result.Succeeded,
		Skipped:   result.Skipped,
		Failed:    result.Failed,
		Errors:    result.Errors,
	}
}

// WriteExportManifest writes manifest as indented JSON to path, creating parent directories.
func WriteExportManifest(manifest ExportManifest, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
