package models

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestListing(t *testing.T) {
	at := time.Now()
	listing := NewListing([]Entry{
		{ID: "photo_3.jpg"},
		{ID: "photo_1.jpg"},
		{ID: "photo_2.jpg"},
	}, at)

	t.Run("sorted by id", func(t *testing.T) {
		want := []string{"photo_1.jpg", "photo_2.jpg", "photo_3.jpg"}
		if got := listing.IDs(); !slices.Equal(got, want) {
			t.Errorf("IDs() = %v, want %v", got, want)
		}
	})

	t.Run("Contains", func(t *testing.T) {
		if !listing.Contains("photo_2.jpg") {
			t.Error("expected photo_2.jpg to be listed")
		}
		if listing.Contains("photo_9.jpg") {
			t.Error("photo_9.jpg should not be listed")
		}
	})

	t.Run("Len and TakenAt", func(t *testing.T) {
		if listing.Len() != 3 {
			t.Errorf("Len() = %d, want 3", listing.Len())
		}
		if !listing.TakenAt.Equal(at) {
			t.Error("TakenAt should be preserved")
		}
	})
}

func TestBatchResult(t *testing.T) {
	r := BatchResult{Succeeded: 2, Skipped: 1, Failed: 1, Errors: []ItemError{{ID: "photo_1.jpg", Err: errors.New("boom")}}}

	if r.Total() != 4 {
		t.Errorf("Total() = %d, want 4", r.Total())
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"error":"boom"`) {
		t.Errorf("expected error message in JSON, got %s", data)
	}
}

func TestItemError(t *testing.T) {
	t.Run("wraps the cause", func(t *testing.T) {
		cause := errors.New("boom")
		e := ItemError{ID: "photo_1.jpg", Err: cause}
		if e.Error() != "photo_1.jpg: boom" {
			t.Errorf("Error() = %q", e.Error())
		}
		if !errors.Is(e, cause) {
			t.Error("expected errors.Is to reach the cause")
		}
	})

	t.Run("zero value", func(t *testing.T) {
		var e ItemError
		if got := e.Error(); got != ": failed" {
			t.Errorf("Error() = %q, want %q", got, ": failed")
		}

		data, err := json.Marshal(ItemError{ID: "photo_2.jpg"})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"id":"photo_2.jpg","error":""}` {
			t.Errorf("unexpected JSON %s", data)
		}
	})
}

func TestImportResult(t *testing.T) {
	r := ImportResult{Outcomes: []ImportOutcome{
		{Index: 0, Entry: &Entry{ID: "photo_1.jpg"}},
		{Index: 1, Err: errors.New("disk full")},
		{Index: 2, Entry: &Entry{ID: "photo_2.jpg"}},
	}}

	if r.Succeeded() != 2 || r.Failed() != 1 {
		t.Errorf("got %d succeeded, %d failed", r.Succeeded(), r.Failed())
	}

	var ids []string
	for _, e := range r.Entries() {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []string{"photo_1.jpg", "photo_2.jpg"}) {
		t.Errorf("Entries() = %v", ids)
	}
}
