// package models defines the data model for the capture and gallery services
package models

import (
	"slices"
	"strings"
	"time"
)

// Blob is an encoded image and its content type.
//
// Name is optional: the repository identifier or source file name when the bytes came from one.
type Blob struct {
	Name        string
	Data        []byte
	ContentType string
}

// Size returns the number of bytes in the blob.
func (b Blob) Size() int { return len(b.Data) }

// CapturedImage is the image fetched from the device after a trigger.
type CapturedImage = Blob

// Ack is returned by a successful capture trigger.
type Ack struct {
	StatusCode int
	ReceivedAt time.Time
}

// Entry is one persisted image in the local repository.
type Entry struct {
	ID        string    `json:"id"`         // file name, unique within the repository
	Path      string    `json:"path"`       // absolute path on disk
	Size      int64     `json:"size"`       // size in bytes
	CreatedAt time.Time `json:"created_at"` // from storage metadata
}

// Listing is a snapshot of repository entries sorted by ID.
type Listing struct {
	Entries []Entry   `json:"entries"`
	TakenAt time.Time `json:"taken_at"`
}

// NewListing sorts entries by ID and stamps the snapshot time.
func NewListing(entries []Entry, at time.Time) Listing {
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
	return Listing{Entries: entries, TakenAt: at}
}

// Len returns the number of entries.
func (l Listing) Len() int { return len(l.Entries) }

// IDs returns entry identifiers in listing order.
func (l Listing) IDs() []string {
	ids := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		ids[i] = e.ID
	}
	return ids
}

// Contains reports whether id was present when the snapshot was taken.
func (l Listing) Contains(id string) bool {
	_, ok := l.Find(id)
	return ok
}

// Find returns the entry with id.
func (l Listing) Find(id string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
