package models

import (
	"encoding/json"
)

// ItemError records why one identifier in a batch failed.
type ItemError struct {
	ID  string
	Err error
}

func (e ItemError) Error() string {
	if e.Err == nil {
		return e.ID + ": failed"
	}
	return e.ID + ": " + e.Err.Error()
}

func (e ItemError) Unwrap() error { return e.Err }

func (e ItemError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		ID    string `json:"id"`
		Error string `json:"error"`
	}{e.ID, msg})
}

// BatchResult summarizes a delete, export or share over a selection.
//
// Skipped counts identifiers that vanished before they were processed.
type BatchResult struct {
	Operation string      `json:"operation"`
	BatchID   string      `json:"batch_id,omitempty"`
	Succeeded int         `json:"succeeded"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// Total returns the number of identifiers the batch covered.
func (r BatchResult) Total() int { return r.Succeeded + r.Skipped + r.Failed }

// ImportOutcome is the result for one input of an import, addressed by its position in the input.
type ImportOutcome struct {
	Index  int
	Source string // blob name, when known
	Entry  *Entry
	Err    error
}

// OK reports whether the input was persisted.
func (o ImportOutcome) OK() bool { return o.Err == nil && o.Entry != nil }

func (o ImportOutcome) MarshalJSON() ([]byte, error) {
	out := struct {
		Index  int    `json:"index"`
		Source string `json:"source,omitempty"`
		Entry  *Entry `json:"entry,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Index: o.Index, Source: o.Source, Entry: o.Entry}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

// ImportResult lists one outcome per input, in input order.
type ImportResult struct {
	BatchID  string          `json:"batch_id"`
	Outcomes []ImportOutcome `json:"outcomes"`
}

// Entries returns the entries created by the import, in input order.
func (r ImportResult) Entries() []Entry {
	entries := make([]Entry, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			entries = append(entries, *o.Entry)
		}
	}
	return entries
}

// Succeeded returns the number of persisted inputs.
func (r ImportResult) Succeeded() int { return len(r.Entries()) }

// Failed returns the number of inputs that were not persisted.
func (r ImportResult) Failed() int { return len(r.Outcomes) - r.Succeeded() }
