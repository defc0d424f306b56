package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgListingLoaded MsgKind = iota
	MsgProgressUpdate
	MsgCaptureComplete
	MsgBatchComplete
)

type captureOutcome struct {
	result *tasks.CaptureResult
	err    error
}

type batchOutcome struct {
	result models.BatchResult
	err    error
}

// listingLoadedMsg is the constructor for [MsgListingLoaded]
func listingLoadedMsg(listing models.Listing) Msg {
	return Msg{kind: MsgListingLoaded, data: listing}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// captureCompleteMsg is the constructor for [MsgCaptureComplete]
func captureCompleteMsg(result *tasks.CaptureResult, err error) Msg {
	return Msg{kind: MsgCaptureComplete, data: captureOutcome{result, err}}
}

// batchCompleteMsg is the constructor for [MsgBatchComplete]
func batchCompleteMsg(result models.BatchResult, err error) Msg {
	return Msg{kind: MsgBatchComplete, data: batchOutcome{result, err}}
}
