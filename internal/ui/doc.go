// Package ui implements an interactive photo gallery using bubbletea's Elm architecture.
//
// The gallery moves between a few views:
//  1. [GalleryView] : Browse the local photos, mark a selection, capture new photos
//  2. [DetailView] : Inspect one photo
//  3. [ConfirmDeleteView] : Confirm deleting the selection
//  4. [BusyView] : Follow a capture or batch operation in progress
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg
// union type. Progress updates flow through a channel from the capture pipeline or batch coordinator, and the
// final result arrives once that channel closes.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
