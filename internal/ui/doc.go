// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the household:
//  1. [MenuView] : Pick a collection or the due report
//  2. [ItemsView] : Browse entities within a collection
//  3. [DetailView] : Inspect one entity
//  4. [SyncView] : Monitor pull/push progress against the relays
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the HomeEngine, providing non-blocking status reporting during syncs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
