// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for downloading a collection:
//  1. [LoadingView] : Paginate the collection listing
//  2. [EntryListView] : Select entries (toggle, all, invert, clear)
//  3. [ConfirmView] : Confirm the download
//  4. [DownloadView] : Poll the shared progress counter and render a progress bar
//  5. [ResultView] : Display per-run counts and failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The download view polls tasks.Progress on a tick and optionally drains the engine's update channel for status lines.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
