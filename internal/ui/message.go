package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favdl/internal/tasks"
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
	MsgCollectionFetched MsgKind = iota
	MsgProgressUpdate
	MsgProgressTick
	MsgDownloadComplete
)

type collectionFetched struct {
	result *tasks.CollectionResult
	err    error
}

// collectionFetchedMsg is the constructor for [MsgCollectionFetched]
func collectionFetchedMsg(result *tasks.CollectionResult, err error) Msg {
	return Msg{kind: MsgCollectionFetched, data: collectionFetched{result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// progressTickMsg is the constructor for [MsgProgressTick]
func progressTickMsg(snap tasks.ProgressSnapshot) Msg {
	return Msg{kind: MsgProgressTick, data: snap}
}

// downloadCompleteMsg is the constructor for [MsgDownloadComplete]
func downloadCompleteMsg(result *tasks.DownloadRunResult) Msg {
	return Msg{kind: MsgDownloadComplete, data: result}
}
