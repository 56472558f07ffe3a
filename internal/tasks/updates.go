package tasks

import (
	"fmt"

	"github.com/desertthunder/favdl/internal/models"
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
	FetchCollection Phase = iota
	ListSegments
	DownloadSegment
	EntryDone
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchCollection:
		return "fetch_collection"
	case ListSegments:
		return "list_segments"
	case DownloadSegment:
		return "download_segment"
	case EntryDone:
		return "entry_done"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchPageUpdate(page, fetched int, info models.CollectionInfo) ProgressUpdate {
	total := info.MediaCount
	if total < fetched {
		total = fetched
	}
	return ProgressUpdate{
		Phase:   FetchCollection,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("Fetched page %d of %q (%d/%d entries)", page, info.Title, fetched, total),
		Data:    info,
	}
}

func listSegmentsUpdate(step, total int, entry models.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListSegments,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Author, entry.Title),
		Data:    entry,
	}
}

func downloadSegmentUpdate(step, total int, filename string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadSegment,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading %s", step, total, filename),
	}
}

func entryDoneUpdate(step, total int, outcome EntryOutcome) ProgressUpdate {
	mark := "✓"
	if !outcome.OK() {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   EntryDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, outcome.Entry.Title),
		Data:    outcome,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
	}
}
