package models

import (
	"fmt"
	"time"
)

// DownloadStatus is the outcome of a single segment download.
type DownloadStatus string

const (
	StatusDownloaded DownloadStatus = "downloaded"
	StatusSkipped    DownloadStatus = "skipped" // No audio stream to download
	StatusFailed     DownloadStatus = "failed"
)

// RunStatus is the lifecycle state of a download run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled"
)

// DownloadRun is a persisted record of one download batch.
type DownloadRun struct {
	baseModel
	mediaID            string
	outputDir          string
	status             RunStatus
	entriesTotal       int
	entriesProcessed   int
	segmentsDownloaded int
	segmentsFailed     int
	segmentsSkipped    int
	startedAt          time.Time
	completedAt        *time.Time
}

// NewDownloadRun creates a running DownloadRun for the given collection and output directory.
func NewDownloadRun(sequence int, mediaID, outputDir string, entriesTotal int) *DownloadRun {
	base := newBaseModel(sequence)
	return &DownloadRun{
		baseModel:    base,
		mediaID:      mediaID,
		outputDir:    outputDir,
		status:       RunRunning,
		entriesTotal: entriesTotal,
		startedAt:    base.createdAt,
	}
}

func (r *DownloadRun) MediaID() string { return r.mediaID }
func (r *DownloadRun) OutputDir() string { return r.outputDir }
func (r *DownloadRun) Status() RunStatus { return r.status }
func (r *DownloadRun) EntriesTotal() int { return r.entriesTotal }
func (r *DownloadRun) EntriesProcessed() int { return r.entriesProcessed }
func (r *DownloadRun) SegmentsDownloaded() int { return r.segmentsDownloaded }
func (r *DownloadRun) SegmentsFailed() int { return r.segmentsFailed }
func (r *DownloadRun) SegmentsSkipped() int { return r.segmentsSkipped }
func (r *DownloadRun) StartedAt() time.Time { return r.startedAt }
func (r *DownloadRun) CompletedAt() *time.Time { return r.completedAt }
func (r *DownloadRun) SetStatus(s RunStatus) { r.status = s }
func (r *DownloadRun) SetStartedAt(t time.Time) { r.startedAt = t }

// SetCounts records the per-run totals.
func (r *DownloadRun) SetCounts(processed, downloaded, failed, skipped int) {
	r.entriesProcessed = processed
	r.segmentsDownloaded = downloaded
	r.segmentsFailed = failed
	r.segmentsSkipped = skipped
}

// SetEntriesTotal sets the number of entries scheduled for the run.
func (r *DownloadRun) SetEntriesTotal(n int) { r.entriesTotal = n }

// Complete marks the run finished with the given terminal status.
func (r *DownloadRun) Complete(status RunStatus, at time.Time) {
	r.status = status
	r.completedAt = &at
}

// SetCompletedAt sets the completion time, nil for a run still in progress.
func (r *DownloadRun) SetCompletedAt(t *time.Time) { r.completedAt = t }

// Validate checks required fields and status.
func (r *DownloadRun) Validate() error {
	if r.mediaID == "" {
		return fmt.Errorf("media id is required")
	}
	switch r.status {
	case RunRunning, RunCompleted, RunCancelled:
	default:
		return fmt.Errorf("invalid run status: %q", r.status)
	}
	if r.entriesTotal < 0 || r.entriesProcessed > r.entriesTotal {
		return fmt.Errorf("invalid entry counts: %d of %d", r.entriesProcessed, r.entriesTotal)
	}
	return nil
}

// DownloadRecord is a persisted per-segment outcome.
type DownloadRecord struct {
	baseModel
	runID        string
	bvid         string
	cid          int64
	title        string
	part         string
	author       string
	path         string
	status       DownloadStatus
	errorKind    string
	errorMessage string
	bytes        int64
}

// NewDownloadRecord creates a DownloadRecord for one segment of an entry.
//
// cid is 0 when the failure happened before segments were listed.
func NewDownloadRecord(sequence int, runID string, entry Entry, segment Segment) *DownloadRecord {
	return &DownloadRecord{
		baseModel: newBaseModel(sequence),
		runID:     runID,
		bvid:      entry.ID,
		cid:       segment.CID,
		title:     entry.Title,
		part:      segment.Name,
		author:    entry.Author,
	}
}

func (d *DownloadRecord) RunID() string { return d.runID }
func (d *DownloadRecord) BVID() string { return d.bvid }
func (d *DownloadRecord) CID() int64 { return d.cid }
func (d *DownloadRecord) Title() string { return d.title }
func (d *DownloadRecord) Part() string { return d.part }
func (d *DownloadRecord) Author() string { return d.author }
func (d *DownloadRecord) Path() string { return d.path }
func (d *DownloadRecord) Status() DownloadStatus { return d.status }
func (d *DownloadRecord) ErrorKind() string { return d.errorKind }
func (d *DownloadRecord) ErrorMessage() string { return d.errorMessage }
func (d *DownloadRecord) Bytes() int64 { return d.bytes }
func (d *DownloadRecord) SetPath(p string) { d.path = p }
func (d *DownloadRecord) SetBytes(n int64) { d.bytes = n }

// SetStatus sets the outcome status.
func (d *DownloadRecord) SetStatus(s DownloadStatus) { d.status = s }

// SetError records the failure classification and message.
func (d *DownloadRecord) SetError(kind, message string) {
	d.errorKind = kind
	d.errorMessage = message
}

// Validate checks required fields and status.
func (d *DownloadRecord) Validate() error {
	if d.runID == "" {
		return fmt.Errorf("run id is required")
	}
	if d.bvid == "" {
		return fmt.Errorf("bvid is required")
	}
	switch d.status {
	case StatusDownloaded, StatusSkipped, StatusFailed:
	default:
		return fmt.Errorf("invalid download status: %q", d.status)
	}
	if d.status == StatusFailed && d.errorKind == "" {
		return fmt.Errorf("failed download requires an error kind")
	}
	return nil
}
