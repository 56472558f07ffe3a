package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favdl/internal/formatter"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/shared"
)

// ManifestFilename is written into the output directory when [DownloadOpts.Manifest] is set.
const ManifestFilename = "download_manifest.json"

// ErrorKind classifies a failed or skipped download.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindTransport   ErrorKind = "transport"
	KindPlatform    ErrorKind = "platform"
	KindLocalCreate ErrorKind = "local_create"
	KindLocalWrite  ErrorKind = "local_write"
	KindNoStream    ErrorKind = "no_stream"
)

// DownloadOpts contains configuration for a download run.
type DownloadOpts struct {
	OutputDir string // Directory receiving <name>.aac files (default: current directory)
	MediaID   string // Collection id, recorded in history and the manifest
	Manifest  bool   // Write download_manifest.json into OutputDir
}

// SegmentOutcome is the result of downloading one segment.
type SegmentOutcome struct {
	Segment  models.Segment
	Filename string // Sanitized file name including extension
	Path     string // Final path, set only when downloaded
	Status   models.DownloadStatus
	Kind     ErrorKind
	Err      error
	Bytes    int64
}

// EntryOutcome is the result of processing one entry.
//
// Err is set when the entry's segments could not be listed.
type EntryOutcome struct {
	Entry    models.Entry
	Segments []SegmentOutcome
	Kind     ErrorKind
	Err      error
}

// OK reports whether the entry was listed and no segment failed.
func (o EntryOutcome) OK() bool {
	if o.Err != nil {
		return false
	}
	for _, s := range o.Segments {
		if s.Status == models.StatusFailed {
			return false
		}
	}
	return true
}

// DownloadRunResult summarizes a download run.
type DownloadRunResult struct {
	RunID         string
	MediaID       string
	OutputDir     string
	TotalEntries  int
	Processed     int // Entries processed, including failed ones
	FailedEntries int // Entries whose segments could not be listed
	Downloaded    int // Segments written to disk
	Failed        int // Segments that failed
	Skipped       int // Segments without an audio stream
	Errors        map[ErrorKind]int
	Entries       []EntryOutcome
	Cancelled     bool
	StartedAt     time.Time
	CompletedAt   time.Time
	ManifestPath  string
	BytesWritten  int64
}

// Duration returns the wall time of the run.
func (r *DownloadRunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

func (r *DownloadRunResult) add(o EntryOutcome) {
	r.Processed++
	r.Entries = append(r.Entries, o)
	if o.Err != nil {
		r.FailedEntries++
		r.Errors[o.Kind]++
	}
	for _, s := range o.Segments {
		switch s.Status {
		case models.StatusDownloaded:
			r.Downloaded++
			r.BytesWritten += s.Bytes
		case models.StatusSkipped:
			r.Skipped++
			r.Errors[s.Kind]++
		case models.StatusFailed:
			r.Failed++
			r.Errors[s.Kind]++
		}
	}
}

// classifyError maps a pipeline error to its [ErrorKind].
func classifyError(err error) ErrorKind {
	var pe *shared.PlatformError
	if errors.As(err, &pe) {
		return KindPlatform
	}
	var le *shared.LocalIOError
	if errors.As(err, &le) {
		if le.Kind == shared.CreateFailed {
			return KindLocalCreate
		}
		return KindLocalWrite
	}
	return KindTransport
}

// Download processes entries sequentially: list segments, resolve each stream and save it as <name>.aac.
//
// Failures are recorded per entry and segment and never stop the run. The progress
// counter is reset to len(entries) and advances by one per entry regardless of outcome.
// Cancellation is checked before each entry.
func (e *Engine) Download(ctx context.Context, entries []models.Entry, credential services.Credential, opts DownloadOpts) *DownloadRunResult {
	snapshot := slices.Clone(entries)
	total := len(snapshot)
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	result := &DownloadRunResult{
		MediaID:      opts.MediaID,
		OutputDir:    opts.OutputDir,
		TotalEntries: total,
		Errors:       make(map[ErrorKind]int),
		Entries:      make([]EntryOutcome, 0, total),
		StartedAt:    time.Now(),
	}
	if e.svc == nil {
		e.logger.Error("platform service not initialized", "entries", total)
		e.progress.Reset(0)
		result.CompletedAt = time.Now()
		return result
	}
	e.progress.Reset(total)

	if err := e.svc.Authenticate(ctx, credential.Map()); err != nil {
		e.logger.Error("failed to set credential", "error", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		e.logger.Error("failed to create output directory", "dir", opts.OutputDir, "error", err)
	}

	run := e.startRun(opts, total)
	result.RunID = run.ID()
	logger := e.logger.With("run", run.ID())
	logger.Info("starting download", "entries", total, "output", opts.OutputDir)

	for i, entry := range snapshot {
		if err := ctx.Err(); err != nil {
			logger.Warn("download cancelled", "processed", result.Processed, "remaining", total-i)
			result.Cancelled = true
			break
		}

		outcome := e.downloadEntry(ctx, logger, run.ID(), i+1, total, entry, opts.OutputDir)
		result.add(outcome)
		e.progress.Increment()
		e.sendProgress(entryDoneUpdate(i+1, total, outcome))
	}

	result.CompletedAt = time.Now()
	e.finishRun(run, result)

	if opts.Manifest {
		path := filepath.Join(opts.OutputDir, ManifestFilename)
		if err := formatter.WriteManifest(result.Manifest(), path); err != nil {
			logger.Error("failed to write manifest", "path", path, "error", err)
		} else {
			result.ManifestPath = path
			e.sendProgress(manifestUpdate(path))
		}
	}

	logger.Info("download finished",
		"processed", result.Processed,
		"downloaded", result.Downloaded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"cancelled", result.Cancelled,
		"elapsed", result.Duration().Round(time.Millisecond),
	)
	return result
}

func (e *Engine) downloadEntry(ctx context.Context, logger *log.Logger, runID string, step, total int, entry models.Entry, outputDir string) EntryOutcome {
	logger = logger.With("entry", entry.ID)
	logger.Debug("processing entry", "step", step, "title", entry.Title, "author", entry.Author)
	e.sendProgress(listSegmentsUpdate(step, total, entry))

	outcome := EntryOutcome{Entry: entry}

	segments, err := e.svc.ListSegments(ctx, entry.ID)
	if err != nil {
		logger.Error("failed to list segments", "error", err)
		outcome.Err = err
		outcome.Kind = classifyError(err)
		e.record(runID, entry, SegmentOutcome{Status: models.StatusFailed, Kind: outcome.Kind, Err: err})
		return outcome
	}
	if len(segments) == 0 {
		logger.Warn("entry has no segments")
	}

	for _, segment := range segments {
		so := e.downloadSegment(ctx, logger, entry, segment, outputDir)
		e.sendProgress(downloadSegmentUpdate(step, total, so.Filename))
		outcome.Segments = append(outcome.Segments, so)
		e.record(runID, entry, so)
	}

	return outcome
}

func (e *Engine) downloadSegment(ctx context.Context, logger *log.Logger, entry models.Entry, segment models.Segment, outputDir string) SegmentOutcome {
	out := SegmentOutcome{
		Segment:  segment,
		Filename: shared.BuildFilename(entry.Title, segment.Name, entry.Author) + shared.AudioExt,
	}
	logger = logger.With("segment", segment.CID)
	logger.Debug("processing segment", "page", segment.Page, "file", out.Filename)

	fail := func(msg string, err error) SegmentOutcome {
		logger.Warn(msg, "error", err)
		out.Status = models.StatusFailed
		out.Kind = classifyError(err)
		out.Err = err
		return out
	}

	desc, err := e.svc.ResolveStream(ctx, entry.ID, segment.CID)
	if err != nil {
		return fail("failed to resolve stream", err)
	}

	audio, ok := desc.FirstAudio()
	if !ok {
		logger.Warn("no audio stream, nothing to download")
		out.Status = models.StatusSkipped
		out.Kind = KindNoStream
		return out
	}

	path := filepath.Join(outputDir, out.Filename)
	n, err := e.save(ctx, audio.URL, path)
	if err != nil {
		return fail("failed to download audio", err)
	}

	logger.Debug("saved segment", "path", path, "bytes", n)
	out.Status = models.StatusDownloaded
	out.Path = path
	out.Bytes = n
	return out
}

// readErr remembers the first non-EOF read error so copy failures can be
// attributed to the network or the disk.
type readErr struct {
	r   io.Reader
	err error
}

func (r *readErr) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF && r.err == nil {
		r.err = err
	}
	return n, err
}

// save streams url into a temporary file next to path and renames it into place.
//
// The temporary file is removed on any failure, so path only ever holds a complete download.
func (e *Engine) save(ctx context.Context, url, path string) (int64, error) {
	body, err := e.svc.FetchAudio(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".favdl-*.part")
	if err != nil {
		return 0, &shared.LocalIOError{Kind: shared.CreateFailed, Path: path, Err: err}
	}
	tmpName := tmp.Name()
	writeFailed := func(err error) (int64, error) {
		os.Remove(tmpName)
		return 0, &shared.LocalIOError{Kind: shared.WriteFailed, Path: path, Err: err}
	}

	src := &readErr{r: body}
	n, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		if src.err != nil {
			return 0, shared.NewTransportError("fetch audio", src.err)
		}
		return 0, &shared.LocalIOError{Kind: shared.WriteFailed, Path: path, Err: err}
	}

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return writeFailed(err)
	}
	if err := tmp.Close(); err != nil {
		return writeFailed(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return writeFailed(err)
	}

	return n, nil
}

func (e *Engine) startRun(opts DownloadOpts, total int) *models.DownloadRun {
	run := models.NewDownloadRun(0, opts.MediaID, opts.OutputDir, total)
	if e.history != nil {
		if err := e.history.StartRun(run); err != nil {
			e.logger.Warn("failed to record run start", "error", err)
		}
	}
	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	return run
}

func (e *Engine) record(runID string, entry models.Entry, so SegmentOutcome) {
	if e.history == nil {
		return
	}

	rec := models.NewDownloadRecord(0, runID, entry, so.Segment)
	rec.SetStatus(so.Status)
	rec.SetPath(so.Path)
	rec.SetBytes(so.Bytes)
	if so.Kind != KindNone {
		msg := ""
		if so.Err != nil {
			msg = so.Err.Error()
		}
		rec.SetError(string(so.Kind), msg)
	}

	if err := e.history.RecordDownload(rec); err != nil {
		e.logger.Debug("failed to record download", "entry", entry.ID, "error", err)
	}
}

func (e *Engine) finishRun(run *models.DownloadRun, result *DownloadRunResult) {
	run.SetCounts(result.Processed, result.Downloaded, result.Failed, result.Skipped)
	status := models.RunCompleted
	if result.Cancelled {
		status = models.RunCancelled
	}
	run.Complete(status, result.CompletedAt)

	if e.history == nil {
		return
	}
	if err := e.history.FinishRun(run); err != nil {
		e.logger.Warn("failed to record run completion", "error", err)
	}
}

// Manifest converts the result into the formatter's manifest document.
func (r *DownloadRunResult) Manifest() *formatter.DownloadManifest {
	m := &formatter.DownloadManifest{
		RunID:         r.RunID,
		MediaID:       r.MediaID,
		OutputDir:     r.OutputDir,
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
		Cancelled:     r.Cancelled,
		TotalEntries:  r.TotalEntries,
		Processed:     r.Processed,
		FailedEntries: r.FailedEntries,
		Downloaded:    r.Downloaded,
		Failed:        r.Failed,
		Skipped:       r.Skipped,
		Errors:        make(map[string]int, len(r.Errors)),
		Items:         []formatter.ManifestItem{},
	}
	for k, v := range r.Errors {
		m.Errors[string(k)] = v
	}

	for _, eo := range r.Entries {
		if eo.Err != nil {
			m.Items = append(m.Items, formatter.ManifestItem{
				BVID:      eo.Entry.ID,
				Title:     eo.Entry.Title,
				Author:    eo.Entry.Author,
				Status:    string(models.StatusFailed),
				ErrorKind: string(eo.Kind),
				Error:     eo.Err.Error(),
			})
			continue
		}
		for _, so := range eo.Segments {
			item := formatter.ManifestItem{
				BVID:      eo.Entry.ID,
				Title:     eo.Entry.Title,
				Author:    eo.Entry.Author,
				CID:       so.Segment.CID,
				Part:      so.Segment.Name,
				File:      so.Filename,
				Status:    string(so.Status),
				ErrorKind: string(so.Kind),
				Bytes:     so.Bytes,
			}
			if so.Err != nil {
				item.Error = so.Err.Error()
			}
			m.Items = append(m.Items, item)
		}
	}
	return m
}
