// package tasks implements the collection download pipeline.
//
// The core abstraction is Engine, which paginates a collection and downloads the audio of each entry.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/shared"
)

// HistoryRecorder persists download outcomes.
//
// Errors are logged and otherwise ignored so that history never disrupts a run.
type HistoryRecorder interface {
	StartRun(run *models.DownloadRun) error
	RecordDownload(record *models.DownloadRecord) error
	FinishRun(run *models.DownloadRun) error
}

// EngineOpts contains optional collaborators for an [Engine].
type EngineOpts struct {
	Logger   *log.Logger           // Defaults to a discarding logger
	History  HistoryRecorder       // Optional download history
	Updates  chan<- ProgressUpdate // Optional non-blocking progress events
	MaxPages int                   // Pagination cap, 0 for none
}

// Engine drives the platform [services.Service] through pagination and downloads.
//
// Download must not be invoked concurrently on the same Engine.
type Engine struct {
	svc      services.Service
	progress *Progress
	logger   *log.Logger
	history  HistoryRecorder
	updates  chan<- ProgressUpdate
	maxPages int
}

// CollectionResult contains every entry of a collection, in page order.
type CollectionResult struct {
	Info    models.CollectionInfo
	Entries []models.Entry
	Pages   int // Number of pages fetched
}

// Collection returns the result as a [models.Collection].
func (r *CollectionResult) Collection() *models.Collection {
	return &models.Collection{Info: r.Info, Entries: r.Entries}
}

// NewEngine creates a new Engine. progress may be nil, in which case the engine owns a fresh counter.
func NewEngine(svc services.Service, progress *Progress, opts EngineOpts) *Engine {
	if progress == nil {
		progress = NewProgress()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &Engine{
		svc:      svc,
		progress: progress,
		logger:   opts.Logger,
		history:  opts.History,
		updates:  opts.Updates,
		maxPages: opts.MaxPages,
	}
}

// Progress returns the shared progress handle.
func (e *Engine) Progress() *Progress {
	return e.progress
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(update ProgressUpdate) {
	if e.updates == nil {
		return
	}
	select {
	case e.updates <- update:
	default:
	}
}

// FetchCollection pages through a collection until the platform reports no more pages.
//
// Any page failure aborts the listing. When MaxPages is set and reached while
// has_more is still true, the entries fetched so far are returned with [shared.ErrPageLimit].
func (e *Engine) FetchCollection(ctx context.Context, mediaID string, credential services.Credential) (*CollectionResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: platform service not initialized", shared.ErrServiceUnavailable)
	}
	if mediaID == "" {
		return nil, fmt.Errorf("%w: collection id", shared.ErrMissingArgument)
	}

	if err := e.svc.Authenticate(ctx, credential.Map()); err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	result := &CollectionResult{}
	hasMore := true
	for page := 1; hasMore; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("collection listing cancelled: %w", err)
		}
		if e.maxPages > 0 && page > e.maxPages {
			return result, fmt.Errorf("%w: stopped after %d pages", shared.ErrPageLimit, e.maxPages)
		}

		resp, err := e.svc.ListCollectionPage(ctx, mediaID, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		if page == 1 {
			result.Info = resp.Info
		}
		result.Entries = append(result.Entries, resp.Entries...)
		result.Pages = page
		hasMore = resp.HasMore

		e.logger.Debug("fetched collection page", "media_id", mediaID, "page", page, "entries", len(resp.Entries), "has_more", hasMore)
		e.sendProgress(fetchPageUpdate(page, len(result.Entries), result.Info))
	}

	return result, nil
}
