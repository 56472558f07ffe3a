package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/favdl/internal/formatter"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/shared"
)

// ExportOpts contains configuration for exporting collection listings.
type ExportOpts struct {
	Format     string                 // Export format: json, csv, markdown, txt
	OutputDir  string                 // Base output directory (default: favorites_export_{epoch})
	NumWorkers int                    // Concurrent writers (default: 4)
	FetchCover formatter.ImageFetcher // Optional cover fetcher for markdown exports
}

// CollectionExportResult is the outcome of exporting one collection.
type CollectionExportResult struct {
	MediaID string
	Title   string
	Entries int
	Files   []string
	Partial bool // Listing stopped at the page limit
	Err     error
}

// ExportResult summarizes an export of several collections.
type ExportResult struct {
	OutputDir  string
	Total      int
	Successful int
	Failed     int
	Results    []CollectionExportResult
}

type exportJob struct {
	mediaID string
	result  *CollectionResult
	partial bool
}

// ExportCollections lists each collection and writes it to OutputDir in the requested format.
//
// Listings are fetched one at a time through the rate-limited service; files are written by a worker pool.
// A failed collection is recorded and does not stop the others.
func (e *Engine) ExportCollections(ctx context.Context, mediaIDs []string, credential services.Credential, opts ExportOpts) (*ExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: platform service not initialized", shared.ErrServiceUnavailable)
	}
	if len(mediaIDs) == 0 {
		return nil, fmt.Errorf("%w: collection id", shared.ErrMissingArgument)
	}
	if err := formatter.ValidateFormat(opts.Format); err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("favorites_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		OutputDir: opts.OutputDir,
		Total:     len(mediaIDs),
		Results:   make([]CollectionExportResult, 0, len(mediaIDs)),
	}

	jobs := make(chan exportJob, len(mediaIDs))
	results := make(chan CollectionExportResult, len(mediaIDs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, id := range mediaIDs {
			if ctx.Err() != nil {
				return
			}

			listing, err := e.FetchCollection(ctx, id, credential)
			partial := errors.Is(err, shared.ErrPageLimit)
			if err != nil && !partial {
				results <- CollectionExportResult{MediaID: id, Err: err}
				continue
			}
			jobs <- exportJob{mediaID: id, result: listing, partial: partial}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		if res.Err != nil {
			result.Failed++
			e.logger.Warn("collection export failed", "media_id", res.MediaID, "error", res.Err)
			continue
		}
		result.Successful++
		e.logger.Info("collection exported", "media_id", res.MediaID, "entries", res.Entries, "files", len(res.Files))
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled: %w", err)
	}
	return result, nil
}

func (e *Engine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- CollectionExportResult, opts ExportOpts) {
	defer wg.Done()

	for job := range jobs {
		results <- e.exportCollection(ctx, job, opts)
	}
}

func (e *Engine) exportCollection(ctx context.Context, job exportJob, opts ExportOpts) CollectionExportResult {
	c := job.result.Collection()
	res := CollectionExportResult{
		MediaID: job.mediaID,
		Title:   c.Info.Title,
		Entries: len(c.Entries),
		Partial: job.partial,
	}

	var path string
	switch opts.Format {
	case "markdown", "md":
		path = filepath.Join(opts.OutputDir, job.mediaID)
	case "csv", "txt":
		path = filepath.Join(opts.OutputDir, job.mediaID+"."+opts.Format)
	case "text":
		path = filepath.Join(opts.OutputDir, job.mediaID+".txt")
	default:
		path = filepath.Join(opts.OutputDir, job.mediaID+".json")
	}

	files, err := formatter.WriteExport(ctx, c, opts.Format, path, opts.FetchCover)
	if err != nil {
		res.Err = err
		return res
	}
	res.Files = files
	return res
}
