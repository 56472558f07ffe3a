package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
)

// byteFetcher is implemented by services that can download arbitrary URLs, such as folder covers.
type byteFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// fetchCollection lists a collection, tolerating a listing cut short by [api] max_pages.
func (r *Runner) fetchCollection(ctx context.Context, engine *tasks.Engine, mediaID string) (*tasks.CollectionResult, error) {
	result, err := engine.FetchCollection(ctx, mediaID, r.credential())
	if errors.Is(err, shared.ErrPageLimit) {
		r.logger.Warn("listing stopped at page limit, continuing with a partial collection",
			"media_id", mediaID, "pages", result.Pages, "entries", len(result.Entries))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", mediaID, err)
	}
	return result, nil
}

// CollectionList prints every entry of a collection.
func (r *Runner) CollectionList(ctx context.Context, cmd *cli.Command) error {
	mediaID := cmd.String("id")
	r.logger.Info("listing collection", "media_id", mediaID)

	result, err := r.fetchCollection(ctx, r.engine(nil, nil), mediaID)
	if err != nil {
		return err
	}

	pretty := cmd.Bool("pretty")
	if cmd.Bool("json") || pretty {
		return r.writeJSON(result.Collection(), pretty)
	}

	title := result.Info.Title
	if title == "" {
		title = "Collection " + mediaID
	}
	r.writePlainHeader(title)
	if result.Info.Owner != "" {
		r.writePlain("Owner: %s\n", result.Info.Owner)
	}
	r.writePlain("Entries: %d (%d pages)\n\n", len(result.Entries), result.Pages)

	for i, e := range result.Entries {
		r.writePlain("%3d. %s - %s [%s]", i+1, e.Author, e.Title, shared.FormatDuration(e.Duration))
		if e.PageCount > 1 {
			r.writePlain(" (%d parts)", e.PageCount)
		}
		r.writePlain("  %s\n", e.ID)
	}
	return nil
}

// CollectionExport writes one or more collections to files.
func (r *Runner) CollectionExport(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
	}
	if cmd.Bool("cover") {
		if f, ok := r.service().(byteFetcher); ok {
			opts.FetchCover = f.FetchBytes
		}
	}

	ids := cmd.StringSlice("id")
	r.logger.Info("exporting collections", "count", len(ids), "format", opts.Format)

	result, err := r.engine(nil, nil).ExportCollections(ctx, ids, r.credential(), opts)
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Output: %s\n", result.OutputDir)
	r.writePlain("Collections: %d/%d exported\n\n", result.Successful, result.Total)

	for _, res := range result.Results {
		if res.Err != nil {
			r.writePlain("  ✗ %s: %v\n", res.MediaID, res.Err)
			continue
		}
		note := ""
		if res.Partial {
			note = " (partial)"
		}
		r.writePlain("  ✓ %s %s: %d entries%s\n", res.MediaID, res.Title, res.Entries, note)
		for _, f := range res.Files {
			r.writePlain("      %s\n", f)
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d collections failed to export", result.Failed, result.Total)
	}
	return nil
}
