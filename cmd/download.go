package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/formatter"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/server"
	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
)

const progressPollInterval = 100 * time.Millisecond

// selectEntries keeps the entries picked by include (all when empty) minus those picked by exclude.
//
// Both expressions are 1-indexed ranges such as "1,3-5". Collection order is preserved.
func selectEntries(entries []models.Entry, include, exclude string) ([]models.Entry, error) {
	n := len(entries)
	picked, err := shared.ParseSelection(include, n)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(exclude) != "" {
		skipped, err := shared.ParseSelection(exclude, n)
		if err != nil {
			return nil, err
		}
		keep := make(map[int]bool, n)
		for _, i := range shared.InvertSelection(skipped, n) {
			keep[i] = true
		}
		filtered := picked[:0]
		for _, i := range picked {
			if keep[i] {
				filtered = append(filtered, i)
			}
		}
		picked = filtered
	}

	selected := make([]models.Entry, 0, len(picked))
	for _, i := range picked {
		selected = append(selected, entries[i])
	}
	return selected, nil
}

// downloadOpts resolves the output directory and manifest flag against the [download] config section.
func (r *Runner) downloadOpts(cmd *cli.Command, mediaID string) tasks.DownloadOpts {
	opts := tasks.DownloadOpts{
		OutputDir: cmd.String("output"),
		MediaID:   mediaID,
		Manifest:  r.config.Download.Manifest,
	}
	if opts.OutputDir == "" {
		opts.OutputDir = r.config.Download.OutputDir
	}
	if cmd.IsSet("manifest") {
		opts.Manifest = cmd.Bool("manifest")
	}
	return opts
}

// Download lists a collection, applies --select/--exclude and downloads the audio of every selected entry.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("tui") {
		return r.TUI(ctx, cmd)
	}

	mediaID := cmd.String("id")
	opts := r.downloadOpts(cmd, mediaID)

	var history tasks.HistoryRecorder
	var lister server.HistoryLister
	if !cmd.Bool("no-history") {
		db, adapter, err := r.openHistory()
		if err != nil {
			r.logger.Warn("download history disabled", "error", err)
		} else {
			defer db.Close()
			history, lister = adapter, adapter
		}
	}

	engine := r.engine(history, nil)
	collection, err := r.fetchCollection(ctx, engine, mediaID)
	if err != nil {
		return err
	}

	entries, err := selectEntries(collection.Entries, cmd.String("select"), cmd.String("exclude"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		r.writePlain("Nothing to download: collection %s has no selected entries\n", mediaID)
		return nil
	}

	if cmd.Bool("serve") {
		srv := server.NewServer(r.serveAddr(cmd), server.NewProgressRouter(r.progress, lister, r.logger), r.logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				r.logger.Warn("progress server shutdown failed", "error", err)
			}
		}()
		r.writePlain("Progress available at http://%s/progress\n", srv.Addr())
	}

	r.writePlain("Downloading %d of %d entries to %s\n", len(entries), len(collection.Entries), opts.OutputDir)
	result := r.downloadWithProgressBar(ctx, engine, entries, opts)

	r.writePlain("\n%s", formatter.SummaryText(result.Manifest()))
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if cmd.Bool("open") {
		if err := shared.OpenPath(opts.OutputDir); err != nil {
			r.logger.Warn("failed to open output directory", "error", err)
		}
	}

	if result.Cancelled {
		return fmt.Errorf("download cancelled after %d/%d entries", result.Processed, result.TotalEntries)
	}
	return nil
}

// serveAddr returns the --addr flag, falling back to the [server] config section.
func (r *Runner) serveAddr(cmd *cli.Command) string {
	if addr := cmd.String("addr"); addr != "" {
		return addr
	}
	return r.config.Server.Addr()
}

// downloadWithProgressBar runs the download while a poller mirrors the shared progress counter into a terminal bar.
func (r *Runner) downloadWithProgressBar(ctx context.Context, engine *tasks.Engine, entries []models.Entry, opts tasks.DownloadOpts) *tasks.DownloadRunResult {
	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetWriter(r.output),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionSetItsString("entry"),
		progressbar.OptionShowIts(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(progressPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Set(r.progress.Snapshot().Value)
			}
		}
	}()

	result := engine.Download(ctx, entries, r.credential(), opts)
	close(done)
	<-stopped

	bar.Set(r.progress.Snapshot().Value)
	if !result.Cancelled {
		bar.Finish()
	}
	r.writePlain("\n")
	return result
}
