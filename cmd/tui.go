package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/formatter"
	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
	"github.com/desertthunder/favdl/internal/ui"
)

// TUI launches the interactive terminal UI: list the collection, pick entries, download with a live progress bar.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	mediaID := cmd.String("id")
	opts := r.downloadOpts(cmd, mediaID)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(filepath.Join(os.TempDir(), "favdl-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(shared.WithLogger(fileLogger, "media_id", mediaID))

	var history tasks.HistoryRecorder
	if !cmd.Bool("no-history") {
		db, adapter, err := r.openHistory()
		if err != nil {
			r.logger.Warn("download history disabled", "error", err)
		} else {
			defer db.Close()
			history = adapter
		}
	}

	updates := make(chan tasks.ProgressUpdate, 64)
	model := ui.NewModel(ctx, r.engine(history, updates), ui.Options{
		MediaID:    mediaID,
		Credential: r.credential(),
		Download:   opts,
		Selection:  cmd.String("select"),
		Updates:    updates,
	})

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		return err
	}
	if result := model.Result(); result != nil {
		r.writePlain("%s", formatter.SummaryText(result.Manifest()))
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
	}
	return nil
}
