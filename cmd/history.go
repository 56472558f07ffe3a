package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/server"
)

type downloadView struct {
	BVID      string `json:"bvid"`
	CID       int64  `json:"cid,omitempty"`
	Title     string `json:"title"`
	Part      string `json:"part,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
}

type runDetailView struct {
	server.RunResponse
	Downloads []downloadView `json:"downloads"`
}

// History lists recent download runs, or one run in detail with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	if id := cmd.String("run"); id != "" {
		detail, err := history.Run(id)
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", id, err)
		}
		return r.writeRunDetail(detail.Run, detail.Downloads, cmd.Bool("json"))
	}

	runs, err := history.Recent(cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]server.RunResponse, 0, len(runs))
		for _, run := range runs {
			out = append(out, server.NewRunResponse(run))
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		r.writePlain("No download runs recorded\n")
		return nil
	}

	r.writePlainHeader("Download History")
	for _, run := range runs {
		r.writePlain("#%-4d %s  %-9s media %s  %d/%d entries  %d ok, %d failed, %d skipped  %s\n",
			run.Sequence(), shortID(run.ID()), run.Status(), run.MediaID(),
			run.EntriesProcessed(), run.EntriesTotal(),
			run.SegmentsDownloaded(), run.SegmentsFailed(), run.SegmentsSkipped(),
			run.StartedAt().Local().Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func (r *Runner) writeRunDetail(run *models.DownloadRun, downloads []*models.DownloadRecord, asJSON bool) error {
	if asJSON {
		view := runDetailView{RunResponse: server.NewRunResponse(run), Downloads: make([]downloadView, 0, len(downloads))}
		for _, d := range downloads {
			view.Downloads = append(view.Downloads, downloadView{
				BVID:      d.BVID(),
				CID:       d.CID(),
				Title:     d.Title(),
				Part:      d.Part(),
				Path:      d.Path(),
				Status:    string(d.Status()),
				ErrorKind: d.ErrorKind(),
				Error:     d.ErrorMessage(),
				Bytes:     d.Bytes(),
			})
		}
		return r.writeJSON(view, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run %s", run.ID()))
	r.writePlain("Collection: %s\n", run.MediaID())
	r.writePlain("Output: %s\n", run.OutputDir())
	r.writePlain("Status: %s\n", run.Status())
	r.writePlain("Entries: %d/%d processed\n", run.EntriesProcessed(), run.EntriesTotal())
	r.writePlain("Segments: %d downloaded, %d failed, %d skipped\n\n",
		run.SegmentsDownloaded(), run.SegmentsFailed(), run.SegmentsSkipped())

	for _, d := range downloads {
		label := d.Title()
		if d.Part() != "" {
			label += " / " + d.Part()
		}
		switch d.Status() {
		case models.StatusDownloaded:
			r.writePlain("  ✓ %s -> %s\n", label, d.Path())
		case models.StatusFailed:
			r.writePlain("  ✗ %s [%s] %s\n", label, d.ErrorKind(), d.ErrorMessage())
		default:
			r.writePlain("  - %s [%s]\n", label, d.Status())
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
