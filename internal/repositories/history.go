package repositories

import (
	"fmt"

	"github.com/desertthunder/favdl/internal/models"
)

// HistoryAdapter implements tasks.HistoryRecorder using RunRepository and DownloadRepository.
type HistoryAdapter struct {
	runs      *RunRepository
	downloads *DownloadRepository
}

// NewHistoryAdapter creates a new HistoryAdapter with the given repositories
func NewHistoryAdapter(runs *RunRepository, downloads *DownloadRepository) *HistoryAdapter {
	return &HistoryAdapter{runs: runs, downloads: downloads}
}

// StartRun inserts the run, assigning its ID.
func (a *HistoryAdapter) StartRun(run *models.DownloadRun) error {
	if err := a.runs.Create(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordDownload inserts one segment outcome.
func (a *HistoryAdapter) RecordDownload(rec *models.DownloadRecord) error {
	if err := a.downloads.Create(rec); err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// FinishRun writes the final status and counters of the run.
func (a *HistoryAdapter) FinishRun(run *models.DownloadRun) error {
	if err := a.runs.Update(run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RunDetail is a run together with its recorded outcomes.
type RunDetail struct {
	Run       *models.DownloadRun
	Downloads []*models.DownloadRecord
}

// Run loads a run by ID or ID prefix with every recorded outcome.
func (a *HistoryAdapter) Run(idOrPrefix string) (*RunDetail, error) {
	run, err := a.runs.Get(idOrPrefix)
	if err != nil {
		if run, err = a.runs.FindByPrefix(idOrPrefix); err != nil {
			return nil, err
		}
	}

	downloads, err := a.downloads.List(map[string]any{"run_id": run.ID()})
	if err != nil {
		return nil, err
	}
	return &RunDetail{Run: run, Downloads: downloads}, nil
}

// Recent lists the latest runs, newest first.
func (a *HistoryAdapter) Recent(limit int) ([]*models.DownloadRun, error) {
	return a.runs.List(map[string]any{"limit": limit})
}
