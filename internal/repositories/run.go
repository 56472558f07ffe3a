package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
)

const runColumns = `
	id, sequence, media_id, output_dir, status, entries_total, entries_processed,
	segments_downloaded, segments_failed, segments_skipped, started_at, completed_at,
	created_at, updated_at, deleted_at`

// RunRepository implements models.Repository[*models.DownloadRun] for download run tracking.
//
// Handles run CRUD operations with soft delete support and status-based queries.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.DownloadRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO runs (
			id, sequence, media_id, output_dir, status, entries_total, entries_processed,
			segments_downloaded, segments_failed, segments_skipped, started_at, completed_at,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.MediaID(),
		run.OutputDir(),
		run.Status(),
		run.EntriesTotal(),
		run.EntriesProcessed(),
		run.SegmentsDownloaded(),
		run.SegmentsFailed(),
		run.SegmentsSkipped(),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.DownloadRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// FindByPrefix retrieves the most recent run whose ID starts with prefix.
func (r *RunRepository) FindByPrefix(prefix string) (*models.DownloadRun, error) {
	if prefix == "" {
		return nil, fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}
	query := `SELECT ` + runColumns + ` FROM runs
		WHERE id LIKE ? || '%' AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1`
	return r.scan(r.db.QueryRow(query, prefix))
}

// Update writes the status, counters and completion time of a run
func (r *RunRepository) Update(run *models.DownloadRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET status = ?, entries_total = ?, entries_processed = ?, segments_downloaded = ?,
			segments_failed = ?, segments_skipped = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.Status(),
		run.EntriesTotal(),
		run.EntriesProcessed(),
		run.SegmentsDownloaded(),
		run.SegmentsFailed(),
		run.SegmentsSkipped(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return checkAffected(result, "run", run.ID())
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return checkAffected(result, "run", id)
}

// List retrieves runs newest first.
//
// Supported criteria: "media_id" (string), "status" ([models.RunStatus] or string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.DownloadRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if mediaID, ok := criteria["media_id"].(string); ok && mediaID != "" {
		query += " AND media_id = ?"
		args = append(args, mediaID)
	}

	switch status := criteria["status"].(type) {
	case models.RunStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.DownloadRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *RunRepository) scan(row scanner) (*models.DownloadRun, error) {
	var (
		id                 string
		sequence           int
		mediaID            string
		outputDir          string
		status             string
		entriesTotal       int
		entriesProcessed   int
		segmentsDownloaded int
		segmentsFailed     int
		segmentsSkipped    int
		startedAt          time.Time
		completedAt        sql.NullTime
		createdAt          time.Time
		updatedAt          time.Time
		deletedAt          sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &mediaID, &outputDir, &status, &entriesTotal, &entriesProcessed,
		&segmentsDownloaded, &segmentsFailed, &segmentsSkipped, &startedAt, &completedAt,
		&createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewDownloadRun(sequence, mediaID, outputDir, entriesTotal)
	run.SetID(id)
	run.SetStatus(models.RunStatus(status))
	run.SetCounts(entriesProcessed, segmentsDownloaded, segmentsFailed, segmentsSkipped)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if completedAt.Valid {
		run.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
