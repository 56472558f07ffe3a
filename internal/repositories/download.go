package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
)

const downloadColumns = `
	id, sequence, run_id, bvid, cid, title, part, author, path, status,
	error_kind, error_message, bytes, created_at, updated_at, deleted_at`

// DownloadRepository implements models.Repository[*models.DownloadRecord] for per-segment outcomes.
type DownloadRepository struct {
	db *sql.DB
}

// NewDownloadRepository creates a new DownloadRepository with the given database connection
func NewDownloadRepository(db *sql.DB) *DownloadRepository {
	return &DownloadRepository{db: db}
}

// Create inserts a new [models.DownloadRecord] into the database with generated ID and sequence
func (r *DownloadRepository) Create(rec *models.DownloadRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "downloads")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO downloads (
			id, sequence, run_id, bvid, cid, title, part, author, path, status,
			error_kind, error_message, bytes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		rec.RunID(),
		rec.BVID(),
		rec.CID(),
		rec.Title(),
		rec.Part(),
		rec.Author(),
		rec.Path(),
		rec.Status(),
		nullString(rec.ErrorKind()),
		nullString(rec.ErrorMessage()),
		rec.Bytes(),
		rec.CreatedAt(),
		rec.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert download: %w", err)
	}

	rec.SetID(id)
	rec.SetSequence(sequence)
	return nil
}

// Get retrieves a download record by ID, excluding soft-deleted records
func (r *DownloadRepository) Get(id string) (*models.DownloadRecord, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// LatestDownloaded returns the most recent successful download of a segment.
func (r *DownloadRepository) LatestDownloaded(bvid string, cid int64) (*models.DownloadRecord, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads
		WHERE bvid = ? AND cid = ? AND status = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1`
	return r.scan(r.db.QueryRow(query, bvid, cid, string(models.StatusDownloaded)))
}

// Update modifies the outcome fields of an existing record
func (r *DownloadRepository) Update(rec *models.DownloadRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	rec.SetUpdatedAt(now)

	query := `
		UPDATE downloads
		SET path = ?, status = ?, error_kind = ?, error_message = ?, bytes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		rec.Path(),
		rec.Status(),
		nullString(rec.ErrorKind()),
		nullString(rec.ErrorMessage()),
		rec.Bytes(),
		now,
		rec.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update download: %w", err)
	}

	return checkAffected(result, "download", rec.ID())
}

// Delete soft-deletes a download record by ID
func (r *DownloadRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE downloads SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete download: %w", err)
	}
	return checkAffected(result, "download", id)
}

// List retrieves records in insertion order.
//
// Supported criteria: "run_id", "bvid" (string), "status" ([models.DownloadStatus] or string), "limit" (int).
func (r *DownloadRepository) List(criteria map[string]any) ([]*models.DownloadRecord, error) {
	query := `SELECT ` + downloadColumns + ` FROM downloads WHERE deleted_at IS NULL`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if bvid, ok := criteria["bvid"].(string); ok && bvid != "" {
		query += " AND bvid = ?"
		args = append(args, bvid)
	}

	switch status := criteria["status"].(type) {
	case models.DownloadStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	case string:
		if status != "" {
			query += " AND status = ?"
			args = append(args, status)
		}
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloads: %w", err)
	}
	defer rows.Close()

	var records []*models.DownloadRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func (r *DownloadRepository) scan(row scanner) (*models.DownloadRecord, error) {
	var (
		id           string
		sequence     int
		runID        string
		bvid         string
		cid          int64
		title        string
		part         string
		author       string
		path         string
		status       string
		errorKind    sql.NullString
		errorMessage sql.NullString
		bytes        int64
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &runID, &bvid, &cid, &title, &part, &author, &path, &status,
		&errorKind, &errorMessage, &bytes, &createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("download %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan download: %w", err)
	}

	entry := models.Entry{ID: bvid, Title: title, Author: author}
	segment := models.Segment{CID: cid, Name: part}

	rec := models.NewDownloadRecord(sequence, runID, entry, segment)
	rec.SetID(id)
	rec.SetPath(path)
	rec.SetStatus(models.DownloadStatus(status))
	rec.SetError(errorKind.String, errorMessage.String)
	rec.SetBytes(bytes)
	rec.SetCreatedAt(createdAt)
	rec.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		rec.SetDeletedAt(&deletedAt.Time)
	}

	return rec, nil
}
