package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createRun(t *testing.T, repo *RunRepository, mediaID string) *models.DownloadRun {
	t.Helper()
	run := models.NewDownloadRun(0, mediaID, "/tmp/out", 3)
	if err := repo.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func newRecord(runID, bvid string, cid int64, status models.DownloadStatus) *models.DownloadRecord {
	rec := models.NewDownloadRecord(0, runID,
		models.Entry{ID: bvid, Title: "Song", Author: "Singer"},
		models.Segment{CID: cid, Name: "P1"},
	)
	rec.SetStatus(status)
	if status == models.StatusFailed {
		rec.SetError("transport", "fetch audio: unexpected status 403")
	}
	if status == models.StatusDownloaded {
		rec.SetPath("/tmp/out/Song - P1 - Singer.aac")
		rec.SetBytes(1024)
	}
	return rec
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := createRun(t, repo, "12345")

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if err := repo.Create(models.NewDownloadRun(0, "", "/tmp", 1)); err == nil {
			t.Fatal("expected validation error for empty media id")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := createRun(t, repo, "12345")

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.MediaID() != "12345" || got.OutputDir() != "/tmp/out" || got.EntriesTotal() != 3 {
			t.Errorf("unexpected run %+v", got)
		}
		if got.Status() != models.RunRunning || got.CompletedAt() != nil {
			t.Errorf("expected running run, got %s", got.Status())
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("nonexistent-id"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := createRun(t, repo, "12345")

		run.SetCounts(3, 4, 1, 1)
		run.Complete(models.RunCompleted, time.Now())
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status() != models.RunCompleted || got.CompletedAt() == nil {
			t.Errorf("expected completed run, got %s", got.Status())
		}
		if got.EntriesProcessed() != 3 || got.SegmentsDownloaded() != 4 || got.SegmentsFailed() != 1 || got.SegmentsSkipped() != 1 {
			t.Errorf("unexpected counts %d %d %d %d", got.EntriesProcessed(), got.SegmentsDownloaded(), got.SegmentsFailed(), got.SegmentsSkipped())
		}
	})

	t.Run("Update NotFound", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewDownloadRun(0, "1", "/tmp", 0)
		run.SetID("nonexistent-id")
		if err := repo.Update(run); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := createRun(t, repo, "12345")

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("deleted run should not be retrievable")
		}
		if err := repo.Delete(run.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		first := createRun(t, repo, "1")
		createRun(t, repo, "2")
		third := createRun(t, repo, "1")

		first.Complete(models.RunCancelled, time.Now())
		if err := repo.Update(first); err != nil {
			t.Fatal(err)
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 || all[0].ID() != third.ID() {
			t.Errorf("expected 3 runs newest first, got %d", len(all))
		}

		byMedia, _ := repo.List(map[string]any{"media_id": "1"})
		if len(byMedia) != 2 {
			t.Errorf("expected 2 runs for media 1, got %d", len(byMedia))
		}

		cancelled, _ := repo.List(map[string]any{"status": models.RunCancelled})
		if len(cancelled) != 1 || cancelled[0].ID() != first.ID() {
			t.Errorf("expected the cancelled run, got %d", len(cancelled))
		}

		limited, _ := repo.List(map[string]any{"limit": 2})
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}
	})

	t.Run("FindByPrefix", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := createRun(t, repo, "12345")

		got, err := repo.FindByPrefix(run.ID()[:8])
		if err != nil {
			t.Fatalf("FindByPrefix failed: %v", err)
		}
		if got.ID() != run.ID() {
			t.Errorf("expected %s, got %s", run.ID(), got.ID())
		}
		if _, err := repo.FindByPrefix("zzzz"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := repo.FindByPrefix(""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestDownloadRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		repo := NewDownloadRepository(db)

		rec := newRecord(run.ID(), "BV1aa", 101, models.StatusDownloaded)
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		if rec.ID() == "" {
			t.Fatal("download ID should be set after creation")
		}

		got, err := repo.Get(rec.ID())
		if err != nil {
			t.Fatalf("failed to get download: %v", err)
		}
		if got.RunID() != run.ID() || got.BVID() != "BV1aa" || got.CID() != 101 || got.Part() != "P1" {
			t.Errorf("unexpected record %+v", got)
		}
		if got.Status() != models.StatusDownloaded || got.Bytes() != 1024 || got.Path() == "" {
			t.Errorf("unexpected outcome %s %d %q", got.Status(), got.Bytes(), got.Path())
		}
		if got.ErrorKind() != "" || got.ErrorMessage() != "" {
			t.Errorf("expected no error, got %q %q", got.ErrorKind(), got.ErrorMessage())
		}
	})

	t.Run("Failed record keeps error", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		repo := NewDownloadRepository(db)

		rec := newRecord(run.ID(), "BV1aa", 101, models.StatusFailed)
		if err := repo.Create(rec); err != nil {
			t.Fatalf("failed to create download: %v", err)
		}
		got, err := repo.Get(rec.ID())
		if err != nil {
			t.Fatal(err)
		}
		if got.ErrorKind() != "transport" || got.ErrorMessage() != "fetch audio: unexpected status 403" {
			t.Errorf("unexpected error fields %q %q", got.ErrorKind(), got.ErrorMessage())
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		rec := newRecord(run.ID(), "BV1aa", 1, models.StatusFailed)
		rec.SetError("", "")
		if err := NewDownloadRepository(db).Create(rec); err == nil {
			t.Fatal("expected validation error for failed record without kind")
		}
	})

	t.Run("Unknown run violates foreign key", func(t *testing.T) {
		repo := NewDownloadRepository(setupTestDB(t))
		if err := repo.Create(newRecord("missing-run", "BV1aa", 1, models.StatusSkipped)); err == nil {
			t.Fatal("expected foreign key error")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		repo := NewDownloadRepository(db)

		rec := newRecord(run.ID(), "BV1aa", 1, models.StatusFailed)
		if err := repo.Create(rec); err != nil {
			t.Fatal(err)
		}

		rec.SetStatus(models.StatusDownloaded)
		rec.SetError("", "")
		rec.SetPath("/tmp/a.aac")
		rec.SetBytes(7)
		if err := repo.Update(rec); err != nil {
			t.Fatalf("failed to update download: %v", err)
		}

		got, _ := repo.Get(rec.ID())
		if got.Status() != models.StatusDownloaded || got.ErrorKind() != "" || got.Bytes() != 7 {
			t.Errorf("unexpected record after update %s %q %d", got.Status(), got.ErrorKind(), got.Bytes())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		repo := NewDownloadRepository(db)

		rec := newRecord(run.ID(), "BV1aa", 1, models.StatusSkipped)
		if err := repo.Create(rec); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(rec.ID()); err != nil {
			t.Fatalf("failed to delete download: %v", err)
		}
		if _, err := repo.Get(rec.ID()); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("List and LatestDownloaded", func(t *testing.T) {
		db := setupTestDB(t)
		runs := NewRunRepository(db)
		runA := createRun(t, runs, "1")
		runB := createRun(t, runs, "1")
		repo := NewDownloadRepository(db)

		for _, rec := range []*models.DownloadRecord{
			newRecord(runA.ID(), "BV1aa", 1, models.StatusDownloaded),
			newRecord(runA.ID(), "BV1bb", 1, models.StatusFailed),
			newRecord(runB.ID(), "BV1bb", 1, models.StatusDownloaded),
		} {
			if err := repo.Create(rec); err != nil {
				t.Fatal(err)
			}
		}

		inA, err := repo.List(map[string]any{"run_id": runA.ID()})
		if err != nil {
			t.Fatalf("failed to list downloads: %v", err)
		}
		if len(inA) != 2 || inA[0].BVID() != "BV1aa" || inA[1].BVID() != "BV1bb" {
			t.Errorf("expected 2 records in insertion order, got %d", len(inA))
		}

		failed, _ := repo.List(map[string]any{"status": models.StatusFailed})
		if len(failed) != 1 {
			t.Errorf("expected 1 failed record, got %d", len(failed))
		}

		bb, _ := repo.List(map[string]any{"bvid": "BV1bb", "limit": 1})
		if len(bb) != 1 {
			t.Errorf("expected 1 record, got %d", len(bb))
		}

		latest, err := repo.LatestDownloaded("BV1bb", 1)
		if err != nil {
			t.Fatalf("LatestDownloaded failed: %v", err)
		}
		if latest.RunID() != runB.ID() {
			t.Errorf("expected record from second run, got %s", latest.RunID())
		}
		if _, err := repo.LatestDownloaded("BV1cc", 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Deleting run cascades", func(t *testing.T) {
		db := setupTestDB(t)
		run := createRun(t, NewRunRepository(db), "1")
		repo := NewDownloadRepository(db)
		if err := repo.Create(newRecord(run.ID(), "BV1aa", 1, models.StatusSkipped)); err != nil {
			t.Fatal(err)
		}

		if _, err := db.Exec("DELETE FROM runs WHERE id = ?", run.ID()); err != nil {
			t.Fatal(err)
		}
		records, _ := repo.List(map[string]any{})
		if len(records) != 0 {
			t.Errorf("expected cascade delete, got %d records", len(records))
		}
	})
}

func TestHistoryAdapter(t *testing.T) {
	db := setupTestDB(t)
	history := NewHistoryAdapter(NewRunRepository(db), NewDownloadRepository(db))

	run := models.NewDownloadRun(0, "12345", "/tmp/out", 2)
	if err := history.StartRun(run); err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.ID() == "" {
		t.Fatal("StartRun should assign an ID")
	}

	for _, rec := range []*models.DownloadRecord{
		newRecord(run.ID(), "BV1aa", 1, models.StatusDownloaded),
		newRecord(run.ID(), "BV1bb", 0, models.StatusFailed),
	} {
		if err := history.RecordDownload(rec); err != nil {
			t.Fatalf("RecordDownload failed: %v", err)
		}
	}

	run.SetCounts(2, 1, 0, 0)
	run.Complete(models.RunCompleted, time.Now())
	if err := history.FinishRun(run); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	detail, err := history.Run(run.ID()[:6])
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if detail.Run.Status() != models.RunCompleted || len(detail.Downloads) != 2 {
		t.Errorf("unexpected detail: %s with %d downloads", detail.Run.Status(), len(detail.Downloads))
	}

	recent, err := history.Recent(10)
	if err != nil || len(recent) != 1 {
		t.Errorf("expected 1 recent run, got %d (%v)", len(recent), err)
	}

	if err := history.RecordDownload(newRecord("unknown", "BV1aa", 1, models.StatusSkipped)); err == nil {
		t.Error("expected error recording against an unknown run")
	}
	if _, err := history.Run("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
