package models

import (
	"testing"
	"time"
)

func TestDownloadRun(t *testing.T) {
	t.Run("NewDownloadRun", func(t *testing.T) {
		run := NewDownloadRun(1, "123", "/music", 3)
		if run.Status() != RunRunning {
			t.Errorf("expected running status, got %s", run.Status())
		}
		if run.StartedAt().IsZero() {
			t.Error("expected start time to be set")
		}
		if run.CompletedAt() != nil {
			t.Error("new run should not be completed")
		}
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		run := NewDownloadRun(1, "123", "/music", 2)
		run.SetCounts(2, 3, 1, 0)
		now := time.Now()
		run.Complete(RunCompleted, now)

		if run.Status() != RunCompleted {
			t.Errorf("expected completed status, got %s", run.Status())
		}
		if run.CompletedAt() == nil || !run.CompletedAt().Equal(now) {
			t.Errorf("unexpected completion time %v", run.CompletedAt())
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name string
			run  *DownloadRun
		}{
			{"missing media id", NewDownloadRun(1, "", "/music", 1)},
			{"bad status", func() *DownloadRun {
				r := NewDownloadRun(1, "1", "/music", 1)
				r.SetStatus("exploded")
				return r
			}()},
			{"processed exceeds total", func() *DownloadRun {
				r := NewDownloadRun(1, "1", "/music", 1)
				r.SetCounts(2, 0, 0, 0)
				return r
			}()},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.run.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestDownloadRecord(t *testing.T) {
	entry := Entry{ID: "BV1xx", Title: "Song", Author: "Uploader"}
	segment := Segment{CID: 42, Page: 1, Name: "P1"}

	t.Run("NewDownloadRecord", func(t *testing.T) {
		rec := NewDownloadRecord(1, "run-1", entry, segment)
		if rec.BVID() != "BV1xx" || rec.CID() != 42 || rec.Part() != "P1" || rec.Author() != "Uploader" {
			t.Errorf("unexpected record fields: %+v", rec)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		rec := NewDownloadRecord(1, "run-1", entry, segment)
		if err := rec.Validate(); err == nil {
			t.Error("record without status should be invalid")
		}

		rec.SetStatus(StatusFailed)
		if err := rec.Validate(); err == nil {
			t.Error("failed record without error kind should be invalid")
		}

		rec.SetError("transport", "connection reset")
		if err := rec.Validate(); err != nil {
			t.Errorf("expected valid record, got %v", err)
		}

		if err := NewDownloadRecord(1, "", entry, segment).Validate(); err == nil {
			t.Error("record without run id should be invalid")
		}
	})
}
