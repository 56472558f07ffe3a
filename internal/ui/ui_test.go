package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/tasks"
	th "github.com/desertthunder/favdl/internal/testing"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, selection string, medias ...th.FakeMedia) (*Model, *th.FakePlatform, string) {
	t.Helper()
	platform := th.NewFakePlatform(t, medias...)
	svc := services.NewBilibiliService(services.BilibiliOpts{BaseURL: platform.URL(), RateLimit: 1000})
	engine := tasks.NewEngine(svc, nil, tasks.EngineOpts{})
	dir := t.TempDir()

	m := NewModel(context.Background(), engine, Options{
		MediaID:    "12345",
		Credential: "token",
		Download:   tasks.DownloadOpts{OutputDir: dir, MediaID: "12345"},
		Selection:  selection,
	})
	return m, platform, dir
}

func sampleMedias() []th.FakeMedia {
	return []th.FakeMedia{
		{BVID: "BV1aa", Title: "One", Author: "A", Parts: []string{"P1"}, Audio: map[int64][]byte{1: []byte("1")}},
		{BVID: "BV1bb", Title: "Two", Author: "B", Parts: []string{"P1"}, Audio: map[int64][]byte{1: []byte("2")}},
		{BVID: "BV1cc", Title: "Three", Author: "C", Parts: []string{"P1"}, Audio: map[int64][]byte{1: []byte("3")}},
	}
}

func TestModel(t *testing.T) {
	t.Run("Selection keys", func(t *testing.T) {
		m, _, _ := newTestModel(t, "2", sampleMedias()...)
		m.Update(m.Init()())

		if m.view != EntryListView {
			t.Fatalf("expected entry list view, got %d", m.view)
		}
		if got := m.Selected(); len(got) != 1 || got[0].ID != "BV1bb" {
			t.Fatalf("expected initial selection of entry 2, got %+v", got)
		}

		m.Update(runes("a"))
		if len(m.Selected()) != 3 {
			t.Errorf("expected all selected, got %d", len(m.Selected()))
		}

		m.Update(tea.KeyMsg{Type: tea.KeySpace})
		if got := m.Selected(); len(got) != 2 || got[0].ID != "BV1bb" {
			t.Errorf("expected first entry toggled off, got %+v", got)
		}

		m.Update(runes("i"))
		if got := m.Selected(); len(got) != 1 || got[0].ID != "BV1aa" {
			t.Errorf("expected inverted selection, got %+v", got)
		}

		m.Update(runes("c"))
		if len(m.Selected()) != 0 {
			t.Errorf("expected cleared selection, got %d", len(m.Selected()))
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != EntryListView {
			t.Error("enter with nothing selected should stay on the list")
		}
		if !strings.Contains(m.View(), "0 of 3 selected") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("Invalid selection falls back to all", func(t *testing.T) {
		m, _, _ := newTestModel(t, "9-12", sampleMedias()...)
		m.Update(m.Init()())
		if len(m.Selected()) != 3 {
			t.Errorf("expected all selected, got %d", len(m.Selected()))
		}
	})

	t.Run("Confirm and download", func(t *testing.T) {
		m, platform, dir := newTestModel(t, "1,3", sampleMedias()...)
		m.Update(m.Init()())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Download 2 entries?") {
			t.Errorf("unexpected confirm view:\n%s", m.View())
		}

		m.Update(runes("n"))
		if m.view != EntryListView {
			t.Fatalf("expected to return to the list, got %d", m.view)
		}
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		_, cmd := m.Update(runes("y"))
		if m.view != DownloadView {
			t.Fatalf("expected download view, got %d", m.view)
		}
		batch, ok := cmd().(tea.BatchMsg)
		if !ok || len(batch) == 0 {
			t.Fatalf("expected batch command, got %T", cmd())
		}

		m.Update(batch[0]())
		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if r := m.Result(); r == nil || r.Downloaded != 2 || r.Processed != 2 {
			t.Fatalf("unexpected result %+v", m.Result())
		}
		th.AssertFileExists(t, filepath.Join(dir, "One - P1 - A.aac"))
		th.AssertFileExists(t, filepath.Join(dir, "Three - P1 - C.aac"))
		th.AssertFileNotExists(t, filepath.Join(dir, "Two - P1 - B.aac"))
		if !strings.Contains(m.View(), "Download Complete") {
			t.Errorf("unexpected result view:\n%s", m.View())
		}
		if len(platform.Cookies()) == 0 {
			t.Error("expected platform requests")
		}

		_, cmd = m.Update(runes("q"))
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected quit command")
		}
	})

	t.Run("Progress tick", func(t *testing.T) {
		m, _, _ := newTestModel(t, "", sampleMedias()...)
		m.view = DownloadView

		_, cmd := m.Update(progressTickMsg(tasks.ProgressSnapshot{Value: 1, Total: 2}))
		if cmd == nil {
			t.Error("download view should keep polling")
		}
		if !strings.Contains(m.View(), "1/2 entries (50%)") {
			t.Errorf("unexpected download view:\n%s", m.View())
		}

		m.view = ResultView
		if _, cmd := m.Update(progressTickMsg(tasks.ProgressSnapshot{})); cmd != nil {
			t.Error("polling should stop outside the download view")
		}
	})

	t.Run("Fetch failure", func(t *testing.T) {
		m, platform, _ := newTestModel(t, "", sampleMedias()...)
		platform.ListCode = -400

		m.Update(m.Init()())
		if m.view != ResultView || m.Err() == nil {
			t.Fatalf("expected error result, got view %d err %v", m.view, m.Err())
		}
		if !strings.Contains(m.View(), "-400") {
			t.Errorf("expected platform code in view:\n%s", m.View())
		}
	})

	t.Run("Window resize before listing", func(t *testing.T) {
		m, _, _ := newTestModel(t, "")
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		if !strings.Contains(m.View(), "Fetching collection 12345") {
			t.Errorf("unexpected loading view:\n%s", m.View())
		}
	})
}

func TestEntryItem(t *testing.T) {
	item := entryItem{index: 1}
	item.entry.Title = "Live"
	item.entry.Author = "Band"
	item.entry.PageCount = 3
	item.entry.Duration = 125

	if got := item.Title(); got != "[ ] 2. Live" {
		t.Errorf("unexpected title %q", got)
	}
	item.selected = true
	if got := item.Title(); got != "[x] 2. Live" {
		t.Errorf("unexpected title %q", got)
	}
	if got := item.Description(); got != "Band • 3 parts • 2:05" {
		t.Errorf("unexpected description %q", got)
	}
	if got := item.FilterValue(); got != "Live Band" {
		t.Errorf("unexpected filter value %q", got)
	}
}

func TestThemeMarks(t *testing.T) {
	tests := []struct {
		status models.DownloadStatus
		glyph  string
	}{
		{models.StatusDownloaded, "✓"},
		{models.StatusFailed, "✗"},
		{models.StatusSkipped, "-"},
		{models.DownloadStatus("unknown"), "?"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := styles.mark(tt.status); !strings.Contains(got, tt.glyph) {
				t.Errorf("mark(%s) = %q, want it to contain %q", tt.status, got, tt.glyph)
			}
		})
	}
}
