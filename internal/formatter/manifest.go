package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/desertthunder/favdl/internal/shared"
)

// DownloadManifest summarizes a download run on disk.
type DownloadManifest struct {
	RunID         string         `json:"run_id"`
	MediaID       string         `json:"media_id,omitempty"`
	OutputDir     string         `json:"output_dir"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
	Cancelled     bool           `json:"cancelled"`
	TotalEntries  int            `json:"total_entries"`
	Processed     int            `json:"processed"`
	FailedEntries int            `json:"failed_entries"`
	Downloaded    int            `json:"downloaded"`
	Failed        int            `json:"failed"`
	Skipped       int            `json:"skipped"`
	Errors        map[string]int `json:"errors"`
	Items         []ManifestItem `json:"items"`
}

// ManifestItem is one segment, or one entry whose segments could not be listed.
type ManifestItem struct {
	BVID      string `json:"bvid"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CID       int64  `json:"cid,omitempty"`
	Part      string `json:"part,omitempty"`
	File      string `json:"file,omitempty"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Error     string `json:"error,omitempty"`
	Bytes     int64  `json:"bytes,omitempty"`
}

// WriteManifest writes the manifest as indented JSON to path.
func WriteManifest(m *DownloadManifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by [WriteManifest].
func ReadManifest(path string) (*DownloadManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m DownloadManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: invalid manifest: %v", shared.ErrInvalidInput, err)
	}
	return &m, nil
}

// SummaryText renders a short human-readable run summary.
func SummaryText(m *DownloadManifest) string {
	var buf bytes.Buffer

	state := "completed"
	if m.Cancelled {
		state = "cancelled"
	}
	fmt.Fprintf(&buf, "Run %s %s in %s\n", m.RunID, state, m.CompletedAt.Sub(m.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&buf, "Entries: %d/%d processed, %d failed to list\n", m.Processed, m.TotalEntries, m.FailedEntries)
	fmt.Fprintf(&buf, "Segments: %d downloaded, %d failed, %d skipped\n", m.Downloaded, m.Failed, m.Skipped)

	if len(m.Errors) > 0 {
		kinds := make([]string, 0, len(m.Errors))
		for k := range m.Errors {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)

		buf.WriteString("Errors:")
		for _, k := range kinds {
			fmt.Fprintf(&buf, " %s=%d", k, m.Errors[k])
		}
		buf.WriteString("\n")
	}

	for _, it := range m.Items {
		if it.Status != "failed" {
			continue
		}
		label := it.Title
		if it.Part != "" {
			label += " / " + it.Part
		}
		fmt.Fprintf(&buf, "  ✗ %s [%s] %s\n", label, it.ErrorKind, it.Error)
	}

	return buf.String()
}
