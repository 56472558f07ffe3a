package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/favdl/internal/models"
	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
)

// ProgressResponse is the JSON body of GET /progress.
type ProgressResponse struct {
	Value   int     `json:"value"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Done    bool    `json:"done"`
}

func newProgressResponse(s tasks.ProgressSnapshot) ProgressResponse {
	return ProgressResponse{Value: s.Value, Total: s.Total, Percent: s.Percent(), Done: s.Done()}
}

// writeJSON writes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// ProgressHandler serves the shared progress counter.
//
// GET /progress returns one snapshot as JSON.
// GET /progress/stream sends a server-sent event per change until the run completes or the client disconnects.
type ProgressHandler struct {
	progress *tasks.Progress
	interval time.Duration
}

// NewProgressHandler creates a ProgressHandler reading p. interval is the stream polling period (default 250ms).
func NewProgressHandler(p *tasks.Progress, interval time.Duration) *ProgressHandler {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &ProgressHandler{progress: p, interval: interval}
}

// Routes returns the HTTP routes this handler serves.
func (h *ProgressHandler) Routes() []string {
	return []string{"/progress", "/progress/stream"}
}

// ServeHTTP dispatches on the request path.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/progress/stream" {
		h.stream(w, r)
		return
	}
	writeJSON(w, http.StatusOK, newProgressResponse(h.progress.Snapshot()))
}

func (h *ProgressHandler) stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	last := tasks.ProgressSnapshot{Value: -1}
	for {
		snap := h.progress.Snapshot()
		if snap != last {
			data, err := shared.MarshalJSON(newProgressResponse(snap), false)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: progress\ndata: %s\n", data)
			flusher.Flush()
			last = snap
		}
		if snap.Done() {
			fmt.Fprint(w, "event: done\ndata: {}\n\n")
			flusher.Flush()
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HistoryLister lists recorded download runs, newest first.
type HistoryLister interface {
	Recent(limit int) ([]*models.DownloadRun, error)
}

// RunResponse is one entry of GET /runs.
type RunResponse struct {
	ID                 string     `json:"id"`
	Sequence           int        `json:"sequence"`
	MediaID            string     `json:"media_id"`
	OutputDir          string     `json:"output_dir"`
	Status             string     `json:"status"`
	EntriesTotal       int        `json:"entries_total"`
	EntriesProcessed   int        `json:"entries_processed"`
	SegmentsDownloaded int        `json:"segments_downloaded"`
	SegmentsFailed     int        `json:"segments_failed"`
	SegmentsSkipped    int        `json:"segments_skipped"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}

// NewRunResponse converts a run into its JSON form.
func NewRunResponse(run *models.DownloadRun) RunResponse {
	return RunResponse{
		ID:                 run.ID(),
		Sequence:           run.Sequence(),
		MediaID:            run.MediaID(),
		OutputDir:          run.OutputDir(),
		Status:             string(run.Status()),
		EntriesTotal:       run.EntriesTotal(),
		EntriesProcessed:   run.EntriesProcessed(),
		SegmentsDownloaded: run.SegmentsDownloaded(),
		SegmentsFailed:     run.SegmentsFailed(),
		SegmentsSkipped:    run.SegmentsSkipped(),
		StartedAt:          run.StartedAt(),
		CompletedAt:        run.CompletedAt(),
	}
}

// RunsHandler serves GET /runs from the download history.
type RunsHandler struct {
	history HistoryLister
	limit   int
}

// NewRunsHandler creates a RunsHandler returning at most limit runs (default 20).
func NewRunsHandler(history HistoryLister, limit int) *RunsHandler {
	if limit <= 0 {
		limit = 20
	}
	return &RunsHandler{history: history, limit: limit}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	runs, err := h.history.Recent(h.limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, NewRunResponse(run))
	}
	writeJSON(w, http.StatusOK, out)
}
