package tasks

import "sync"

// Progress counts entries fully processed in the current run.
//
// One handle is shared by the engine (writer) and any number of pollers (readers).
// The zero value is ready to use.
type Progress struct {
	mu    sync.Mutex
	value int
	total int
}

// ProgressSnapshot is a consistent read of a [Progress].
type ProgressSnapshot struct {
	Value int `json:"value"`
	Total int `json:"total"`
}

// NewProgress creates an empty Progress.
func NewProgress() *Progress {
	return &Progress{}
}

// Reset zeroes the counter and sets the number of entries in the new run.
func (p *Progress) Reset(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = 0
	p.total = total
}

// Increment advances the counter by one entry.
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value++
}

// Value returns the number of entries processed.
func (p *Progress) Value() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Total returns the number of entries in the current run.
func (p *Progress) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Snapshot returns value and total read under one lock.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProgressSnapshot{Value: p.value, Total: p.total}
}

// Percent returns 100 * value / total, or 0 for an empty run.
func (s ProgressSnapshot) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}
	return 100 * float64(s.Value) / float64(s.Total)
}

// Done reports whether every entry has been processed.
func (s ProgressSnapshot) Done() bool {
	return s.Total > 0 && s.Value >= s.Total
}
