// Package repositories implements SQLite persistence for the download history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : One row per download run with status and counters
//   - [DownloadRepository] : One row per segment outcome, keyed to its run
//   - [HistoryAdapter] : tasks.HistoryRecorder backed by both repositories
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
