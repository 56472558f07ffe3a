// Package tasks runs the collection download pipeline with real-time progress reporting.
//
// # Core Operations
//
// [Engine] drives a [services.Service] through three operations:
//
//  1. [Engine.FetchCollection] : Paginated collection listing
//     - Requests pages 1, 2, ... until the platform reports has_more=false
//     - Any page failure aborts the listing
//     - An optional page cap returns the partial listing with [shared.ErrPageLimit]
//
//  2. [Engine.Download] : Sequential audio download
//     - Lists the segments of each entry and resolves the audio stream of each segment
//     - Streams the first audio track to <title> - <part> - <author>.aac
//     - Records failures per entry and segment without stopping the run
//     - Advances the shared [Progress] counter by one per entry
//
//  3. [Engine.ExportCollections] : Listing export to json, csv, markdown or txt
//
// # Progress Reporting
//
// [Progress] is a mutex-guarded counter that UI, HTTP and CLI pollers read concurrently with the engine.
// The optional [ProgressUpdate] channel carries phase, step counters and messages.
// Updates use select with default to prevent blocking.
//
// # Download History
//
// The optional [HistoryRecorder] interface persists runs and per-segment outcomes
// (repositories.HistoryAdapter). Recording errors are logged and never disrupt a download.
package tasks
