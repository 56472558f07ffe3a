// Package models defines domain entities and persistence interfaces for favdl.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): values decoded from the platform API
//   - [Entry] : one media item in a collection
//   - [Segment] : one playable part of an entry
//   - [StreamTarget] : a short-lived audio URL for a segment
//   - [CollectionInfo], [Collection] : folder metadata and a full listing
//
// 2. Persistent Entities: download history rows
//   - [DownloadRun] : one download batch with aggregate counts
//   - [DownloadRecord] : one segment outcome within a run
//
// Persistent entities implement the Model interface and are stored through Repository[T].
package models
