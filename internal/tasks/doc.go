// Package tasks runs long playlist operations with real-time progress reporting.
//
// # Bulk Export
//
// [Exporter.BulkExport] fetches hydrated playlists from a [PlaylistSource] (the library service)
// and writes each one in the requested format:
//   - A producer goroutine fetches playlists, throttled by a [rate.Limiter]
//   - A bounded worker pool writes files through the formatter package
//   - A manifest (export_manifest.json) summarizes every playlist's outcome
//
// A playlist that fails to fetch or write is recorded as a failure; the rest of the run continues.
// Playlists whose tracks could not be resolved are still exported, with placeholders counted in the manifest.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, and a message.
// Updates use select with default to prevent blocking, so a nil or full channel never stalls an export.
package tasks
