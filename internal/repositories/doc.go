// Package repositories implements persistence for catalog tracks and library playlists.
//
// Two backends satisfy the [models.TrackRepository] and [models.PlaylistRepository] contracts:
//
//   - JSON files ([TrackFileRepository], [PlaylistFileRepository]): the whole collection is read,
//     changed and rewritten on every mutation. A per-store mutex serializes read-modify-write
//     cycles and writes go through a temp file and rename.
//   - SQLite ([TrackRepository], [PlaylistRepository]): one transaction per mutation, with
//     per-table sequence counters ([NextSequence]) preserving insertion order.
//
// [NewTrackStore] and [NewPlaylistStore] pick the backend from a [shared.StorageConfig].
package repositories
