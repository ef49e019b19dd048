// Package library manages user playlists and renders them with live track details.
//
// Playlists only store track ids. [Assembler.Hydrate] resolves those ids against the
// catalog through a [TrackFetcher] on every read; nothing it produces is cached. An
// unreachable catalog degrades each affected track to a placeholder, so reading a
// playlist succeeds as long as the playlist itself exists.
package library
