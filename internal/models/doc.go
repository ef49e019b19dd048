// Package models defines the data model shared by the catalog and library services.
//
// Wire names follow the public API (titulo, artista, usuarioId, ...) while the Go
// field names stay in English. Repository contracts for both services live here so
// that storage backends and services depend on the same interfaces.
package models
