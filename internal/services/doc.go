// Package services holds the HTTP clients used to talk to the catalog service.
//
// # Metadata Client
//
// [MetadataClient] is the library service's view of the catalog. Every lookup is a
// single attempt bounded by a timeout, and every failure (transport error, timeout,
// non-2xx status, sucesso=false, empty dados, undecodable body) is logged at warn
// level and absorbed:
//   - [MetadataClient.FetchOne] reports false instead of returning an error
//   - [MetadataClient.FetchMany] substitutes [models.NewPlaceholderTrack] for each failed id
//   - [MetadataClient.HealthCheck] reports false
//
// FetchMany issues one request per id concurrently and waits for all of them. A slow
// or failing id never cancels its siblings, and the result keeps the input order and
// length.
//
// # API Client
//
// [APIService] issues raw requests against either service and is used by the CLI's
// api, cache and playlist commands.
package services
