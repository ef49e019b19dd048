// Package catalog implements the track catalog: cache-aside reads over a
// [models.TrackRepository] with invalidation on every successful write.
//
// Two cache keys are used: "track:<id>" for single tracks and "tracks:all" for the
// full listing. Lookups that miss are never cached. A service-wide mutex is held
// while a miss reads the store and populates the cache and while a write updates
// the store and invalidates, so a populate can never reinstate a value that a
// concurrent write has just invalidated. Hits take only the cache lock.
package catalog
