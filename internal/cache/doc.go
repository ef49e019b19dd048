// Package cache provides an in-memory, string-keyed cache with per-entry expiry.
//
// Expiry is checked against a clock on every read, so an entry is never observable
// at or after its deadline. A timer per entry removes it best-effort once the
// deadline passes; the timer only deletes the entry it was armed for, so a key
// that was overwritten is never swept by a stale timer.
//
// There is no size bound and no eviction other than expiry.
package cache
