// Package store provides SQLite-backed durable storage for the limiter's
// event log.
//
// The log is append-only: one row per admitted call, keyed by
// (ts_key, seq) where ts_key is a fixed-width fractional-epoch string and
// seq disambiguates same-quantum inserts. Ordering by key equals ordering
// by time, which is what the sliding-window check relies on.
//
// # Handle lifecycle
//
// Stores are opened, used for one logical operation, and closed again
// within a single limiter invocation. There is no long-lived handle: the
// file itself is the only state that survives between calls.
//
// # Database configuration
//
//   - synchronous=FULL: every insert is durably synced before returning
//   - busy_timeout=5000: wait for SQLite-level locks up to 5 seconds
//   - rollback journal (no WAL): cross-process exclusion is provided by the
//     limiter's advisory lock, and the on-disk state stays a single file
package store
