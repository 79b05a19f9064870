package limiter

import "github.com/opsgate/opsgate/internal/store"

// OverLimit reports whether max calls have already occurred within the
// trailing window seconds ending at now.
//
// recent must be ordered newest to oldest, as returned by the store. The
// check looks only at the age of the max-th most recent entry: if fewer
// than max entries exist there is not enough history to exceed the quota,
// and if the max-th entry is older than the window the quota has rolled
// over regardless of how the newer entries are spaced.
//
// Degenerate configurations still yield a deterministic answer: max == 0
// means every call is over the limit (never "no limit"), and window <= 0
// counts only entries with the exact same timestamp, admitting everything
// else. Callers are expected to warn about such configurations; OverLimit
// just decides.
func OverLimit(recent []store.Event, max int, window float64, now float64) bool {
	if max <= 0 {
		return true
	}
	if len(recent) < max {
		return false
	}

	oldest := recent[max-1]
	elapsed := now - oldest.Unix

	return elapsed <= window
}
