// Package limiter implements a cross-process sliding-window call-rate
// check over shared on-disk state.
//
// Independent processes agree on whether a named action has occurred more
// than max times within the last window seconds using only two sibling
// files derived from one base path: a SQLite event log (<base>.db) and an
// advisory lock file (<base>.lck). There is no server and no shared
// memory; the lock totally orders all checks against the same base path.
//
// # Check sequence
//
//  1. Acquire the exclusive advisory lock.
//  2. Read the max most recent events (a missing log file is empty
//     history, not an error).
//  3. Evaluate the window: over the limit iff max events exist and the
//     max-th most recent one is at most window seconds old.
//  4. If not over, insert the new event, durably synced.
//  5. Release the lock, then append one best-effort audit line.
//
// Because step 4 only happens on admission, a denied call leaves the
// window untouched - retrying immediately yields the same denial.
package limiter
