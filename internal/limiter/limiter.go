package limiter

import (
	"context"
	"errors"
	"io/fs"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/opsgate/opsgate/internal/lockfile"
	"github.com/opsgate/opsgate/internal/store"
)

// Defaults for limiters built without explicit options.
const (
	DefaultMax    = 3
	DefaultWindow = 900.0 // seconds
)

// File suffixes derived from the base path. The event log and the lock
// file are siblings on the same filesystem; callers sharing one must
// share both.
const (
	storeSuffix = ".db"
	lockSuffix  = ".lck"
)

// Limiter decides whether a named action may occur again, given how often
// it has occurred recently. State lives entirely in two files derived from
// the base path; independent processes pointing at the same base path
// coordinate through the advisory lock.
//
// A Limiter value holds no open handles. Each Check opens, uses, and
// closes its own lock and store, so a Limiter may be reused or discarded
// freely.
type Limiter struct {
	storePath string
	lockPath  string
	audit     *auditLog
	max       int
	window    float64
	clock     Clock
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMax sets the maximum number of admitted calls per window.
// Default 3.
func WithMax(max int) Option {
	return func(l *Limiter) { l.max = max }
}

// WithWindow sets the sliding window length in seconds.
// Default 900.
func WithWindow(seconds float64) Option {
	return func(l *Limiter) { l.window = seconds }
}

// WithAuditLog enables the best-effort audit log at the given path.
func WithAuditLog(path string) Option {
	return func(l *Limiter) { l.audit = &auditLog{path: path} }
}

// WithClock overrides the wall clock. Used by tests.
func WithClock(c Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

// New creates a Limiter for the given base path. The event log lives at
// <base>.db and the lock file at <base>.lck.
//
// Degenerate configurations (max == 0, window <= 0) are accepted but
// warned about: max == 0 denies everything and window <= 0 limits almost
// nothing, and both are far more often a caller mistake than an intent.
func New(basePath string, opts ...Option) *Limiter {
	l := &Limiter{
		storePath: basePath + storeSuffix,
		lockPath:  basePath + lockSuffix,
		max:       DefaultMax,
		window:    DefaultWindow,
		clock:     SystemClock,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.max <= 0 {
		log.Warn().Int("max", l.max).Str("store", l.storePath).
			Msg("max <= 0 denies every call; this is probably a configuration error")
	}
	if l.window <= 0 {
		log.Warn().Float64("window", l.window).Str("store", l.storePath).
			Msg("window <= 0 counts only simultaneous calls; this is probably a configuration error")
	}

	return l
}

// Result is the outcome of one Check call.
type Result struct {
	// Admitted is true when the action may proceed now. When false the
	// action occurred max times within the window and nothing was recorded.
	Admitted bool

	// Timestamp is the decision time in fractional epoch seconds. On
	// admission it is also the recorded event's timestamp.
	Timestamp float64

	// InvocationID is the UUIDv7 identifying this call in the event log
	// and in diagnostics.
	InvocationID string
}

// Check atomically decides whether the action is within its quota and, if
// so, records it.
//
// The whole read-evaluate-write sequence runs under the exclusive advisory
// lock, so concurrent callers against the same base path are totally
// ordered and never decide from inconsistent snapshots. The audit line is
// written after the lock is released; audit failures are swallowed.
//
// Store and lock failures return a typed *Error and no decision - Check
// never silently defaults to admitted or denied.
func (l *Limiter) Check(ctx context.Context, payload string) (Result, error) {
	payload = norm.NFC.String(payload)

	res := Result{
		InvocationID: uuid.Must(uuid.NewV7()).String(),
	}

	err := lockfile.WithLock(ctx, l.lockPath, func() error {
		// Stamp the decision time once the lock is held, so the recorded
		// timestamp reflects when this caller's turn actually began.
		res.Timestamp = unixSeconds(l.clock.Now())

		recent, err := l.readRecent(ctx)
		if err != nil {
			return err
		}

		if OverLimit(recent, l.max, l.window, res.Timestamp) {
			res.Admitted = false
			return nil
		}

		if err := l.recordEvent(ctx, res, payload); err != nil {
			return err
		}
		res.Admitted = true
		return nil
	})
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return Result{}, err
		}
		return Result{}, NewLockUnavailable(l.lockPath, err)
	}

	l.audit.record(res.Timestamp, res.Admitted, payload)

	log.Debug().
		Bool("admitted", res.Admitted).
		Str("invocation_id", res.InvocationID).
		Str("store", l.storePath).
		Int("max", l.max).
		Float64("window", l.window).
		Msg("admission decision")

	return res, nil
}

// readRecent loads the max most recent events, treating a missing event
// log as empty history (the first-ever call against a base path).
func (l *Limiter) readRecent(ctx context.Context) ([]store.Event, error) {
	st, err := store.OpenReadOnly(l.storePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, NewStoreUnavailable(l.storePath, err)
	}
	defer st.Close()

	recent, err := st.MostRecent(ctx, l.max)
	if err != nil {
		return nil, NewStoreCorruption(l.storePath, err)
	}
	return recent, nil
}

// recordEvent appends the admitted call to the event log, durably synced
// before returning.
func (l *Limiter) recordEvent(ctx context.Context, res Result, payload string) error {
	st, err := store.Open(l.storePath)
	if err != nil {
		return NewStoreUnavailable(l.storePath, err)
	}
	defer st.Close()

	e := store.Event{
		TSKey:        store.FormatKey(res.Timestamp),
		Payload:      payload,
		InvocationID: res.InvocationID,
	}
	if err := st.Insert(ctx, e); err != nil {
		return NewStoreWrite(l.storePath, err)
	}
	return nil
}

// StorePath returns the event log path derived from the base path.
func (l *Limiter) StorePath() string { return l.storePath }

// LockPath returns the lock file path derived from the base path.
func (l *Limiter) LockPath() string { return l.lockPath }
