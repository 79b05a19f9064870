package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// MostRecent returns up to n events, newest first.
//
// Fewer than n results is a normal outcome, not an error - it means the log
// has not yet accumulated n entries. A row whose ts_key fails to parse is
// skipped with a warning rather than aborting the whole read, so one corrupt
// entry cannot poison an admission decision.
func (s *Store) MostRecent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ts_key, seq, payload, invocation_id
		FROM events
		ORDER BY ts_key DESC, seq DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.TSKey, &e.Seq, &e.Payload, &e.InvocationID); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		unix, err := ParseKey(e.TSKey)
		if err != nil {
			log.Warn().Err(err).Str("ts_key", e.TSKey).Msg("skipping corrupt event log entry")
			continue
		}
		e.Unix = unix

		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent events: %w", err)
	}

	return events, nil
}

// Count returns the total number of recorded events.
// Used by diagnostics and tests; admission decisions only use MostRecent.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}
