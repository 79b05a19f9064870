package store

import (
	"context"
	"fmt"
)

// Insert records one event in the log.
//
// The event's Seq field is ignored: the stored seq is computed as one past
// the highest existing seq for the same ts_key, so inserts within the same
// timestamp quantum get distinct keys instead of replacing each other.
// Computing the seq inside the INSERT is safe because the limiter's advisory
// lock admits only one writer at a time.
//
// The insert is durably synced before this function returns (the connection
// runs with synchronous=FULL).
func (s *Store) Insert(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (ts_key, seq, payload, invocation_id)
		VALUES (
			?,
			COALESCE((SELECT MAX(seq) + 1 FROM events WHERE ts_key = ?), 1),
			?,
			?
		)
	`,
		e.TSKey,
		e.TSKey,
		e.Payload,
		e.InvocationID,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}
