package store

import (
	"fmt"
	"strconv"
)

// Event is one recorded admission, keyed by (TSKey, Seq).
//
// TSKey is the wall-clock insertion time as a fixed-width fractional-epoch
// string, so lexicographic key order equals time order. Seq separates events
// that land in the same microsecond quantum; without it, two inserts in one
// quantum would collide on the key and the later one would silently replace
// the earlier, undercounting the window.
type Event struct {
	TSKey        string  // formatted insertion time, see FormatKey
	Seq          int64   // 1-based, per TSKey
	Unix         float64 // TSKey parsed back to fractional epoch seconds
	Payload      string  // caller-supplied text, may be empty
	InvocationID string  // UUIDv7 of the limiter call that recorded the event
}

// keyWidth covers 10-digit epoch seconds plus a microsecond fraction.
const keyWidth = 17

// FormatKey renders fractional epoch seconds as a fixed-width, zero-padded,
// lexicographically sortable key with microsecond precision.
func FormatKey(unix float64) string {
	return fmt.Sprintf("%0*.6f", keyWidth, unix)
}

// ParseKey parses a key produced by FormatKey back into fractional epoch
// seconds. Fails on keys that are not plain decimal numbers.
func ParseKey(key string) (float64, error) {
	unix, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp key %q: %w", key, err)
	}
	return unix, nil
}
