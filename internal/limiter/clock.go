package limiter

import "time"

// Clock supplies the wall-clock time used for admission decisions and
// event timestamps. Injected so tests can drive the window check on a
// virtual timeline.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real wall clock. It is the default for limiters
// built with New.
var SystemClock Clock = systemClock{}

// unixSeconds converts a time to fractional epoch seconds at microsecond
// precision, the resolution of the event store's timestamp keys.
func unixSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}
