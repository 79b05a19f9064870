package limiter

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/opsgate/opsgate/internal/store"
)

// auditLog is the best-effort, append-only text side channel recording
// admission outcomes. It is observability, not correctness: every failure
// here is swallowed so that a logging fault can never change a decision
// that has already been computed.
type auditLog struct {
	path string
}

// record appends one outcome line:
//
//	<fractional-epoch-seconds>: OK - <payload>
//	<fractional-epoch-seconds>: Error - <payload>
//
// Called outside the lock, after the decision is final.
func (a *auditLog) record(ts float64, admitted bool, payload string) {
	if a == nil || a.path == "" {
		return
	}

	verdict := "Error"
	if admitted {
		verdict = "OK"
	}
	line := fmt.Sprintf("%s: %s - %s\n", store.FormatKey(ts), verdict, payload)

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Debug().Err(err).Str("path", a.path).Msg("audit log open failed")
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		log.Debug().Err(err).Str("path", a.path).Msg("audit log write failed")
	}
}
