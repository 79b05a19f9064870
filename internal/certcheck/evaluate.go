package certcheck

import (
	"crypto/x509"
	"fmt"
	"strings"
	"time"
)

// State is a monitoring-style verdict severity. The values double as
// process exit codes, so the certcheck command composes with standard
// monitoring wrappers.
type State int

const (
	StateOK State = iota
	StateWarning
	StateCritical
	StateUnknown
)

// String returns the conventional monitoring label for the state.
func (s State) String() string {
	switch s {
	case StateOK:
		return "OK"
	case StateWarning:
		return "WARNING"
	case StateCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Policy configures the evaluation of a fetched certificate.
type Policy struct {
	// Hostname the certificate must cover.
	Hostname string

	// UseSubjectCN matches against the subject common name instead of the
	// subject alternative names. Kept for legacy certificates only.
	UseSubjectCN bool

	// AllowWildcard folds one leading label off the hostname and strips
	// wildcard prefixes from certificate names before matching.
	AllowWildcard bool

	// WarnDays / CritDays are the remaining-validity thresholds.
	WarnDays int
	CritDays int

	// Now is the evaluation time. Injected for determinism in tests.
	Now time.Time
}

// Verdict is the outcome of evaluating one certificate against a policy.
type Verdict struct {
	State    State
	Message  string
	DaysLeft int
	NotAfter time.Time
}

// Evaluate checks hostname coverage and the validity interval, in that
// order, against the policy. The first failing check decides the verdict.
func Evaluate(cert *x509.Certificate, pol Policy) Verdict {
	now := pol.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if !HostnameMatches(cert, pol.Hostname, pol.UseSubjectCN, pol.AllowWildcard) {
		return Verdict{
			State:    StateCritical,
			Message:  "Certificate name mismatch",
			NotAfter: cert.NotAfter,
		}
	}

	if now.Before(cert.NotBefore) {
		return Verdict{
			State:    StateCritical,
			Message:  fmt.Sprintf("Certificate not yet valid (%s)", cert.NotBefore.UTC().Format(time.RFC3339)),
			NotAfter: cert.NotAfter,
		}
	}

	daysLeft := int(cert.NotAfter.Sub(now).Hours() / 24)
	notAfter := cert.NotAfter.UTC().Format(time.RFC3339)

	switch {
	case daysLeft < pol.CritDays:
		return Verdict{
			State:    StateCritical,
			Message:  fmt.Sprintf("Certificate only valid for %d days. (%s)", daysLeft, notAfter),
			DaysLeft: daysLeft,
			NotAfter: cert.NotAfter,
		}
	case daysLeft < pol.WarnDays:
		return Verdict{
			State:    StateWarning,
			Message:  fmt.Sprintf("Certificate only valid for %d days. (%s)", daysLeft, notAfter),
			DaysLeft: daysLeft,
			NotAfter: cert.NotAfter,
		}
	default:
		return Verdict{
			State:    StateOK,
			Message:  fmt.Sprintf("Certificate valid for %d days. (%s)", daysLeft, notAfter),
			DaysLeft: daysLeft,
			NotAfter: cert.NotAfter,
		}
	}
}

// HostnameMatches reports whether the certificate covers hostname.
//
// By default the subject alternative DNS names are consulted; useSubjectCN
// switches to the subject common name. With allowWildcard, the host part
// is dropped from the hostname and wildcard prefixes are stripped from
// the certificate names, so "*.example.org" covers "www.example.org".
func HostnameMatches(cert *x509.Certificate, hostname string, useSubjectCN, allowWildcard bool) bool {
	var names []string
	if useSubjectCN {
		if cn := cert.Subject.CommonName; cn != "" {
			names = []string{cn}
		}
	} else {
		names = cert.DNSNames
	}

	if allowWildcard {
		if _, rest, found := strings.Cut(hostname, "."); found {
			hostname = rest
		}
		stripped := make([]string, len(names))
		for i, n := range names {
			stripped[i] = strings.TrimLeft(n, "*.")
		}
		names = stripped
	}

	for _, n := range names {
		if n == hostname {
			return true
		}
	}
	return false
}
