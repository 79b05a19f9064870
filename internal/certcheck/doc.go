// Package certcheck inspects TLS server certificates the way a monitoring
// probe does: open one blocking connection, handshake, and evaluate the
// presented certificate for hostname coverage and remaining validity.
//
// Fetching and evaluating are separate so the policy checks run against
// any *x509.Certificate, network or not. Verdict states map directly to
// the conventional monitoring exit codes (OK=0, WARNING=1, CRITICAL=2,
// UNKNOWN=3).
package certcheck
