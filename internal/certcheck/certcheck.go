package certcheck

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds the connect plus handshake for Fetch.
const DefaultTimeout = 10 * time.Second

// Target describes one TLS endpoint to inspect.
type Target struct {
	Host    string
	Port    int           // defaults to 443 when zero
	SNI     string        // server name to send; defaults to Host
	IPv6    bool          // dial over IPv6 instead of IPv4
	Timeout time.Duration // defaults to DefaultTimeout when zero
}

func (t Target) port() int {
	if t.Port == 0 {
		return 443
	}
	return t.Port
}

func (t Target) serverName() string {
	if t.SNI != "" {
		return t.SNI
	}
	return t.Host
}

// Fetch opens one blocking connection to the target, performs a TLS
// handshake, and returns the presented leaf certificate and full chain.
//
// Verification is disabled for the handshake on purpose: the point is to
// inspect whatever the server presents, including certificates that would
// fail verification, and evaluate them with Evaluate.
func Fetch(ctx context.Context, tgt Target) (*x509.Certificate, []*x509.Certificate, error) {
	network := "tcp4"
	if tgt.IPv6 {
		network = "tcp6"
	}

	timeout := tgt.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName:         tgt.serverName(),
			InsecureSkipVerify: true,
		},
	}

	addr := net.JoinHostPort(tgt.Host, strconv.Itoa(tgt.port()))
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, nil, fmt.Errorf("connect %s: no peer certificates presented", addr)
	}

	return state.PeerCertificates[0], state.PeerCertificates, nil
}
