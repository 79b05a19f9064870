package certcheck

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTLSServer serves a self-signed certificate on a loopback port and
// returns the port. The listener shuts down with the test.
func startTLSServer(t *testing.T, tmpl x509.Certificate) int {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	if tmpl.SerialNumber == nil {
		tmpl.SerialNumber = big.NewInt(1)
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	cfg := &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		}},
	}

	ln, err := tls.Listen("tcp4", "127.0.0.1:0", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				c.(*tls.Conn).Handshake()
				c.Close()
			}(conn)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func TestFetch_ReturnsPresentedCertificate(t *testing.T) {
	port := startTLSServer(t, x509.Certificate{
		Subject:   pkix.Name{CommonName: "localhost"},
		DNSNames:  []string{"localhost"},
		NotBefore: time.Now().Add(-time.Hour),
		NotAfter:  time.Now().AddDate(1, 0, 0),
	})

	leaf, chain, err := Fetch(context.Background(), Target{
		Host: "127.0.0.1",
		Port: port,
		SNI:  "localhost",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost", leaf.Subject.CommonName)
	assert.Equal(t, []string{"localhost"}, leaf.DNSNames)
	require.Len(t, chain, 1)
	assert.Equal(t, leaf, chain[0])
}

func TestFetch_AcceptsExpiredCertificate(t *testing.T) {
	// Verification is off for the handshake; an expired certificate must
	// still be fetched so Evaluate can report the expiry.
	port := startTLSServer(t, x509.Certificate{
		Subject:   pkix.Name{CommonName: "localhost"},
		DNSNames:  []string{"localhost"},
		NotBefore: time.Now().AddDate(-2, 0, 0),
		NotAfter:  time.Now().AddDate(-1, 0, 0),
	})

	leaf, _, err := Fetch(context.Background(), Target{
		Host: "127.0.0.1",
		Port: port,
		SNI:  "localhost",
	})
	require.NoError(t, err)
	assert.True(t, leaf.NotAfter.Before(time.Now()))
}

func TestFetch_ConnectionRefused(t *testing.T) {
	// Grab a port that is free and closed.
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	_, _, err = Fetch(context.Background(), Target{Host: "127.0.0.1", Port: port})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect")
}

func TestFetch_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Fetch(ctx, Target{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
}
