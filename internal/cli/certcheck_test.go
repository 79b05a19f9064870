package cli

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveCert serves a self-signed certificate with the given validity on a
// loopback TLS listener and returns the port.
func serveCert(t *testing.T, notBefore, notAfter time.Time) int {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	ln, err := tls.Listen("tcp4", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	})
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

func TestCertCheck_OK(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(1, 0, 0))

	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "-s", "localhost")

	require.NoError(t, err)
	assert.Contains(t, stdout, "OK: Certificate valid for")
}

func TestCertCheck_WarningNearExpiry(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(0, 0, 20))

	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "-s", "localhost")

	require.Error(t, err)
	assert.Equal(t, 1, GetExitCode(err))
	assert.Contains(t, stdout, "WARNING: Certificate only valid for")
}

func TestCertCheck_CriticalNearExpiry(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(0, 0, 5))

	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "-s", "localhost")

	require.Error(t, err)
	assert.Equal(t, 2, GetExitCode(err))
	assert.Contains(t, stdout, "CRITICAL: Certificate only valid for")
}

func TestCertCheck_NameMismatch(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(1, 0, 0))

	// Matching against the literal IP: the certificate only names localhost.
	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port))

	require.Error(t, err)
	assert.Equal(t, 2, GetExitCode(err))
	assert.Contains(t, stdout, "CRITICAL: Certificate name mismatch")
}

func TestCertCheck_ConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "--timeout", "2s")

	require.Error(t, err)
	assert.Equal(t, 2, GetExitCode(err))
	assert.Contains(t, stdout, "CRITICAL:")
}

func TestCertCheck_DebugPrintsCertificate(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(1, 0, 0))

	stdout, _, err := runCommand(t, "certcheck",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "-s", "localhost", "-d")

	require.NoError(t, err)
	assert.Contains(t, stdout, "CN=localhost")
	assert.Contains(t, stdout, "Not before:")
}

func TestCertCheck_JSONOutput(t *testing.T) {
	port := serveCert(t, time.Now().Add(-time.Hour), time.Now().AddDate(1, 0, 0))

	stdout, _, err := runCommand(t, "certcheck", "--format", "json",
		"-H", "127.0.0.1", "-p", strconv.Itoa(port), "-s", "localhost")

	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "OK", data["state"])
	assert.NotEmpty(t, data["not_after"])
}

func TestCertCheck_RequiresHost(t *testing.T) {
	_, _, err := runCommand(t, "certcheck")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
