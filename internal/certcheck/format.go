package certcheck

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"strings"
)

const ruleWidth = 72

// FormatCertificate renders a debug report for one certificate: subject,
// issuer, subject alternative names, and the validity interval. Output is
// deterministic for a given certificate, so it golden-tests cleanly.
func FormatCertificate(cert *x509.Certificate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject:\n%s\n", formatName(cert.Subject))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	fmt.Fprintf(&b, "Issuer:\n%s\n", formatName(cert.Issuer))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	if len(cert.DNSNames) > 0 {
		fmt.Fprintf(&b, "subjectAltName: %s\n", strings.Join(cert.DNSNames, ", "))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	}

	fmt.Fprintf(&b, "Not before: %s\n", cert.NotBefore.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Not after:  %s\n", cert.NotAfter.UTC().Format("2006-01-02 15:04:05 MST"))

	return b.String()
}

// formatName renders a distinguished name one component per line, in the
// conventional C, ST, L, O, OU, CN order.
func formatName(name pkix.Name) string {
	var lines []string

	appendAll := func(key string, values []string) {
		for _, v := range values {
			lines = append(lines, fmt.Sprintf("%s=%s", key, v))
		}
	}

	appendAll("C", name.Country)
	appendAll("ST", name.Province)
	appendAll("L", name.Locality)
	appendAll("O", name.Organization)
	appendAll("OU", name.OrganizationalUnit)
	if name.CommonName != "" {
		lines = append(lines, fmt.Sprintf("CN=%s", name.CommonName))
	}

	return strings.Join(lines, "\n")
}
