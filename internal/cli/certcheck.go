package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/certcheck"
)

// CertCheckOptions holds the flags for the certcheck command.
type CertCheckOptions struct {
	*RootOptions
	Host      string
	Port      int
	IPv6      bool
	SNI       string
	WarnDays  int
	CritDays  int
	Timeout   time.Duration
	CompareCN bool
	Wildcard  bool
	Debug     bool
}

// certCheckResponse is the JSON payload for a certificate verdict.
type certCheckResponse struct {
	State    string `json:"state"`
	Message  string `json:"message"`
	DaysLeft int    `json:"days_left"`
	NotAfter string `json:"not_after"`
}

// NewCertCheckCommand creates the certcheck command.
func NewCertCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CertCheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "certcheck",
		Short: "Check a TLS server certificate for name coverage and expiry",
		Long: `Certcheck connects to a TLS endpoint, fetches the presented certificate,
and evaluates it: the certificate must cover the hostname and stay valid
for longer than the warning and critical thresholds.

The exit status follows monitoring conventions: 0 OK, 1 WARNING,
2 CRITICAL, 3 UNKNOWN.`,
		Example: `  opsgate certcheck -H www.example.org
  opsgate certcheck -H internal.example.org -p 8443 -w 14 -c 7
  opsgate certcheck -H www.example.org -s example.org -W`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCertCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Host, "host", "H", "", "host to connect to (required)")
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 443, "TLS port")
	cmd.Flags().BoolVarP(&opts.IPv6, "ipv6", "6", false, "connect over IPv6")
	cmd.Flags().StringVarP(&opts.SNI, "sni", "s", "", "server name to send and match (defaults to --host)")
	cmd.Flags().IntVarP(&opts.WarnDays, "warning", "w", 31, "warn when validity drops below this many days")
	cmd.Flags().IntVarP(&opts.CritDays, "critical", "c", 14, "critical when validity drops below this many days")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", certcheck.DefaultTimeout, "connect and handshake timeout")
	cmd.Flags().BoolVarP(&opts.CompareCN, "compare-cn", "C", false, "match the subject common name instead of the alternative names")
	cmd.Flags().BoolVarP(&opts.Wildcard, "wildcard", "W", false, "accept wildcard coverage of the hostname")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "d", false, "print the full certificate before the verdict")

	cmd.MarkFlagRequired("host")

	return cmd
}

func runCertCheck(cmd *cobra.Command, opts *CertCheckOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	tgt := certcheck.Target{
		Host:    opts.Host,
		Port:    opts.Port,
		SNI:     opts.SNI,
		IPv6:    opts.IPv6,
		Timeout: opts.Timeout,
	}

	formatter.VerboseLog("fetching certificate from %s:%d", opts.Host, opts.Port)

	leaf, _, err := certcheck.Fetch(cmd.Context(), tgt)
	if err != nil {
		if opts.Format == "json" {
			formatter.Error("FETCH", err.Error(), nil)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "CRITICAL: %v\n", err)
		}
		return NewExitError(int(certcheck.StateCritical), "")
	}

	if opts.Debug {
		fmt.Fprintln(cmd.OutOrStdout(), certcheck.FormatCertificate(leaf))
	}

	hostname := opts.SNI
	if hostname == "" {
		hostname = opts.Host
	}

	v := certcheck.Evaluate(leaf, certcheck.Policy{
		Hostname:      hostname,
		UseSubjectCN:  opts.CompareCN,
		AllowWildcard: opts.Wildcard,
		WarnDays:      opts.WarnDays,
		CritDays:      opts.CritDays,
	})

	if opts.Format == "json" {
		formatter.Success(certCheckResponse{
			State:    v.State.String(),
			Message:  v.Message,
			DaysLeft: v.DaysLeft,
			NotAfter: v.NotAfter.UTC().Format(time.RFC3339),
		})
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", v.State, v.Message)
	}

	if v.State != certcheck.StateOK {
		return NewExitError(int(v.State), "")
	}
	return nil
}
