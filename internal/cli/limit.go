package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/limiter"
)

// LimitOptions holds the flags for the limit command.
type LimitOptions struct {
	*RootOptions
	File       string
	Max        int
	NSeconds   float64
	Logfile    string
	Quiet      bool
	ConfigPath string
}

// limitResponse is the JSON payload for a limit decision.
type limitResponse struct {
	Admitted     bool    `json:"admitted"`
	Timestamp    float64 `json:"timestamp"`
	InvocationID string  `json:"invocation_id"`
}

// NewLimitCommand creates the limit command.
func NewLimitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LimitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "limit [payload...]",
		Short: "Admit or deny a call against a shared rate limit",
		Long: `Limit admits a call when fewer than --max admitted calls were recorded
within the last --nseconds against the shared state at --file, and denies
it otherwise. Admitted calls are recorded; denied calls are not.

The positional arguments are joined into a free-form payload stored with
the event, typically the command line being gated.

Exit status is 0 when the call is admitted, 1 when it is denied, and 2
on a usage or storage error.`,
		Example: `  # at most 3 pages per 15 minutes, shared by every caller of this path
  opsgate limit --file /var/run/pager alert "disk full on db1" && send-page

  # explicit budget with an audit trail
  opsgate limit -f /var/run/deploys -m 1 -t 3600 -l /var/log/deploys.log deploy`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLimit(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "base path for the shared limiter state (required unless set in --config)")
	cmd.Flags().IntVarP(&opts.Max, "max", "m", limiter.DefaultMax, "maximum admitted calls per window")
	cmd.Flags().Float64VarP(&opts.NSeconds, "nseconds", "t", limiter.DefaultWindow, "window length in seconds")
	cmd.Flags().StringVarP(&opts.Logfile, "logfile", "l", "", "append an audit line per decision to this file")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress the OK/Error line; rely on the exit status")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML file with defaults for file, max, nseconds, and logfile")

	return cmd
}

func runLimit(cmd *cobra.Command, opts *LimitOptions, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.ConfigPath != "" {
		if err := applyConfig(cmd, opts); err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
	}

	if opts.File == "" {
		return NewExitError(ExitCommandError, "a base path is required: pass --file or set file in --config")
	}

	limOpts := []limiter.Option{
		limiter.WithMax(opts.Max),
		limiter.WithWindow(opts.NSeconds),
	}
	if opts.Logfile != "" {
		limOpts = append(limOpts, limiter.WithAuditLog(opts.Logfile))
	}

	lim := limiter.New(opts.File, limOpts...)
	formatter.VerboseLog("checking %q against %s (max %d per %gs)",
		strings.Join(args, " "), lim.StorePath(), opts.Max, opts.NSeconds)

	res, err := lim.Check(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		var le *limiter.Error
		if opts.Format == "json" && errors.As(err, &le) {
			formatter.Error(string(le.Code), le.Message, le.Path)
			return NewExitError(ExitCommandError, "")
		}
		return WrapExitError(ExitCommandError, "rate check failed", err)
	}

	if opts.Format == "json" {
		formatter.Success(limitResponse{
			Admitted:     res.Admitted,
			Timestamp:    res.Timestamp,
			InvocationID: res.InvocationID,
		})
	} else if !opts.Quiet {
		if res.Admitted {
			formatter.Success("OK")
		} else {
			formatter.Success("Error")
		}
	}

	if !res.Admitted {
		// Denial is a decision, not a failure to decide. The exit status
		// carries it without an error message.
		return NewExitError(ExitFailure, "")
	}
	return nil
}

// applyConfig fills in options from the config file, without overriding
// flags the caller set explicitly.
func applyConfig(cmd *cobra.Command, opts *LimitOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("file") && cfg.File != "" {
		opts.File = cfg.File
	}
	if !cmd.Flags().Changed("max") && cfg.Max != nil {
		opts.Max = *cfg.Max
	}
	if !cmd.Flags().Changed("nseconds") && cfg.NSeconds != nil {
		opts.NSeconds = *cfg.NSeconds
	}
	if !cmd.Flags().Changed("logfile") && cfg.Logfile != "" {
		opts.Logfile = cfg.Logfile
	}
	return nil
}
