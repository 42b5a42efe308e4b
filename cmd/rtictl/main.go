package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtiassist/internal/config"
	"rtiassist/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options shared by every subcommand
type rootOptions struct {
	apiURL  string
	timeout time.Duration
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rtictl",
		Short: "Talk to the RTI classifier backend from the shell",
		Long: `rtictl calls the RTI backend directly: check it is up, list the officer
directory, predict the department for a complaint, draft a full RTI letter, or
generate a letter body with the configured LLM provider.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.Load()
			if opts.apiURL != "" {
				opts.cfg.APIBase = opts.apiURL
			}
			if opts.timeout > 0 {
				opts.cfg.BackendTimeout = opts.timeout
			}

			level := opts.cfg.LogLevel
			if opts.verbose {
				level = "debug"
			} else if level != "debug" {
				level = "warn"
			}
			logger, err := logging.New(level, "production")
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "backend base URL (default $RTI_API_URL or "+config.DefaultAPIBase+")")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "backend request timeout (default $BACKEND_TIMEOUT_MS)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(healthCmd(opts))
	cmd.AddCommand(piosCmd(opts))
	cmd.AddCommand(predictCmd(opts))
	cmd.AddCommand(letterCmd(opts))
	cmd.AddCommand(bodyCmd(opts))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
