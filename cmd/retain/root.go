package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/cli"
	"mercator-hq/retain/pkg/config"
	"mercator-hq/retain/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// newRootCmd builds the command tree. Global flags are bound to cfgFile
// and verbose.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "retain",
		Short: "Retain - periodic snapshot retention",
		Long: `Retain decides which periodic backup snapshots to keep.

Each snapshot name encodes its creation time. Retention policies describe
how many snapshots to keep per interval; everything no policy claims is
printed so it can be deleted.

The newest snapshot is always kept.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "retain.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newPruneCmd(),
		newRunCmd(),
		newValidateCmd(),
		newHistoryCmd(),
		newVersionCmd(),
		newCompletionCmd(root),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	root := newRootCmd()
	root.SetArgs(normalizePolicyArgs(os.Args[1:]))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// loadConfig loads cfgFile with environment overrides and installs it as
// the global configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs always go to w so stdout stays
// reserved for command output.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Writer:    w,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger.Slog())
	return logger, nil
}
