package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/retain/pkg/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long: `Load the configuration file, apply defaults and environment overrides,
and check every job, the journal and telemetry settings.

All problems are reported at once. The exit status is non-zero if any
are found.

Examples:
  retain validate --config /etc/retain/retain.yaml
  retain validate -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid (%d jobs)\n", len(cfg.Jobs))
			if verbose {
				for i := range cfg.Jobs {
					printJob(cmd, &cfg.Jobs[i])
				}
			}
			return nil
		},
	}
}

func printJob(cmd *cobra.Command, jc *config.JobConfig) {
	out := cmd.OutOrStdout()
	schedule, _ := jc.RetentionSchedule()
	fmt.Fprintf(out, "  %s: source=%s policies=[%s] alignment=%s", jc.Name, jc.Source.Type, schedule, jc.Alignment)
	if jc.Cron != "" {
		fmt.Fprintf(out, " schedule=%q", jc.Cron)
	}
	if jc.Watch {
		fmt.Fprint(out, " watch")
	}
	fmt.Fprintf(out, " keeps at most %d\n", schedule.MaxKept())
}
