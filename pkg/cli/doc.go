/*
Package cli provides command-line interface utilities for retain.

The cli package includes output formatters, error types and signal handling
used by the retain command.

Output Formatting:

Commands that print records support text, JSON and CSV:

	formatter, err := cli.NewFormatter(cli.FormatCSV)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, rows); err != nil {
		return err
	}

CSV output requires data implementing Table.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
