/*
Package cli provides shared helpers for the themis command.

The package covers output format selection, progress reporting for long
evaluation runs, error types that carry command context, and signal-aware
contexts for graceful shutdown.

Output Formatting:

Commands that support --format validate the flag and render JSON through
one helper so every command emits the same shape:

	format, err := cli.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, result)
	}

Progress Reporting:

For long-running operations, use the progress reporter:

	progress := cli.NewProgressReporter(os.Stdout, "eval")
	progress.Start(total)
	for i := int64(0); i < total; i++ {
		// Do work
		progress.Update(i + 1)
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
