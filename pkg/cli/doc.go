// Package cli provides the command-line interface of sdflash.
//
// The CLI parses flags, checks that the target disk is safe to overwrite,
// connects to the indicator device and then runs the flashing station until
// the context is cancelled. Use `Run` as the entry point when embedding the
// CLI in other tools.
//
// Example usage:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := cli.Run(ctx, os.Args); err != nil {
//	    glog.Exitf("sdflash: %v", err)
//	}
package cli
