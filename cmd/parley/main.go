package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Terminal client for the Parley chat server",
		Long: `Parley is a terminal client for the Parley chat server.

It keeps a synchronized local copy of your rooms and friends over a
persistent WebSocket connection and lets you chat from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		chatCmd(),
		uploadCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		var pe *errors.Error
		if stderrors.As(err, &pe) {
			fmt.Fprint(os.Stderr, pe.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}
