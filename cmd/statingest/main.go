package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mward/statingest/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		// Command handlers render their own errors before wrapping them in
		// an ExitError; anything else is a cobra usage error and still
		// needs printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
