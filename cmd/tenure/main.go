// Command tenure records work experience and totals how long it adds up to.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tenure/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
