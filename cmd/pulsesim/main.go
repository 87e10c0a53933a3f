// Command pulsesim simulates pulse networks of toggle and allhigh modules.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pulsesim/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
