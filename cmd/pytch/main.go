// Command pytch validates sprite manifests, runs scenarios against a
// simulated micro:bit and inspects journaled runs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/pytch/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
