// bidintel is the single binary for the tender win-probability service: it
// serves the prediction API and ships the operational subcommands around it.
package main

import (
	"fmt"
	"os"

	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
