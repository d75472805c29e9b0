package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roobie/castor/cmd/castor/commands"
	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		if errors.Is(err, cmdutil.ErrHandled) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
