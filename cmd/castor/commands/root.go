// Package commands implements the castor CLI command tree.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/roobie/castor/cmd/castor/commands/cmdutil"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "castor",
	Short: "castor - content-addressed object store",
	Long: `castor is the command-line front end for a content-addressed object
store: hash-named immutable objects, transparent compression and
content-defined chunking of large files, a named reference table, and
mark-and-sweep garbage collection.

Use "castor [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cmdutil.BindRootFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(ingestTreeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(materializeCmd)
	rootCmd.AddCommand(refAddCmd)
	rootCmd.AddCommand(refListCmd)
	rootCmd.AddCommand(refRemoveCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(orphansCmd)
}
