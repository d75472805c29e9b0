// Package cmdutil provides shared utilities for castor commands: global
// flag state, store-root resolution, and the success/error output
// conventions §6 of the store spec requires (table text by default,
// a {success, result_code, ...} record under --json/--output).
package cmdutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roobie/castor/internal/cli/output"
	"github.com/roobie/castor/internal/logger"
	"github.com/roobie/castor/pkg/storeerr"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values shared by every subcommand.
type GlobalFlags struct {
	Root   string
	Output string
}

// ErrHandled is returned by RunE functions after they have already
// printed an error (as text or as a JSON record) to stderr. main.go
// checks for it so the error is never printed a second time.
var ErrHandled = errors.New("handled")

// ResolveRoot returns the store root for the current invocation: the
// --root flag if set, else the CASTOR_ROOT environment variable (via
// viper), else the current directory.
func ResolveRoot() string {
	if Flags.Root != "" {
		return Flags.Root
	}
	if v := viper.GetString("root"); v != "" {
		return v
	}
	return "."
}

// OutputFormat returns the parsed output format, defaulting to table
// when --json was not given and --output was left at its default.
func OutputFormat() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// Fail reports err for operation op: a record on --json/--output json,
// otherwise a plain "Error: ..." line, always to stderr. It returns
// ErrHandled so the caller's RunE can propagate a non-nil error without
// main.go printing it again.
func Fail(op string, err error) error {
	format, ferr := OutputFormat()
	if ferr == nil && format == output.FormatJSON {
		record := map[string]any{
			"success":     false,
			"result_code": storeerr.ResultCode(err),
			"error":       err.Error(),
		}
		_ = output.PrintJSON(os.Stderr, record)
		return ErrHandled
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ErrHandled
}

// EmitJSON writes payload merged with {success: true, result_code: 0}
// to stdout. Callers only reach this after confirming the output
// format is JSON.
func EmitJSON(payload map[string]any) error {
	record := map[string]any{
		"success":     true,
		"result_code": 0,
	}
	for k, v := range payload {
		record[k] = v
	}
	return output.PrintJSON(os.Stdout, record)
}

// IsJSON reports whether the current invocation requested JSON output.
func IsJSON() bool {
	format, err := OutputFormat()
	return err == nil && format == output.FormatJSON
}

// BindRootFlags registers the --root, --json, and --output persistent
// flags on cmd, wires viper to read CASTOR_ROOT as a fallback for
// --root, and sends log output to stderr (as JSON lines under JSON
// output) so stdout carries only the command's result.
func BindRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&Flags.Root, "root", "", "Store root directory (default: $CASTOR_ROOT or \".\")")
	cmd.PersistentFlags().StringVarP(&Flags.Output, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.PersistentFlags().Bool("json", false, "Shorthand for --output json")

	viper.SetEnvPrefix("castor")
	viper.AutomaticEnv()
	_ = viper.BindEnv("root")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
			Flags.Output = "json"
		}
		if _, err := OutputFormat(); err != nil {
			return err
		}
		logCfg := logger.Config{Output: "stderr"}
		if IsJSON() {
			logCfg.Format = "json"
		}
		return logger.Init(logCfg)
	}
}
