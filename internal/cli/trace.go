// internal/cli/trace.go
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var traceStatus uint8

var traceCmd = &cobra.Command{
	Use:   "trace [formula] [-- args...]",
	Short: "Show what a formula's launcher would run",
	Long: `Interpret the launcher without starting the runtime and print the
command line it would exec for the given arguments.

Examples:
  tap trace -- status --json
  tap trace braids --status 2 -- bogus`,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().Uint8Var(&traceStatus, "status", 0, "exit status to report for the runtime")
}

func runTrace(cmd *cobra.Command, args []string) error {
	var names, rest []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		names, rest = args[:dash], args[dash:]
	} else {
		names = args
	}
	if len(names) > 1 {
		return fmt.Errorf("expected at most one formula, got %d", len(names))
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	inv, err := m.Trace(cmd.Context(), formulaArg(names), rest, traceStatus)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, "exec")
	for _, a := range inv.Argv {
		fmt.Fprintf(out, " %s", strconv.Quote(a))
	}
	fmt.Fprintf(out, "\nexit %d\n", inv.ExitCode)
	return nil
}
