// internal/cli/test.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	tap "github.com/slagyr/homebrew-tap"
)

var testCmd = &cobra.Command{
	Use:   "test [formula]",
	Short: "Run an installed formula's test",
	Long: `Run the installed launcher with the formula's test arguments and check
its exit status and output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		return runFormulaTest(cmd, m, formulaArg(args))
	},
}

func runFormulaTest(cmd *cobra.Command, m *tap.Manager, name string) error {
	out := cmd.OutOrStdout()

	res, err := m.Test(cmd.Context(), name)
	if res != nil {
		fmt.Fprintf(out, "==> %s\n", strings.Join(res.Command, " "))
		if res.Output != "" {
			fmt.Fprint(out, res.Output)
			if !strings.HasSuffix(res.Output, "\n") {
				fmt.Fprintln(out)
			}
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "✓ %s test passed\n", name)
	return nil
}
