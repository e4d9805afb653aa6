// internal/cli/list.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available formulas",
	Long:  `List bundled formulas and those found in the configured formula directory.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	names, err := m.Formulas()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		marker := " "
		if info, err := m.Info(name); err == nil && info.Installed {
			marker = "*"
		}
		fmt.Fprintf(out, "  %s %s\n", marker, name)
	}
	fmt.Fprintf(out, "\n* = installed under %s\n", m.Prefix())

	return nil
}
