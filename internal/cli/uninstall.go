// internal/cli/uninstall.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall [formula]",
	Aliases: []string{"remove", "rm"},
	Short:   "Remove an installed formula",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}

		name := formulaArg(args)
		if err := m.Uninstall(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Uninstalled %s\n", name)
		return nil
	},
}
