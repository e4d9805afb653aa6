// internal/cli/deps.go
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slagyr/homebrew-tap/pkg/brew"
)

var depsRemote bool

var depsCmd = &cobra.Command{
	Use:   "deps [formula]",
	Short: "Check a formula's dependencies",
	Long: `Report whether each dependency of a formula is present on PATH or in
the Cellar. With --remote, upstream versions are looked up in the Homebrew API.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().BoolVar(&depsRemote, "remote", false, "query the Homebrew API for each dependency")
}

func runDeps(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	list, err := m.Deps(cmd.Context(), formulaArg(args), depsRemote)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := 0
	for _, d := range list {
		if d.Satisfied {
			fmt.Fprintf(out, "✓ %s (%s)\n", d.Dependency.Name, d.Path)
		} else {
			missing++
			fmt.Fprintf(out, "✗ %s\n", d.Dependency.Name)
		}

		if !depsRemote {
			continue
		}
		switch {
		case d.Remote != nil:
			fmt.Fprintf(out, "    upstream: %s %s\n", d.Remote.Name, d.Remote.Versions.Stable)
		case errors.Is(d.RemoteErr, brew.ErrNotInCoreAPI):
			fmt.Fprintf(out, "    upstream: third-party tap, not in the core API\n")
		case d.RemoteErr != nil:
			fmt.Fprintf(out, "    upstream: %v\n", d.RemoteErr)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d dependencies missing", missing, len(list))
	}
	return nil
}
