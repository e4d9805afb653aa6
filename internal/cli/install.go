// internal/cli/install.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	tap "github.com/slagyr/homebrew-tap"
)

var (
	installSource     string
	installIgnoreDeps bool
	installNoLink     bool
	installTest       bool
)

var installCmd = &cobra.Command{
	Use:   "install [formula]",
	Short: "Install a formula",
	Long: `Check dependencies, fetch the formula's pinned tag, install it into a
keg under <prefix>/Cellar and write its launcher.

Examples:
  tap install
  tap install braids --test
  tap install braids --source ./project-skill
  tap install braids --prefix /tmp/brew --no-link`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installSource, "source", "", "install from a local directory or tarball instead of the formula URL")
	installCmd.Flags().BoolVar(&installIgnoreDeps, "ignore-dependencies", false, "install even when dependencies are missing")
	installCmd.Flags().BoolVar(&installNoLink, "no-link", false, "do not link the launcher into <prefix>/bin")
	installCmd.Flags().BoolVar(&installTest, "test", false, "run the formula's test after installing")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := formulaArg(args)

	m, err := newManager()
	if err != nil {
		return err
	}

	res, err := m.Install(ctx, name, &tap.InstallOptions{
		Source:             installSource,
		IgnoreDependencies: installIgnoreDeps,
		NoLink:             installNoLink,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
	fmt.Fprintf(out, "✓ Installed %s %s\n", res.Receipt.Formula, res.Receipt.Version)
	fmt.Fprintf(out, "  Keg:     %s\n", res.Keg)
	fmt.Fprintf(out, "  Wrapper: %s\n", res.Wrapper)
	if res.Link != "" {
		fmt.Fprintf(out, "  Link:    %s\n", res.Link)
	}
	fmt.Fprintf(out, "  Digest:  %s\n", res.Receipt.Digest)

	if !installTest {
		return nil
	}
	return runFormulaTest(cmd, m, name)
}
