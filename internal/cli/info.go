// internal/cli/info.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [formula]",
	Short: "Show information about a formula",
	Long:  `Display a formula's metadata and, when installed, its install receipt.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	info, err := m.Info(formulaArg(args))
	if err != nil {
		return err
	}

	f := info.Formula
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Formula: %s\n", f.Name)
	fmt.Fprintf(out, "Version: %s (%s)\n", info.Version, f.Tag)
	if f.Desc != "" {
		fmt.Fprintf(out, "Description: %s\n", f.Desc)
	}
	if f.Homepage != "" {
		fmt.Fprintf(out, "Homepage: %s\n", f.Homepage)
	}
	fmt.Fprintf(out, "Source: %s\n", f.URL)
	if f.License != "" {
		fmt.Fprintf(out, "License: %s\n", f.License)
	}

	var names []string
	for _, d := range f.Dependencies {
		names = append(names, d.Name)
	}
	if len(names) > 0 {
		fmt.Fprintf(out, "Dependencies: %s\n", strings.Join(names, ", "))
	}

	if !info.Installed {
		fmt.Fprintf(out, "Installed: no\n")
		return nil
	}
	fmt.Fprintf(out, "Installed: %s\n", info.Keg)
	if r := info.Receipt; r != nil {
		fmt.Fprintf(out, "Platform: %s\n", r.Platform)
		fmt.Fprintf(out, "Linked: %t\n", r.Linked)
		fmt.Fprintf(out, "Digest: %s\n", r.Digest)
	}
	if ok, err := m.Verify(f.Name); err == nil {
		fmt.Fprintf(out, "Verified: %t\n", ok)
	}

	return nil
}
