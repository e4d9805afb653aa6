// internal/cli/config.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slagyr/homebrew-tap/pkg/core"
)

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or save the effective configuration",
	Long: `Print the configuration in effect after the config file, TAP_PREFIX and
flags are applied. With --write it is saved to the config file.

Examples:
  tap config
  tap config --prefix /tmp/brew --write`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "save the effective configuration to the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))

	if !configWrite {
		return nil
	}

	path := cfgFile
	if path == "" {
		if path, err = core.DefaultPath(); err != nil {
			return err
		}
	}
	if err := core.SaveConfig(config, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Saved %s\n", path)
	return nil
}
