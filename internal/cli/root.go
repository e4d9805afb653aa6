// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	tap "github.com/slagyr/homebrew-tap"
	"github.com/slagyr/homebrew-tap/pkg/core"
)

// defaultFormula is used when a command is given no formula name
const defaultFormula = "braids"

var (
	cfgFile string
	prefix  string
	debug   bool
	config  *core.Config
	logger  zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tap",
	Short: "Install and verify formulas from the slagyr tap",
	Long: `tap - installs formulas from the slagyr Homebrew tap

Each formula pins a git tag of a project, installs the snapshot into a
versioned keg and writes a launcher that runs it through its runtime.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/tap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "install prefix holding Cellar/ and bin/")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add commands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		config = core.DefaultConfig()
	}

	// Override config with flags
	if prefix != "" {
		config.Prefix = prefix
	}
	if debug {
		config.Debug = true
	}

	level := zerolog.InfoLevel
	if config.Debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// newManager builds a Manager from the loaded configuration
func newManager() (*tap.Manager, error) {
	cfg := tap.DefaultConfig()
	cfg.Prefix = config.Prefix
	cfg.FormulaDir = config.FormulaDir
	cfg.Link = config.Link
	cfg.Logger = logger
	if config.Debug {
		cfg.Progress = os.Stderr
	}
	return tap.NewManager(cfg)
}

// formulaArg returns the formula named on the command line or the default
func formulaArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultFormula
}
