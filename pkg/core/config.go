// pkg/core/config.go
package core

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/slagyr/homebrew-tap/pkg/platform"
)

// PrefixEnv overrides the configured prefix when set
const PrefixEnv = "TAP_PREFIX"

// Config holds tap configuration
type Config struct {
	Prefix     string `yaml:"prefix"`      // Root holding Cellar/ and bin/
	FormulaDir string `yaml:"formula_dir"` // Extra formula files, searched before bundled ones
	Debug      bool   `yaml:"debug"`
	Link       bool   `yaml:"link"` // Link wrappers into <prefix>/bin after install
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Prefix: getDefaultPrefix(),
		Debug:  false,
		Link:   true,
	}
}

// DefaultPath is $HOME/.config/tap/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "failed to locate home directory")
	}
	return filepath.Join(home, ".config", "tap", "config.yaml"), nil
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, eris.Wrap(err, "reading config")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(err, "parsing config %s", path)
	}

	if p := os.Getenv(PrefixEnv); p != "" {
		cfg.Prefix = p
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrap(err, "writing config")
	}

	return nil
}

func getDefaultPrefix() string {
	if p := os.Getenv(PrefixEnv); p != "" {
		return p
	}
	return platform.Detect().DefaultPrefix()
}
