package formula

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
)

const (
	// DefaultInterpreter is the shebang used when a formula does not set one
	DefaultInterpreter = "/usr/bin/env bash"
)

// Parse decodes a TOML formula and fills in defaults.
func Parse(data []byte) (*Formula, error) {
	var f Formula
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, eris.Wrap(err, "failed to decode formula")
	}

	f.applyDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Load reads and parses a formula file.
func Load(path string) (*Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read formula %s", path)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid formula %s", path)
	}

	return f, nil
}

func (f *Formula) applyDefaults() {
	if f.Wrapper.Name == "" {
		f.Wrapper.Name = f.Name
	}
	if f.Wrapper.Interpreter == "" {
		f.Wrapper.Interpreter = DefaultInterpreter
	}
}

// Validate checks the invariants every formula must hold before it can be
// installed.
func (f *Formula) Validate() error {
	switch {
	case f.Name == "":
		return eris.New("formula name is required")
	case f.URL == "":
		return eris.Errorf("formula %s: url is required", f.Name)
	case f.Tag == "":
		return eris.Errorf("formula %s: tag is required", f.Name)
	case f.Wrapper.Runtime == "":
		return eris.Errorf("formula %s: wrapper runtime is required", f.Name)
	case f.Wrapper.Config == "":
		return eris.Errorf("formula %s: wrapper config is required", f.Name)
	case f.Wrapper.Subcommand == "":
		return eris.Errorf("formula %s: wrapper subcommand is required", f.Name)
	}

	if _, err := f.Version(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(f.Dependencies))
	for _, dep := range f.Dependencies {
		if dep.Name == "" {
			return eris.Errorf("formula %s: dependency without a name", f.Name)
		}
		if seen[dep.Name] {
			return eris.Errorf("formula %s: duplicate dependency %s", f.Name, dep.Name)
		}
		seen[dep.Name] = true
	}

	return nil
}

// Version returns the semantic version pinned by the tag, without the "v"
// prefix ("v0.1.0" -> "0.1.0").
func (f *Formula) Version() (string, error) {
	v, err := semver.NewVersion(f.Tag)
	if err != nil {
		return "", eris.Wrapf(err, "formula %s: tag %q is not a version", f.Name, f.Tag)
	}
	return v.String(), nil
}
