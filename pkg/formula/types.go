// types.go
package formula

import "strings"

// Formula is the declarative description of a package: where its source
// lives, what it needs and how its launcher is built.
type Formula struct {
	Name         string       `toml:"name"`
	Desc         string       `toml:"desc"`
	Homepage     string       `toml:"homepage"`
	URL          string       `toml:"url"`
	Tag          string       `toml:"tag"`
	License      string       `toml:"license"`
	Dependencies []Dependency `toml:"dependencies"`
	Wrapper      Wrapper      `toml:"wrapper"`
	Test         Check        `toml:"test"`
}

// Dependency references another formula that must be installed first
type Dependency struct {
	Name     string `toml:"name"`     // Formula identifier, possibly tap-qualified
	Provides string `toml:"provides"` // Executable the formula puts on PATH
}

// ShortName returns the formula name without its tap prefix,
// e.g. "borkdude/brew/babashka" -> "babashka".
func (d Dependency) ShortName() string {
	if i := strings.LastIndex(d.Name, "/"); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// Wrapper configures the generated launcher script
type Wrapper struct {
	Name        string `toml:"name"`        // Defaults to the formula name
	Interpreter string `toml:"interpreter"` // Shebang command
	Runtime     string `toml:"runtime"`     // External program the launcher execs
	Config      string `toml:"config"`      // Config file, relative to libexec
	Subcommand  string `toml:"subcommand"`  // Fixed first argument after the config flag
}

// Check is the smoke test run against an installed formula
type Check struct {
	Args     []string `toml:"args"`
	Match    string   `toml:"match"`
	ExitCode int      `toml:"exit_code"`
}
