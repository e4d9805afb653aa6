// Package deps checks that the formulas a formula depends on are present
// before it is installed. It never installs anything itself.
package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/slagyr/homebrew-tap/pkg/formula"
	"github.com/slagyr/homebrew-tap/pkg/platform"
)

// ErrDependencyMissing is returned when a declared dependency is not installed
var ErrDependencyMissing = errors.New("dependency missing")

// Status is the outcome of checking one dependency
type Status struct {
	Dependency formula.Dependency
	Satisfied  bool
	Path       string // Executable or keg that satisfied it
}

// Checker looks dependencies up on PATH and in a Cellar
type Checker struct {
	// LookPath finds an executable; defaults to a PATH search
	LookPath func(name string) (string, bool)
	// Cellar is <prefix>/Cellar; empty disables the keg lookup
	Cellar string
}

// NewChecker creates a Checker searching PATH and cellar
func NewChecker(cellar string) *Checker {
	return &Checker{LookPath: platform.CommandPath, Cellar: cellar}
}

// Check reports the status of every dependency of f, in declaration order
func (c *Checker) Check(f *formula.Formula) []Status {
	statuses := make([]Status, 0, len(f.Dependencies))
	for _, dep := range f.Dependencies {
		statuses = append(statuses, c.check(dep))
	}
	return statuses
}

func (c *Checker) check(dep formula.Dependency) Status {
	st := Status{Dependency: dep}

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = platform.CommandPath
	}

	if dep.Provides != "" {
		if p, ok := lookPath(dep.Provides); ok {
			st.Satisfied = true
			st.Path = p
			return st
		}
	}

	if c.Cellar != "" {
		kegDir := filepath.Join(c.Cellar, dep.ShortName())
		if entries, err := os.ReadDir(kegDir); err == nil && len(entries) > 0 {
			st.Satisfied = true
			st.Path = kegDir
		}
	}

	return st
}

// Require fails with ErrDependencyMissing naming every unsatisfied
// dependency of f.
func (c *Checker) Require(f *formula.Formula) error {
	var missing []string
	for _, st := range c.Check(f) {
		if !st.Satisfied {
			missing = append(missing, st.Dependency.Name)
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrDependencyMissing, "%s requires %s", f.Name, strings.Join(missing, ", "))
	}
	return nil
}
