// errors.go
package tap

import (
	"errors"
	"fmt"

	"github.com/slagyr/homebrew-tap/pkg/deps"
	"github.com/slagyr/homebrew-tap/pkg/formula"
	"github.com/slagyr/homebrew-tap/pkg/keg"
	"github.com/slagyr/homebrew-tap/pkg/smoke"
	"github.com/slagyr/homebrew-tap/pkg/source"
)

var (
	// ErrFormulaNotFound indicates no formula has the requested name
	ErrFormulaNotFound = formula.ErrNotFound

	// ErrInvalidFormula indicates the formula file breaks an invariant
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrDependencyMissing indicates a declared dependency is not installed
	ErrDependencyMissing = deps.ErrDependencyMissing

	// ErrFetch indicates the source snapshot could not be obtained
	ErrFetch = source.ErrFetch

	// ErrInstall indicates the keg could not be written
	ErrInstall = keg.ErrInstall

	// ErrNotInstalled indicates the formula has no keg
	ErrNotInstalled = errors.New("formula not installed")

	// ErrNotExecutable indicates the installed launcher cannot be run
	ErrNotExecutable = smoke.ErrNotExecutable

	// ErrAssertion indicates the formula's test did not pass
	ErrAssertion = smoke.ErrAssertion
)

// Error wraps an error with additional context
type Error struct {
	Op      string // Operation that failed
	Formula string // Formula name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Formula != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Formula, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
