// Package smoke runs a formula's post-install check against the installed
// launcher.
package smoke

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/slagyr/homebrew-tap/pkg/formula"
)

var (
	// ErrNotExecutable means the launcher is missing or lacks an execute bit
	ErrNotExecutable = errors.New("launcher not executable")

	// ErrAssertion means the launcher ran but its result did not match
	ErrAssertion = errors.New("assertion failed")
)

// Result is what the launcher produced
type Result struct {
	Command  []string
	Output   string // stdout and stderr, interleaved
	ExitCode int
}

// Run executes path with check.Args and asserts on exit code and output.
// The Result is returned even when the assertion fails.
func Run(ctx context.Context, path string, check formula.Check) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(ErrNotExecutable, "%s: %v", path, err)
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
		return nil, eris.Wrapf(ErrNotExecutable, "%s has mode %v", path, info.Mode())
	}

	res := &Result{Command: append([]string{path}, check.Args...)}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, check.Args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err = cmd.Run()
	res.Output = out.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return res, eris.Wrapf(err, "failed to run %s", path)
	}

	if res.ExitCode != check.ExitCode {
		return res, eris.Wrapf(ErrAssertion, "%s exited %d, expected %d", strings.Join(res.Command, " "), res.ExitCode, check.ExitCode)
	}
	if !strings.Contains(res.Output, check.Match) {
		return res, eris.Wrapf(ErrAssertion, "output of %s does not contain %q", strings.Join(res.Command, " "), check.Match)
	}

	return res, nil
}
