package wrapper

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/interp"
)

// Invocation is what a launcher does when run with a given argument list
type Invocation struct {
	Argv     []string // Command line handed to exec, program first
	ExitCode int      // Status the launcher exits with
}

// Trace interprets script with args as its positional parameters. Commands are
// not started: each one is recorded and reported as exiting with status, so
// Invocation.ExitCode shows how the launcher propagates the runtime's status.
func Trace(ctx context.Context, script string, args []string, status uint8) (*Invocation, error) {
	file, err := parse(script)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse wrapper")
	}

	inv := &Invocation{}
	record := func(ctx context.Context, argv []string) error {
		inv.Argv = append([]string(nil), argv...)
		if status != 0 {
			return interp.NewExitStatus(status)
		}
		return nil
	}

	runner, err := interp.New(
		interp.Params(append([]string{"--"}, args...)...),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandler(record),
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to initialize runner")
	}

	err = runner.Run(ctx, file)
	if code, ok := interp.IsExitStatus(err); ok {
		inv.ExitCode = int(code)
		return inv, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "wrapper failed")
	}

	return inv, nil
}
