// Package executor abstracts "run this command and stream back
// stdout/stderr and an exit code" over a local subprocess or a remote SSH
// session. A non-zero exit code is returned as data, not as an error; the
// task engine decides that non-zero is fatal.
package executor

import (
	"context"
	"fmt"
)

// Result holds the captured output of one command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Options control how a single command is run.
type Options struct {
	// Shell runs the command through `sh -c` instead of exec-ing it directly.
	Shell bool
	// DisplayOutput streams output to the console as it is produced. The
	// engine turns this off while capturing into a register.
	DisplayOutput bool
	// Dir is the working directory for the command, if any.
	Dir string
}

// Executor is the capability selected once per host and passed down to the
// task engine.
type Executor interface {
	Run(ctx context.Context, command string, opts Options) (*Result, error)
}

// SpawnError reports a command that could not start at all: the local
// process failed to spawn, or the remote channel could not be opened.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("start command %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
