package executor

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/shlex"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
)

// Local runs commands as child processes on the machine the tool runs on.
type Local struct {
	Log *console.Logger
}

// NewLocal returns a local executor reporting through log.
func NewLocal(log *console.Logger) *Local {
	return &Local{Log: log}
}

// Run spawns the command, streams stdout and stderr line by line as they are
// produced, and returns the accumulated output (newline-joined, no trailing
// newline) with the child's exit code. A child killed by a signal reports
// exit code -1.
func (l *Local) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	var cmd *exec.Cmd
	if opts.Shell {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	} else {
		// POSIX word splitting: quoting and escaping honored, no shell
		// metacharacter expansion.
		parts, err := shlex.Split(command)
		if err != nil {
			return nil, &SpawnError{Command: command, Err: err}
		}
		if len(parts) == 0 {
			return nil, &SpawnError{Command: command, Err: errors.New("empty command")}
		}
		cmd = exec.CommandContext(ctx, parts[0], parts[1:]...)
	}
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	var (
		wg       sync.WaitGroup
		outLines []string
		errLines []string
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		outLines = l.scanLines(stdout, opts.DisplayOutput, l.Log.OutputLine)
	}()
	go func() {
		defer wg.Done()
		errLines = l.scanLines(stderr, opts.DisplayOutput, l.Log.ErrorLine)
	}()
	wg.Wait()

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &SpawnError{Command: command, Err: err}
		}
		// ExitCode is -1 when the process was terminated by a signal.
		exitCode = exitErr.ExitCode()
	}

	return &Result{
		Stdout:   strings.Join(outLines, "\n"),
		Stderr:   strings.Join(errLines, "\n"),
		ExitCode: exitCode,
	}, nil
}

func (l *Local) scanLines(r io.Reader, display bool, emit func(string)) []string {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if display {
			emit(line)
		}
		lines = append(lines, line)
	}
	return lines
}
