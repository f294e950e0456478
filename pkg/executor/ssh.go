package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
)

// Remote runs commands over an already-authenticated SSH connection. The
// client is opened once per host and reused for every command the host's
// tasks produce; each command gets its own session on the multiplexed
// connection.
type Remote struct {
	Client *ssh.Client
	Log    *console.Logger
}

// NewRemote returns a remote executor bound to client.
func NewRemote(client *ssh.Client, log *console.Logger) *Remote {
	return &Remote{Client: client, Log: log}
}

// Run executes the command on the remote side. When Dir is set the command
// is prefixed with `cd <dir> &&`; when Shell is set it is wrapped in
// `sh -c "..."`. Stdout and stderr are drained by two concurrent readers
// joined before the exit status is read, so that neither stream's window
// can fill and stall the remote command.
func (r *Remote) Run(ctx context.Context, command string, opts Options) (*Result, error) {
	sess, err := r.Client.NewSession()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	defer sess.Close()

	effective := command
	if opts.Shell {
		effective = fmt.Sprintf("sh -c \"%s\"", command)
	}
	if opts.Dir != "" {
		effective = fmt.Sprintf("cd %s && %s", opts.Dir, effective)
	}

	stdout, err := sess.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}
	stderr, err := sess.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	if err := sess.Start(effective); err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	// A hung remote command hangs the run: there is deliberately no timeout,
	// matching the synchronous end-to-end execution model. The ctx parameter
	// is accepted for interface symmetry; ssh sessions have no kill API tied
	// to contexts.
	_ = ctx

	var (
		wg     sync.WaitGroup
		outBuf strings.Builder
		errBuf strings.Builder
	)
	wg.Add(2)
	go r.drain(&wg, stdout, &outBuf, opts.DisplayOutput, r.Log.OutputChunk)
	go r.drain(&wg, stderr, &errBuf, opts.DisplayOutput, r.Log.ErrorChunk)
	wg.Wait()

	exitCode := 0
	if err := sess.Wait(); err != nil {
		var exitErr *ssh.ExitError
		var missing *ssh.ExitMissingError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitStatus()
		case errors.As(err, &missing):
			exitCode = -1
		default:
			return nil, &SpawnError{Command: command, Err: err}
		}
	}

	return &Result{
		Stdout:   outBuf.String(),
		Stderr:   errBuf.String(),
		ExitCode: exitCode,
	}, nil
}

// drain copies one stream into buf in bounded reads, optionally echoing each
// chunk as it arrives.
func (r *Remote) drain(wg *sync.WaitGroup, src io.Reader, buf *strings.Builder, display bool, emit func(string)) {
	defer wg.Done()
	chunk := make([]byte, 1024)
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			s := string(chunk[:n])
			buf.WriteString(s)
			if display {
				emit(s)
			}
		}
		if err != nil {
			return
		}
	}
}
