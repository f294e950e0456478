package executor

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
)

func runLocal(t *testing.T, command string, opts Options) (*Result, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	l := NewLocal(&console.Logger{Out: &out, Err: &errOut})
	res, err := l.Run(context.Background(), command, opts)
	if err != nil {
		t.Fatalf("Run(%q) error: %v", command, err)
	}
	return res, out.String(), errOut.String()
}

func TestLocalDirectExec(t *testing.T) {
	res, out, _ := runLocal(t, "echo hello", Options{DisplayOutput: true})
	if res.Stdout != "hello" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello")
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("streamed output = %q, want the line echoed", out)
	}
}

func TestLocalQuotedArguments(t *testing.T) {
	// Direct exec splits with POSIX quoting rules, so the quoted argument
	// stays a single word.
	res, _, _ := runLocal(t, `echo "two words"`, Options{})
	if res.Stdout != "two words" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "two words")
	}
}

func TestLocalShellMode(t *testing.T) {
	res, _, _ := runLocal(t, "printf a; printf b", Options{Shell: true})
	if res.Stdout != "ab" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "ab")
	}
}

func TestLocalNonZeroExit(t *testing.T) {
	res, _, _ := runLocal(t, "exit 3", Options{Shell: true})
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
}

func TestLocalStderrCaptured(t *testing.T) {
	res, _, errOut := runLocal(t, "echo oops >&2", Options{Shell: true, DisplayOutput: true})
	if res.Stderr != "oops" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "oops")
	}
	if !strings.Contains(errOut, "oops") {
		t.Errorf("streamed stderr = %q, want the line echoed", errOut)
	}
}

func TestLocalWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	res, _, _ := runLocal(t, "pwd", Options{Shell: true, Dir: dir})
	// TempDir may sit behind a symlink (notably /tmp on macOS).
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := filepath.EvalSymlinks(res.Stdout)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("pwd = %q, want %q", got, want)
	}
}

func TestLocalMultilineOutputJoined(t *testing.T) {
	res, _, _ := runLocal(t, `printf "one\ntwo\nthree\n"`, Options{Shell: true})
	if res.Stdout != "one\ntwo\nthree" {
		t.Errorf("Stdout = %q, want lines joined without trailing newline", res.Stdout)
	}
}

func TestLocalDisplaySuppressed(t *testing.T) {
	_, out, _ := runLocal(t, "echo quiet", Options{DisplayOutput: false})
	if strings.Contains(out, "quiet") {
		t.Errorf("output = %q, want nothing streamed when display is off", out)
	}
}

func TestLocalEmptyCommandRejected(t *testing.T) {
	l := NewLocal(console.Discard())
	if _, err := l.Run(context.Background(), "   ", Options{}); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}

func TestLocalSpawnFailure(t *testing.T) {
	l := NewLocal(console.Discard())
	_, err := l.Run(context.Background(), "definitely-not-a-real-binary-xyz", Options{})
	if err == nil {
		t.Fatal("expected a spawn error for a missing binary")
	}
	if _, ok := err.(*SpawnError); !ok {
		t.Errorf("error = %T, want *SpawnError", err)
	}
}
