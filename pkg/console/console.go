// Package console renders the run narrative to the terminal. Every message
// the tool emits goes through a Logger so tests can capture output and so
// the color scheme stays in one place.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Logger writes the deployment run narrative. Out receives normal progress
// and command stdout; Err receives command stderr and error reports.
type Logger struct {
	Out io.Writer
	Err io.Writer
}

// New returns a Logger bound to the process streams.
func New() *Logger {
	return &Logger{Out: os.Stdout, Err: os.Stderr}
}

// Discard returns a Logger that swallows everything. Used in tests.
func Discard() *Logger {
	return &Logger{Out: io.Discard, Err: io.Discard}
}

// Deployment announces the start of a deployment.
func (l *Logger) Deployment(name string) {
	fmt.Fprintln(l.Out, green.Render(fmt.Sprintf("Starting deployment: %s\n", name)))
}

// Host announces the host being processed. Only emitted when a deployment
// targets more than one host.
func (l *Logger) Host(name string) {
	fmt.Fprintln(l.Out, blue.Render(fmt.Sprintf("Processing host: %s\n", name)))
}

// TaskStart announces a task about to execute.
func (l *Logger) TaskStart(name string) {
	fmt.Fprintln(l.Out, cyan.Render(fmt.Sprintf("Executing task: %s", name)))
}

// TaskSkip announces a task whose condition evaluated false.
func (l *Logger) TaskSkip(name string) {
	fmt.Fprintln(l.Out, yellow.Render(fmt.Sprintf("Skipping task: %s\n", name)))
}

// TaskEnd separates tasks in the output.
func (l *Logger) TaskEnd() {
	fmt.Fprintln(l.Out)
}

// Command echoes a logical command before it runs.
func (l *Logger) Command(cmd string) {
	fmt.Fprintln(l.Out, magenta.Render(fmt.Sprintf("> %s", cmd)))
}

// Register announces a captured command result.
func (l *Logger) Register(name string) {
	fmt.Fprintln(l.Out, yellow.Render(fmt.Sprintf("Registering output to: %s", name)))
}

// Include announces a nested task file.
func (l *Logger) Include(path string) {
	fmt.Fprintln(l.Out, blue.Render(fmt.Sprintf("Including tasks from: %s\n", path)))
}

// DebugHeader opens a task's debug block.
func (l *Logger) DebugHeader() {
	fmt.Fprintln(l.Out, blue.Render("Debug:"))
}

// Debug emits one rendered debug label/message pair.
func (l *Logger) Debug(label, message string) {
	fmt.Fprintln(l.Out, blue.Render(fmt.Sprintf("%s:", label)))
	fmt.Fprintln(l.Out, blue.Render(message))
}

// OutputLine streams one line of command stdout.
func (l *Logger) OutputLine(line string) {
	fmt.Fprintln(l.Out, white.Render(line))
}

// ErrorLine streams one line of command stderr.
func (l *Logger) ErrorLine(line string) {
	fmt.Fprintln(l.Err, red.Render(line))
}

// OutputChunk streams raw command stdout as it arrives, without adding a
// newline. Used by the remote executor's byte-oriented drain loop.
func (l *Logger) OutputChunk(chunk string) {
	fmt.Fprint(l.Out, white.Render(chunk))
}

// ErrorChunk streams raw command stderr as it arrives.
func (l *Logger) ErrorChunk(chunk string) {
	fmt.Fprint(l.Err, red.Render(chunk))
}

// Errorf reports a failure on the error stream.
func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintln(l.Err, red.Render(fmt.Sprintf(format, args...)))
}
