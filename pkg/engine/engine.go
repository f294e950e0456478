// Package engine interprets a deployment's declarative task list against the
// live variable context: condition gating, variable merging, loop expansion,
// template-resolved command dispatch, register capture, and recursive
// inclusion of external task files. Execution is strictly sequential and
// fails fast.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flawiddsouza/deploy-helper/pkg/console"
	"github.com/flawiddsouza/deploy-helper/pkg/executor"
	"github.com/flawiddsouza/deploy-helper/pkg/render"
	"github.com/flawiddsouza/deploy-helper/pkg/schema"
	"github.com/flawiddsouza/deploy-helper/pkg/vars"
)

// itemVar is the reserved context key bound to the current loop value.
const itemVar = "item"

// ExitStatusError reports a command that ran and returned a failing status.
// It aborts the entire run.
type ExitStatusError struct {
	Command  string
	ExitCode int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("command execution failed with exit status: %d. Stopping further tasks.", e.ExitCode)
}

// IncludeCycleError reports an include_tasks file that is already being
// executed further up the include chain.
type IncludeCycleError struct {
	Path  string
	Stack []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("include cycle detected: %s already included via %s", e.Path, strings.Join(e.Stack, " -> "))
}

// Engine executes task lists against one host. It owns no state of its own
// beyond the include stack; all variable state lives in Ctx, which is shared
// (and mutated) across recursive includes.
type Engine struct {
	Exec     executor.Executor
	Renderer *render.Renderer
	Ctx      *vars.Context
	// BaseDir is the directory containing the top-level deploy document;
	// include_tasks paths resolve relative to it.
	BaseDir string
	Log     *console.Logger

	includeStack []string
}

// New returns an engine bound to one host's executor and the shared context.
func New(exec executor.Executor, renderer *render.Renderer, ctx *vars.Context, baseDir string, log *console.Logger) *Engine {
	return &Engine{
		Exec:     exec,
		Renderer: renderer,
		Ctx:      ctx,
		BaseDir:  baseDir,
		Log:      log,
	}
}

// RunTasks executes the tasks in order, aborting on the first failure.
// inheritedChdir is the deployment-level (or including task's) working
// directory default.
func (e *Engine) RunTasks(ctx context.Context, tasks []schema.Task, inheritedChdir string) error {
	for i := range tasks {
		if err := e.runTask(ctx, &tasks[i], inheritedChdir); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runTask(ctx context.Context, task *schema.Task, inheritedChdir string) error {
	name, err := e.Renderer.Render(task.Name, e.Ctx)
	if err != nil {
		return err
	}

	if task.When != "" {
		ok, err := e.Renderer.EvalCondition(task.When, e.Ctx)
		if err != nil {
			return err
		}
		if !ok {
			// A skipped task has no side effects: no vars merge, no
			// execution, no register write.
			e.Log.TaskSkip(name)
			return nil
		}
	}

	e.Log.TaskStart(name)

	// Each assignment is visible to the ones after it in the same map.
	for p := task.Vars.Oldest(); p != nil; p = p.Next() {
		value, err := e.Renderer.RenderValue(p.Value, e.Ctx)
		if err != nil {
			return err
		}
		e.Ctx.Set(p.Key, value)
	}

	chdir := task.Chdir
	if chdir == "" {
		chdir = inheritedChdir
	}
	if chdir != "" {
		chdir, err = e.Renderer.Render(chdir, e.Ctx)
		if err != nil {
			return err
		}
	}

	// No loop means exactly one pass with no item binding.
	items := task.Loop
	if items == nil {
		items = []any{nil}
	}

	for _, item := range items {
		e.Ctx.Delete(itemVar)
		if item != nil {
			e.Ctx.Set(itemVar, item)
		}

		if task.Debug.Len() > 0 {
			e.Log.DebugHeader()
			for p := task.Debug.Oldest(); p != nil; p = p.Next() {
				msg, err := e.Renderer.Render(p.Value, e.Ctx)
				if err != nil {
					return err
				}
				e.Log.Debug(p.Key, msg)
			}
		}

		if task.Shell != "" {
			if err := e.runCommands(ctx, task.Shell, true, chdir, task.Register); err != nil {
				return err
			}
		}

		if task.Command != "" {
			if err := e.runCommands(ctx, task.Command, false, chdir, task.Register); err != nil {
				return err
			}
		}

		if task.IncludeTasks != "" {
			if err := e.runInclude(ctx, task.IncludeTasks, chdir); err != nil {
				return err
			}
		}
	}

	e.Log.TaskEnd()
	return nil
}

// runCommands splits a shell/command field into logical commands and runs
// them in order, rendering each against the current context. Output display
// is suppressed while capturing into a register.
func (e *Engine) runCommands(ctx context.Context, raw string, useShell bool, chdir, register string) error {
	for _, cmd := range SplitCommands(raw) {
		rendered, err := e.Renderer.Render(cmd, e.Ctx)
		if err != nil {
			return err
		}
		e.Log.Command(rendered)

		result, err := e.Exec.Run(ctx, rendered, executor.Options{
			Shell:         useShell,
			DisplayOutput: register == "",
			Dir:           chdir,
		})
		if err != nil {
			return fmt.Errorf("command execution failed: %w", err)
		}
		if result.ExitCode != 0 {
			return &ExitStatusError{Command: rendered, ExitCode: result.ExitCode}
		}

		if register != "" {
			e.Ctx.Set(register, RegisterValue(result))
			e.Log.Register(register)
		}
	}
	return nil
}

// RegisterValue shapes a command result the way templates see it: an object
// with string fields stdout/stderr and integer field rc.
func RegisterValue(result *executor.Result) map[string]any {
	return map[string]any{
		"stdout": result.Stdout,
		"stderr": result.Stderr,
		"rc":     result.ExitCode,
	}
}

// runInclude loads an external task list and executes it recursively with
// the current (shared, mutating) context and the current effective chdir as
// the inherited default. A file already on the include chain is rejected to
// keep a self-referential include from recursing forever.
func (e *Engine) runInclude(ctx context.Context, include, chdir string) error {
	e.Log.Include(include)

	path := include
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.BaseDir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve include path %s: %w", include, err)
	}
	for _, visited := range e.includeStack {
		if visited == abs {
			return &IncludeCycleError{Path: include, Stack: append(append([]string{}, e.includeStack...), abs)}
		}
	}

	tasks, err := schema.LoadTasks(abs)
	if err != nil {
		return fmt.Errorf("include tasks from %s: %w", include, err)
	}

	e.includeStack = append(e.includeStack, abs)
	err = e.RunTasks(ctx, tasks, chdir)
	e.includeStack = e.includeStack[:len(e.includeStack)-1]
	return err
}
