// Package render expands {{ ... }} expression spans against the variable
// context. Lookups are strict: a name absent from the context is an error,
// not a silent empty string.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/spf13/cast"

	"github.com/flawiddsouza/deploy-helper/pkg/vars"
)

// fromJSONFilter is the identity transform; the actual JSON decoding happens
// in RenderValue, keyed off the filter's presence in the source text.
const fromJSONFilter = "from_json"

var (
	spanRe = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)
	// bareFilterRe rewrites Jinja-style `x | from_json` to the call form the
	// expression language expects.
	bareFilterRe = regexp.MustCompile(`\|\s*from_json\b(\s*\(\s*\))?`)
)

// Renderer expands template strings. It is stateless and safe to share.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render expands every {{ expr }} span in tmpl against the context and
// returns the resulting string. Text without template markers is returned
// unchanged.
func (r *Renderer) Render(tmpl string, ctx *vars.Context) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	env := buildEnv(ctx)
	var b strings.Builder
	last := 0
	for _, loc := range spanRe.FindAllStringSubmatchIndex(tmpl, -1) {
		b.WriteString(tmpl[last:loc[0]])
		val, err := evalExpr(tmpl[loc[2]:loc[3]], tmpl, env, ctx)
		if err != nil {
			return "", err
		}
		s, err := valueToString(val)
		if err != nil {
			return "", fmt.Errorf("render %q: %w", tmpl, err)
		}
		b.WriteString(s)
		last = loc[1]
	}
	b.WriteString(tmpl[last:])
	return b.String(), nil
}

// RenderValue renders tmpl and coerces the result: when the literal source
// text names the from_json filter, the rendered string is parsed as JSON
// and the structured value is returned; otherwise the rendered string is
// returned as-is.
func (r *Renderer) RenderValue(tmpl string, ctx *vars.Context) (any, error) {
	rendered, err := r.Render(tmpl, ctx)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(tmpl, fromJSONFilter) {
		return rendered, nil
	}
	var v any
	if err := json.Unmarshal([]byte(rendered), &v); err != nil {
		return nil, &InvalidJSONError{Template: tmpl, Rendered: rendered, Err: err}
	}
	return v, nil
}

// EvalCondition evaluates a when: expression. An absent condition is true.
// The expression is reduced to the literal text "true" or "false" and only
// an exact "false" skips the task.
func (r *Renderer) EvalCondition(cond string, ctx *vars.Context) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return true, nil
	}
	val, err := evalExpr(cond, cond, buildEnv(ctx), ctx)
	if err != nil {
		return false, err
	}
	rendered := "true"
	if !truthy(val) {
		rendered = "false"
	}
	return rendered != "false", nil
}

// buildEnv snapshots the context and adds the template filters.
func buildEnv(ctx *vars.Context) map[string]any {
	env := ctx.Env()
	env[fromJSONFilter] = func(v any) any { return v }
	return env
}

// evalExpr compiles and runs one expression span. tmpl is the full source
// template, reported on error.
func evalExpr(src, tmpl string, env map[string]any, ctx *vars.Context) (any, error) {
	code := bareFilterRe.ReplaceAllString(src, " | "+fromJSONFilter+"()")

	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		if strings.Contains(err.Error(), "unknown name") {
			return nil, &UndefinedVariableError{Template: tmpl, Available: ctx.Names(), Err: err}
		}
		return nil, &SyntaxError{Template: tmpl, Err: err}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", tmpl, err)
	}
	return out, nil
}

// valueToString renders an expression result as template output text.
// Scalars render plainly; structured values render as JSON.
func valueToString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("stringify %T value: %w", v, err)
	}
	return string(data), nil
}

// truthy mirrors template-language truthiness: false, none, zero, and empty
// strings/collections are falsy; everything else is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
