package render

import (
	"fmt"
	"strings"
)

// UndefinedVariableError reports a template that references a name absent
// from the variable context. It carries the offending template text and a
// snapshot of the names that were available, so the operator can fix the
// deployment file.
type UndefinedVariableError struct {
	Template  string
	Available []string
	Err       error
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("one or more of the variables are undefined in:\n%q\navailable vars: [%s]",
		e.Template, strings.Join(e.Available, ", "))
}

func (e *UndefinedVariableError) Unwrap() error { return e.Err }

// SyntaxError reports a template expression that could not be parsed.
type SyntaxError struct {
	Template string
	Err      error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error in %q: %v", e.Template, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// InvalidJSONError reports a from_json coercion whose rendered text failed
// to parse as JSON.
type InvalidJSONError struct {
	Template string
	Rendered string
	Err      error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("error parsing JSON: %v:\n%s\nat %q", e.Err, e.Rendered, e.Template)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }
