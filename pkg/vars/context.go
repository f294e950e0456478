// Package vars holds the ordered, mutable variable context threaded through
// deployment and task execution. The context is exclusively owned by the
// single execution path — there is no parallelism and no locking.
package vars

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Context is an insertion-ordered mapping from variable name to a JSON-like
// value. Overwriting an existing key keeps its position; Delete followed by
// Set moves the key to the end.
type Context struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{m: orderedmap.New[string, any]()}
}

// Set inserts or overwrites a variable.
func (c *Context) Set(name string, value any) {
	c.m.Set(name, value)
}

// Get looks up a variable.
func (c *Context) Get(name string) (any, bool) {
	return c.m.Get(name)
}

// Delete removes a variable if present.
func (c *Context) Delete(name string) {
	c.m.Delete(name)
}

// Len returns the number of variables.
func (c *Context) Len() int {
	return c.m.Len()
}

// Names returns all variable names in insertion order.
func (c *Context) Names() []string {
	names := make([]string, 0, c.m.Len())
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Env returns a snapshot map for expression evaluation. Mutating the
// returned map does not affect the context.
func (c *Context) Env() map[string]any {
	env := make(map[string]any, c.m.Len())
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		env[p.Key] = p.Value
	}
	return env
}
