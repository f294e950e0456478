// Package schema defines the Go struct types for the deployment and
// inventory YAML documents and provides strict parsing.
package schema

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Deployment is one named unit of work targeting one or more inventory
// hosts. Parsed once from the deploy document set; read-only afterwards
// except that its vars are evaluated once per deployment run.
type Deployment struct {
	Name  string     `yaml:"name"`
	Hosts string     `yaml:"hosts"`
	Chdir string     `yaml:"chdir,omitempty"`
	Vars  *StringMap `yaml:"vars,omitempty"`
	Tasks []Task     `yaml:"tasks"`
}

// HostList splits the comma-separated hosts field into trimmed inventory keys.
func (d *Deployment) HostList() []string {
	parts := strings.Split(d.Hosts, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		hosts = append(hosts, strings.TrimSpace(p))
	}
	return hosts
}

// Task is one unit of declarative work: a condition, optional variable
// assignment, optional loop, and one or more command executions or a
// nested include. Tasks are immutable once parsed; only the variable
// context they read and write is mutable.
type Task struct {
	Name         string     `yaml:"name"`
	Shell        string     `yaml:"shell,omitempty"`
	Command      string     `yaml:"command,omitempty"`
	Register     string     `yaml:"register,omitempty"`
	Debug        *StringMap `yaml:"debug,omitempty"`
	Vars         *StringMap `yaml:"vars,omitempty"`
	Chdir        string     `yaml:"chdir,omitempty"`
	When         string     `yaml:"when,omitempty"`
	Loop         []any      `yaml:"loop,omitempty"`
	IncludeTasks string     `yaml:"include_tasks,omitempty"`
}

// StringMap is an insertion-ordered string-to-string mapping. YAML mapping
// order is document order, which the tool must preserve for deterministic
// vars evaluation and debug output.
type StringMap struct {
	m *orderedmap.OrderedMap[string, string]
}

// UnmarshalYAML decodes a YAML mapping node, keeping key order.
func (s *StringMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	s.m = orderedmap.New[string, string]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key, value string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("line %d: decode key: %w", node.Content[i].Line, err)
		}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}
		s.m.Set(key, value)
	}
	return nil
}

// Len returns the number of entries. Safe on a nil map.
func (s *StringMap) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Oldest returns the first inserted pair, or nil when empty. Iterate with
// p.Next().
func (s *StringMap) Oldest() *orderedmap.Pair[string, string] {
	if s == nil || s.m == nil {
		return nil
	}
	return s.m.Oldest()
}

// Get looks up a key.
func (s *StringMap) Get(key string) (string, bool) {
	if s == nil || s.m == nil {
		return "", false
	}
	return s.m.Get(key)
}
