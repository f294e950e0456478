package vars

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseExtra loads CLI-supplied extra variables into the context. The raw
// string is either space-separated key=value pairs, a literal JSON object,
// or @path pointing at a YAML file of variables.
func ParseExtra(raw string, ctx *Context) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	switch {
	case strings.HasPrefix(raw, "@"):
		path := raw[1:]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("extra vars file not found: %s", path)
		}
		return mergeMappingDocument(data, ctx)

	case strings.HasPrefix(raw, "{"):
		// JSON is a YAML subset; decoding through a yaml.Node keeps key order.
		return mergeMappingDocument([]byte(raw), ctx)

	default:
		for _, pair := range strings.Split(raw, " ") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) == 2 {
				ctx.Set(kv[0], kv[1])
			}
		}
		return nil
	}
}

// mergeMappingDocument decodes a single-document mapping and inserts its
// entries into the context in document order.
func mergeMappingDocument(data []byte, ctx *Context) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse extra vars: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("extra vars must be a mapping, got %s", nodeKind(root))
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		var key string
		if err := root.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("decode extra vars key: %w", err)
		}
		var value any
		if err := root.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("decode extra vars value for %q: %w", key, err)
		}
		ctx.Set(key, value)
	}
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	default:
		return "an unexpected node"
	}
}
