package data

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemCount is one (item, quantity) pair.
type ItemCount struct {
	Item  string
	Count int
}

// Bundle is an ordered set of item quantities (a price, a requirement, a
// reward). Written in YAML as a mapping; the file's key order is kept.
type Bundle []ItemCount

func (b *Bundle) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: item bundle must be a mapping", node.Line)
	}
	out := make(Bundle, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var n int
		if err := node.Content[i+1].Decode(&n); err != nil {
			return fmt.Errorf("line %d: count for %q: %w", node.Content[i+1].Line, node.Content[i].Value, err)
		}
		if n <= 0 {
			return fmt.Errorf("line %d: count for %q must be positive", node.Content[i+1].Line, node.Content[i].Value)
		}
		out = append(out, ItemCount{Item: node.Content[i].Value, Count: n})
	}
	*b = out
	return nil
}

// Describe renders "1 Wood, 1 Rock".
func (b Bundle) Describe() string {
	parts := make([]string, 0, len(b))
	for _, ic := range b {
		parts = append(parts, fmt.Sprintf("%d %s", ic.Count, DisplayName(ic.Item)))
	}
	return strings.Join(parts, ", ")
}
