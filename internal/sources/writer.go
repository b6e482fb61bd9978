package sources

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// keyOrder is the enforced top-level key order per category. Keys not listed
// keep their original relative order after the listed ones.
var keyOrder = map[Category][]string{
	CategoryRegexPattern: {"name", "pattern", "tests"},
	CategoryCustomFormat: {"name", "description", "tags", "conditions", "tests"},
	CategoryProfile: {
		"name", "description", "tags", "upgradesAllowed", "minCustomFormatScore",
		"upgradeUntilScore", "minScoreIncrement", "custom_formats",
		"custom_formats_radarr", "custom_formats_sonarr", "qualities",
		"upgrade_until", "language",
	},
}

// ReorderKeys parses a YAML document and re-emits it with the category's
// top-level key order.
func ReorderKeys(cat Category, data []byte) ([]byte, error) {
	root, err := parseDoc(data)
	if err != nil {
		return nil, err
	}
	reorderMapping(root, keyOrder[cat])

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode yaml: %w", err)
	}
	return out, nil
}

// RewriteName sets the top-level name key of a YAML document.
func RewriteName(cat Category, data []byte, name string) ([]byte, error) {
	root, err := parseDoc(data)
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "name" {
			root.Content[i+1].SetString(name)
			break
		}
	}
	return ReorderKeys(cat, mustMarshal(root))
}

func parseDoc(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid yaml: expected a mapping document")
	}
	return doc.Content[0], nil
}

func mustMarshal(n *yaml.Node) []byte {
	out, err := yaml.Marshal(n)
	if err != nil {
		return nil
	}
	return out
}

// reorderMapping stable-sorts a mapping node's key/value pairs: listed keys
// first in list order, everything else afterwards in original order.
func reorderMapping(node *yaml.Node, order []string) {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		rank[k] = i
	}

	type pair struct {
		key, val *yaml.Node
		rank     int
		orig     int
	}
	pairs := make([]pair, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		r, ok := rank[node.Content[i].Value]
		if !ok {
			r = len(order) + i
		}
		pairs = append(pairs, pair{node.Content[i], node.Content[i+1], r, i})
	}

	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].rank < pairs[j-1].rank; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}

	content := make([]*yaml.Node, 0, len(node.Content))
	for _, p := range pairs {
		content = append(content, p.key, p.val)
	}
	node.Content = content
}
