package registryio

import (
	"gopkg.in/yaml.v3"

	"github.com/blockberries/witness/pkg/format"
)

// MarshalYAML renders reg as YAML, with container entries sorted by name
// (lexicographic) so version-control diffs stay stable across runs.
func MarshalYAML(reg *format.Registry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range reg.SortedNames() {
		cf, _ := reg.Get(name)

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(containerToAny(cf)); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

// UnmarshalYAML parses a YAML registry document.
func UnmarshalYAML(data []byte) (*format.Registry, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return registryFromAny(generic)
}
