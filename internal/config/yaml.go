package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vk/superelastix/internal/criteria"
)

// Reserved keys of YAML and JSON blueprint files.
const (
	keyName = "Name"
	keyOut  = "Out"
	keyIn   = "In"
)

type yamlFile struct {
	Include    []string               `yaml:"Include"`
	Component  []map[string]yaml.Node `yaml:"Component"`
	Connection []map[string]yaml.Node `yaml:"Connection"`
}

// yamlParser reads YAML files and, since JSON is valid YAML, JSON files.
type yamlParser struct{}

func (yamlParser) Parse(path string, data []byte) (*Document, error) {
	var root yamlFile
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	doc := &Document{Includes: root.Include}
	seen := make(map[string]int)
	for i, entry := range root.Component {
		name, m, err := splitEntry(entry, keyName)
		if err != nil {
			return nil, fmt.Errorf("%s: component #%d: %w", path, i+1, err)
		}
		if prev, ok := seen[name[0]]; ok {
			return nil, fmt.Errorf("%s: component #%d: duplicate component %q, first declared as #%d", path, i+1, name[0], prev)
		}
		seen[name[0]] = i + 1
		doc.Components = append(doc.Components, Component{Name: name[0], Criteria: m})
	}
	for i, entry := range root.Connection {
		ends, m, err := splitEntry(entry, keyOut, keyIn)
		if err != nil {
			return nil, fmt.Errorf("%s: connection #%d: %w", path, i+1, err)
		}
		doc.Connections = append(doc.Connections, Connection{Upstream: ends[0], Downstream: ends[1], Criteria: m})
	}
	return doc, nil
}

// splitEntry separates the reserved single-valued keys of an entry from its
// criteria.
func splitEntry(entry map[string]yaml.Node, reserved ...string) ([]string, criteria.Map, error) {
	ids := make([]string, len(reserved))
	for i, key := range reserved {
		node, ok := entry[key]
		if !ok || node.Kind != yaml.ScalarNode || node.Value == "" {
			return nil, nil, fmt.Errorf("missing %q", key)
		}
		ids[i] = node.Value
	}

	m := make(criteria.Map, len(entry))
	for key, node := range entry {
		if slices.Contains(reserved, key) {
			continue
		}
		values, err := nodeValues(&node)
		if err != nil {
			return nil, nil, fmt.Errorf("criterion %q (line %d): %w", key, node.Line, err)
		}
		m[key] = values
	}
	return ids, m, nil
}

func nodeValues(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("list elements must be scalars")
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value must be a scalar or a list of scalars")
	}
}
