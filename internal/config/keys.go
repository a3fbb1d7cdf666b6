package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Get returns the value at a dotted key such as "git.autoCommit".
// Keys match JSON field names case-insensitively.
func Get(cfg *Config, key string) (any, error) {
	tree, err := toTree(cfg)
	if err != nil {
		return nil, err
	}
	parent, name, err := walk(tree, key)
	if err != nil {
		return nil, err
	}
	return parent[name], nil
}

// Set parses raw according to the type of the existing value at key and stores it.
func Set(cfg *Config, key, raw string) error {
	tree, err := toTree(cfg)
	if err != nil {
		return err
	}
	parent, name, err := walk(tree, key)
	if err != nil {
		return err
	}

	switch parent[name].(type) {
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, err)
		}
		parent[name] = b
	case float64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, err)
		}
		parent[name] = n
	case string:
		parent[name] = raw
	default:
		return fmt.Errorf("%s is a section, not a value", key)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	updated := &Config{}
	if err := json.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	*cfg = *updated
	return nil
}

func toTree(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return tree, nil
}

// walk resolves all but the last key segment and returns the containing map
// plus the canonical name of the last segment.
func walk(tree map[string]any, key string) (map[string]any, string, error) {
	parts := strings.Split(key, ".")
	node := tree
	for i, part := range parts {
		name, ok := lookupFold(node, part)
		if !ok {
			return nil, "", fmt.Errorf("unknown config key %q", key)
		}
		if i == len(parts)-1 {
			return node, name, nil
		}
		child, ok := node[name].(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("unknown config key %q", key)
		}
		node = child
	}
	return nil, "", fmt.Errorf("unknown config key %q", key)
}

func lookupFold(m map[string]any, key string) (string, bool) {
	if _, ok := m[key]; ok {
		return key, true
	}
	for k := range m {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}
