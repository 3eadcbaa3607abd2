package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of an importable rule file
type File struct {
	Rules []Rule `yaml:"rules"`
}

// LoadFile reads rules from a YAML file
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed rule file %s: %w", path, err)
	}

	for i := range f.Rules {
		if err := f.Rules[i].Validate(); err != nil {
			return nil, fmt.Errorf("rule %d in %s: %w", i+1, path, err)
		}
	}
	return f.Rules, nil
}

// Import adds rules from a YAML file. Existing categories are updated in place
// when replace is true and rejected otherwise. It returns the number of rules applied.
func (rs *RuleSet) Import(path string, replace bool) (int, error) {
	loaded, err := LoadFile(path)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, r := range loaded {
		_, exists := rs.Get(r.Category)
		switch {
		case exists && replace:
			err = rs.Update(r)
		default:
			err = rs.Add(r)
		}
		if err != nil {
			return applied, fmt.Errorf("failed to import %s: %w", r.Category, err)
		}
		applied++
	}
	return applied, nil
}

// SaveFile writes the rule set as a YAML rule file
func (rs *RuleSet) SaveFile(path string) error {
	data, err := yaml.Marshal(File{Rules: rs.Rules()})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
