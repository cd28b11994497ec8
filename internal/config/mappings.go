package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"creditrisk/pkg/contracts/domain"
)

//go:embed mappings.yaml
var defaultMappings []byte

// DefaultMappings returns the built-in categorical mapping table
func DefaultMappings() (domain.MappingTable, error) {
	return parseMappings(defaultMappings)
}

// LoadMappings reads a mapping table from a YAML file.
// An empty path returns the built-in table.
func LoadMappings(path string) (domain.MappingTable, error) {
	if path == "" {
		return DefaultMappings()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings file %s: %w", path, err)
	}
	m, err := parseMappings(data)
	if err != nil {
		return nil, fmt.Errorf("invalid mappings file %s: %w", path, err)
	}
	return m, nil
}

func parseMappings(data []byte) (domain.MappingTable, error) {
	var m domain.MappingTable
	if err := yaml.UnmarshalStrict(data, &m); err != nil {
		return nil, err
	}
	for col, codes := range m {
		if len(codes) == 0 {
			return nil, fmt.Errorf("column %q has no codes", col)
		}
		for code := range codes {
			if code == "" {
				return nil, fmt.Errorf("column %q has an empty code", col)
			}
		}
	}
	return m, nil
}
