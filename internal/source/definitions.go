// Package source models introspected source-table metadata and its
// on-disk YAML representation.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDefinitions reads every *.yaml table definition under dir and returns
// them keyed by schema.table. Files are independent documents; load order
// does not matter because consumers sort by identifier.
func LoadDefinitions(dir string) (map[string]*TableDefinition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions dir: %w", err)
	}

	defs := make(map[string]*TableDefinition)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var def TableDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if def.Schema == "" || def.Name == "" {
			return nil, fmt.Errorf("parsing %s: schema and table are required", path)
		}
		defs[def.FullName()] = &def
	}
	return defs, nil
}

// WriteDefinitions writes one YAML file per table definition into dir,
// named <schema>.<table>.yaml. Existing files are overwritten.
func WriteDefinitions(dir string, defs []*TableDefinition) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating definitions dir: %w", err)
	}

	sorted := make([]*TableDefinition, len(defs))
	copy(sorted, defs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FullName() < sorted[j].FullName() })

	for _, def := range sorted {
		data, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", def.FullName(), err)
		}
		path := filepath.Join(dir, def.FullName()+".yaml")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
