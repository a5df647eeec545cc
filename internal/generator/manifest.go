package generator

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is the machine-readable inventory of one generation run, used
// for human review and CI diffing. Diagnostics and skipped entries are
// always present, even when empty.
type Manifest struct {
	GeneratedAt string          `yaml:"generated_at"`
	Status      string          `yaml:"status"`
	Summary     ManifestSummary `yaml:"summary"`
	Schemas     []string        `yaml:"schemas"`
	Files       ManifestFiles   `yaml:"files"`
	Skipped     []SkippedTable  `yaml:"skipped"`
	Diagnostics []Diagnostic    `yaml:"diagnostics"`
}

// ManifestSummary carries the run counters.
type ManifestSummary struct {
	TablesGenerated int `yaml:"tables_generated"`
	TablesSkipped   int `yaml:"tables_skipped"`
	Warnings        int `yaml:"warnings"`
}

// ManifestFiles lists generated file paths grouped by category.
type ManifestFiles struct {
	Infrastructure []string `yaml:"infrastructure"`
	Table          []string `yaml:"table"`
	Staging        []string `yaml:"staging"`
}

// BuildManifest serializes the run inventory as the manifest.yaml artifact.
// generatedAt is injected so tests can pin the clock; everything else in
// the manifest is a pure function of the result.
func BuildManifest(res *Result, generatedAt time.Time) (GeneratedArtifact, error) {
	m := Manifest{
		GeneratedAt: generatedAt.Format(time.RFC3339),
		Status:      "success",
		Summary: ManifestSummary{
			TablesGenerated: res.TablesGenerated,
			TablesSkipped:   len(res.Skipped),
			Warnings:        res.Warnings(),
		},
		Schemas:     res.Schemas,
		Skipped:     res.Skipped,
		Diagnostics: res.Diagnostics,
	}

	for _, a := range res.Artifacts {
		switch a.Category {
		case CategoryInfrastructure:
			m.Files.Infrastructure = append(m.Files.Infrastructure, a.Path)
		case CategoryTable:
			m.Files.Table = append(m.Files.Table, a.Path)
		case CategoryStaging:
			m.Files.Staging = append(m.Files.Staging, a.Path)
		}
	}
	sort.Strings(m.Files.Infrastructure)
	sort.Strings(m.Files.Table)
	sort.Strings(m.Files.Staging)

	data, err := yaml.Marshal(m)
	if err != nil {
		return GeneratedArtifact{}, fmt.Errorf("encoding manifest: %w", err)
	}

	return GeneratedArtifact{
		Path:     "manifest.yaml",
		Content:  string(data),
		Category: CategoryManifest,
	}, nil
}
