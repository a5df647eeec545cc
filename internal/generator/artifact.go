package generator

// Category classifies a generated artifact for the manifest.
type Category string

const (
	CategoryInfrastructure Category = "infrastructure"
	CategoryTable          Category = "table"
	CategoryStaging        Category = "staging"
	CategoryManifest       Category = "manifest"
)

// GeneratedArtifact is one output file: a relative path under the output
// directory plus its full content.
type GeneratedArtifact struct {
	Path     string
	Content  string
	Category Category
}
