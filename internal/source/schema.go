package source

// TableDefinition represents an introspected source table's metadata.
type TableDefinition struct {
	Schema     string         `yaml:"schema"`
	Name       string         `yaml:"table"`
	PrimaryKey string         `yaml:"primary_key,omitempty"`
	Columns    []ColumnRecord `yaml:"columns"`
}

// FullName returns schema.table format.
func (t *TableDefinition) FullName() string {
	return t.Schema + "." + t.Name
}

// HasPrimaryKey reports whether a primary key column is known.
func (t *TableDefinition) HasPrimaryKey() bool {
	return t.PrimaryKey != ""
}

// ColumnRecord represents a source column's metadata.
type ColumnRecord struct {
	Name       string `yaml:"name"`
	SourceType string `yaml:"source_type"`
	MaxLength  int    `yaml:"max_length,omitempty"`
	Precision  int    `yaml:"precision,omitempty"`
	Scale      int    `yaml:"scale,omitempty"`
	Nullable   bool   `yaml:"nullable"`
}
