package generator

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic codes. Warnings are collected and reported in the manifest;
// they never abort a run.
const (
	CodeMissingTableDefinition = "missing_table_definition"
	CodeNoPrimaryKey           = "no_primary_key"
	CodeUnsupportedColumnType  = "unsupported_column_type"
	CodeMetadataOnlyTable      = "metadata_only_table"
	CodeEmptyColumnSet         = "empty_column_set"
)

// Diagnostic is a non-fatal finding attached to a run.
type Diagnostic struct {
	Severity Severity `yaml:"severity"`
	Code     string   `yaml:"code"`
	Table    string   `yaml:"table,omitempty"` // schema.table reference
	Message  string   `yaml:"message"`
}

func warning(code, table, message string) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Table: table, Message: message}
}
