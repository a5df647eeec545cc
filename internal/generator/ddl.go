package generator

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes a PostgreSQL identifier, escaping embedded quotes.
func QuoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// RenderContext carries everything the artifact builders need for one table.
type RenderContext struct {
	Sink        string      // sink group name
	SourceTable string      // schema.table source reference
	Table       string      // target table name
	Schema      SchemaToken // resolved target schema
	Columns     []Column    // ordered, fully type-mapped
	PrimaryKey  string      // empty when no usable primary key
}

// HasPrimaryKey reports whether a PRIMARY KEY clause will be emitted.
func (rc *RenderContext) HasPrimaryKey() bool { return rc.PrimaryKey != "" }

// QualifiedTable returns the schema-qualified, quoted target table.
func (rc *RenderContext) QualifiedTable() string {
	return rc.Schema.SQL() + "." + QuoteIdent(rc.Table)
}

// StagingTableName returns the bare staging table name.
func (rc *RenderContext) StagingTableName() string {
	return rc.Table + "_staging"
}

// QualifiedStagingTable returns the schema-qualified, quoted staging table.
func (rc *RenderContext) QualifiedStagingTable() string {
	return rc.Schema.SQL() + "." + QuoteIdent(rc.StagingTableName())
}

// columnLine renders one column definition. Formatting is deliberately
// fixed (four-space indent, single spaces) so repeated runs over unchanged
// input are byte-identical.
func columnLine(c Column) string {
	var sb strings.Builder
	sb.WriteString("    ")
	sb.WriteString(QuoteIdent(c.Name))
	sb.WriteString(" ")
	sb.WriteString(c.Type)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	return sb.String()
}

// BuildCreateTable composes the guarded CREATE TABLE statement for a table.
// An empty column list indicates a resolver defect upstream; the fixed
// metadata columns guarantee at least six entries.
func BuildCreateTable(rc *RenderContext) (string, error) {
	if len(rc.Columns) == 0 {
		return "", fmt.Errorf("%s: %s resolved to zero columns", CodeEmptyColumnSet, rc.SourceTable)
	}

	lines := make([]string, 0, len(rc.Columns)+1)
	for _, c := range rc.Columns {
		lines = append(lines, columnLine(c))
	}
	if rc.HasPrimaryKey() {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			QuoteIdent("pk_"+rc.Table), QuoteIdent(rc.PrimaryKey)))
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(rc.QualifiedTable())
	sb.WriteString(" (\n")
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n")
	return sb.String(), nil
}

// BuildCreateStaging composes the staging table DDL: the same resolved
// column list with no primary key constraint plus a batch-id column.
func BuildCreateStaging(rc *RenderContext) (string, error) {
	if len(rc.Columns) == 0 {
		return "", fmt.Errorf("%s: %s resolved to zero columns", CodeEmptyColumnSet, rc.SourceTable)
	}

	lines := make([]string, 0, len(rc.Columns)+1)
	for _, c := range rc.Columns {
		lines = append(lines, columnLine(c))
	}
	lines = append(lines, columnLine(Column{Name: "_staging_batch_id", Type: "bigint", Nullable: true}))

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(rc.QualifiedStagingTable())
	sb.WriteString(" (\n")
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n")
	return sb.String(), nil
}

// BuildSyncIndex composes the supporting index on the sync-timestamp
// metadata column.
func BuildSyncIndex(rc *RenderContext) string {
	indexName := "idx_" + rc.Table + "_" + SyncTimestampColumn
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);\n",
		QuoteIdent(indexName), rc.QualifiedTable(), QuoteIdent(SyncTimestampColumn))
}

// BuildColumnList renders the comma-separated quoted column names used by
// the merge procedure's INSERT/SELECT lists.
func BuildColumnList(cols []Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = QuoteIdent(c.Name)
	}
	return strings.Join(names, ", ")
}

// BuildUpdateSet renders the UPDATE SET fragment of the merge procedure's
// ON CONFLICT clause: every non-key column assigned from EXCLUDED, one
// assignment per line at a fixed indent.
func BuildUpdateSet(cols []Column, primaryKey string) string {
	var assignments []string
	for _, c := range cols {
		if c.Name == primaryKey {
			continue
		}
		q := QuoteIdent(c.Name)
		assignments = append(assignments, fmt.Sprintf("            %s = EXCLUDED.%s", q, q))
	}
	return strings.Join(assignments, ",\n")
}
