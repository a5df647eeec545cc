package generator

import (
	"fmt"
	"sort"

	"github.com/replisys/cdcgen/internal/config"
	"github.com/replisys/cdcgen/internal/source"
)

// Origin records where a resolved column came from.
type Origin string

const (
	OriginSource   Origin = "source"
	OriginTemplate Origin = "template"
	OriginMetadata Origin = "metadata"
)

// Column is one entry in a table's resolved column list. Source columns are
// created with an empty Type; MapColumnTypes fills it in.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
	Origin   Origin

	src *source.ColumnRecord
}

// metadataColumns is the fixed set of CDC bookkeeping columns appended, in
// this exact order, to every generated table.
var metadataColumns = []Column{
	{Name: "_cdc_synced_at", Type: "timestamptz", Nullable: false, Default: "now()", Origin: OriginMetadata},
	{Name: "_cdc_source", Type: "text", Nullable: true, Origin: OriginMetadata},
	{Name: "_cdc_deleted", Type: "boolean", Nullable: false, Default: "false", Origin: OriginMetadata},
	{Name: "_cdc_operation", Type: "char(1)", Nullable: true, Origin: OriginMetadata},
	{Name: "_cdc_lsn", Type: "text", Nullable: true, Origin: OriginMetadata},
	{Name: "_cdc_seqval", Type: "bigint", Nullable: true, Origin: OriginMetadata},
}

// MetadataColumnCount is the number of fixed CDC metadata columns.
const MetadataColumnCount = 6

// SyncTimestampColumn is the metadata column indexed for incremental reads.
const SyncTimestampColumn = "_cdc_synced_at"

// MetadataColumns returns a copy of the fixed CDC metadata column set.
func MetadataColumns() []Column {
	cols := make([]Column, len(metadataColumns))
	copy(cols, metadataColumns)
	return cols
}

// ResolveColumns produces the final ordered column list for one table:
// surviving source columns, then column templates, then the fixed CDC
// metadata columns. A template whose name matches a surviving source column
// replaces it in place, keeping the source column's position; explicit
// configuration wins over introspection.
func ResolveColumns(def *source.TableDefinition, tbl config.SinkTableConfig, templates map[string]config.ColumnTemplate) []Column {
	ignored := make(map[string]bool, len(tbl.IgnoreColumns))
	for _, name := range tbl.IgnoreColumns {
		ignored[name] = true
	}

	var cols []Column
	index := make(map[string]int)
	for i := range def.Columns {
		rec := &def.Columns[i]
		if ignored[rec.Name] {
			continue
		}
		index[rec.Name] = len(cols)
		cols = append(cols, Column{
			Name:     rec.Name,
			Nullable: rec.Nullable,
			Origin:   OriginSource,
			src:      rec,
		})
	}

	for _, name := range tbl.ColumnTemplates {
		tmpl := templates[name] // validated at config load
		col := Column{
			Name:     name,
			Type:     tmpl.Type,
			Nullable: tmpl.Nullable,
			Default:  tmpl.Default,
			Origin:   OriginTemplate,
		}
		if i, ok := index[name]; ok {
			cols[i] = col
			continue
		}
		index[name] = len(cols)
		cols = append(cols, col)
	}

	return append(cols, MetadataColumns()...)
}

// MapColumnTypes runs the type mapper over every source-origin column and
// returns warnings for each unrecognized source type. Template and metadata
// columns already carry target types.
func MapColumnTypes(cols []Column, tableRef string) ([]Column, []Diagnostic) {
	var diags []Diagnostic
	for i := range cols {
		if cols[i].Origin != OriginSource {
			continue
		}
		rec := cols[i].src
		mapped, ok := MapType(rec.SourceType, rec.MaxLength, rec.Precision, rec.Scale)
		cols[i].Type = mapped
		if !ok {
			diags = append(diags, warning(CodeUnsupportedColumnType, tableRef,
				fmt.Sprintf("column %q has unmapped source type %q, falling back to text", rec.Name, rec.SourceType)))
		}
	}
	return cols, diags
}

// HasColumn reports whether the resolved list contains a column by name.
func HasColumn(cols []Column, name string) bool {
	for _, c := range cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SortedSchemas returns the keys of a schema set in stable lexicographic order.
func SortedSchemas(set map[string]bool) []string {
	schemas := make([]string, 0, len(set))
	for s := range set {
		schemas = append(schemas, s)
	}
	sort.Strings(schemas)
	return schemas
}
