package generator

import (
	"testing"

	"github.com/replisys/cdcgen/internal/config"
	"github.com/replisys/cdcgen/internal/source"
)

var testTemplates = map[string]config.ColumnTemplate{
	"_customer_id": {Type: "uuid", Nullable: false},
	"_tenant_id":   {Type: "integer", Nullable: false, Default: "0"},
	"name":         {Type: "text", Nullable: true},
}

func actorDefinition() *source.TableDefinition {
	return &source.TableDefinition{
		Schema:     "dbo",
		Name:       "Actor",
		PrimaryKey: "actno",
		Columns: []source.ColumnRecord{
			{Name: "actno", SourceType: "int"},
			{Name: "name", SourceType: "nvarchar", MaxLength: 100, Nullable: true},
			{Name: "birthdate", SourceType: "date", Nullable: true},
			{Name: "guid", SourceType: "uniqueidentifier", Nullable: true},
			{Name: "Døv", SourceType: "bit", Nullable: true},
		},
	}
}

func TestResolveColumnsMetadataInvariant(t *testing.T) {
	cols := ResolveColumns(actorDefinition(), config.SinkTableConfig{}, testTemplates)

	if len(cols) != 5+MetadataColumnCount {
		t.Fatalf("resolved %d columns, want %d", len(cols), 5+MetadataColumnCount)
	}

	wantTail := []string{"_cdc_synced_at", "_cdc_source", "_cdc_deleted", "_cdc_operation", "_cdc_lsn", "_cdc_seqval"}
	tail := cols[len(cols)-MetadataColumnCount:]
	for i, c := range tail {
		if c.Name != wantTail[i] {
			t.Errorf("metadata column %d = %q, want %q", i, c.Name, wantTail[i])
		}
		if c.Origin != OriginMetadata {
			t.Errorf("metadata column %q origin = %q", c.Name, c.Origin)
		}
	}
}

func TestResolveColumnsIgnoreList(t *testing.T) {
	tbl := config.SinkTableConfig{IgnoreColumns: []string{"Døv"}}
	cols := ResolveColumns(actorDefinition(), tbl, testTemplates)

	if HasColumn(cols, "Døv") {
		t.Error("ignored column survived resolution")
	}
	if len(cols) != 4+MetadataColumnCount {
		t.Errorf("resolved %d columns, want %d", len(cols), 4+MetadataColumnCount)
	}
}

func TestResolveColumnsIgnoreIsCaseSensitive(t *testing.T) {
	tbl := config.SinkTableConfig{IgnoreColumns: []string{"døv"}}
	cols := ResolveColumns(actorDefinition(), tbl, testTemplates)

	if !HasColumn(cols, "Døv") {
		t.Error("ignore list match must be case-sensitive exact")
	}
}

func TestResolveColumnsTemplatesAppendInOrder(t *testing.T) {
	tbl := config.SinkTableConfig{ColumnTemplates: []string{"_customer_id", "_tenant_id"}}
	cols := ResolveColumns(actorDefinition(), tbl, testTemplates)

	// source(5) + templates(2) + metadata(6)
	if len(cols) != 13 {
		t.Fatalf("resolved %d columns, want 13", len(cols))
	}
	if cols[5].Name != "_customer_id" || cols[6].Name != "_tenant_id" {
		t.Errorf("template columns out of order: %q, %q", cols[5].Name, cols[6].Name)
	}
	if cols[5].Type != "uuid" || cols[5].Nullable {
		t.Errorf("_customer_id = %+v", cols[5])
	}
	if cols[6].Default != "0" {
		t.Errorf("_tenant_id default = %q", cols[6].Default)
	}
}

func TestResolveColumnsTemplateOverridesSourceInPlace(t *testing.T) {
	// "name" exists as a source column and as a template; the template
	// definition wins while the column keeps its original position.
	tbl := config.SinkTableConfig{ColumnTemplates: []string{"name"}}
	cols := ResolveColumns(actorDefinition(), tbl, testTemplates)

	if len(cols) != 5+MetadataColumnCount {
		t.Fatalf("override added a column: %d", len(cols))
	}
	if cols[1].Name != "name" || cols[1].Origin != OriginTemplate {
		t.Errorf("position 1 = %q (%q), want template-origin name", cols[1].Name, cols[1].Origin)
	}
	if cols[1].Type != "text" {
		t.Errorf("override type = %q, want text", cols[1].Type)
	}
}

func TestResolveColumnsEmptySource(t *testing.T) {
	def := &source.TableDefinition{Schema: "dbo", Name: "Empty"}
	cols := ResolveColumns(def, config.SinkTableConfig{}, testTemplates)

	if len(cols) != MetadataColumnCount {
		t.Errorf("resolved %d columns, want metadata only", len(cols))
	}
}

func TestMapColumnTypes(t *testing.T) {
	def := &source.TableDefinition{
		Schema: "dbo",
		Name:   "Geo",
		Columns: []source.ColumnRecord{
			{Name: "id", SourceType: "int"},
			{Name: "shape", SourceType: "geography", Nullable: true},
		},
	}
	cols := ResolveColumns(def, config.SinkTableConfig{}, nil)
	cols, diags := MapColumnTypes(cols, "dbo.Geo")

	if cols[0].Type != "integer" {
		t.Errorf("id type = %q", cols[0].Type)
	}
	if cols[1].Type != "text" {
		t.Errorf("shape fallback type = %q", cols[1].Type)
	}
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %d, want 1", len(diags))
	}
	if diags[0].Code != CodeUnsupportedColumnType || diags[0].Severity != SeverityWarning {
		t.Errorf("diagnostic = %+v", diags[0])
	}
	if diags[0].Table != "dbo.Geo" {
		t.Errorf("diagnostic table = %q", diags[0].Table)
	}
}
