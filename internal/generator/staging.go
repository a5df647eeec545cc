package generator

import (
	"fmt"
	"strings"
	"text/template"
)

// The staging and infrastructure artifacts are boilerplate shared by all
// tables, so they render through text/template. The parts that vary per
// table (column list, UPDATE SET fragment) are pre-built by the DDL builder
// and injected as opaque strings; the templates never iterate columns.

var mergeProcTmpl = template.Must(template.New("merge").Parse(`CREATE OR REPLACE PROCEDURE {{.SchemaSQL}}.{{.ProcName}}(p_batch_size integer DEFAULT 5000)
LANGUAGE plpgsql
AS $proc$
DECLARE
    v_batch_rows bigint := 0;
    v_total_rows bigint := 0;
BEGIN
    LOOP
        WITH batch AS (
            SELECT ctid FROM {{.StagingTable}}
            LIMIT p_batch_size
        ),
        moved AS (
            DELETE FROM {{.StagingTable}} s
            USING batch b
            WHERE s.ctid = b.ctid
            RETURNING {{.ColumnList}}
        )
        INSERT INTO {{.TargetTable}} ({{.ColumnList}})
        SELECT {{.ColumnList}} FROM moved{{if .HasPK}}
        ON CONFLICT ({{.PKColumn}}) DO UPDATE SET
{{.UpdateSet}}{{end}};
        GET DIAGNOSTICS v_batch_rows = ROW_COUNT;
        v_total_rows := v_total_rows + v_batch_rows;
        EXIT WHEN v_batch_rows < p_batch_size;
    END LOOP;

    INSERT INTO cdc_management.sync_metrics (sink_name, schema_name, table_name, rows_merged)
    VALUES ('{{.Sink}}', '{{.SchemaName}}', '{{.TableName}}', v_total_rows);
END;
$proc$;
`))

var syncTriggerTmpl = template.Must(template.New("trigger").Parse(`CREATE OR REPLACE FUNCTION {{.SchemaSQL}}.{{.TriggerFn}}() RETURNS trigger
LANGUAGE plpgsql
AS $fn$
BEGIN
    NEW.{{.SyncColumn}} := now();
    RETURN NEW;
END;
$fn$;

CREATE OR REPLACE TRIGGER {{.TriggerName}}
BEFORE INSERT OR UPDATE ON {{.TargetTable}}
FOR EACH ROW EXECUTE FUNCTION {{.SchemaSQL}}.{{.TriggerFn}}();
`))

var createSchemasTmpl = template.Must(template.New("schemas").Parse(`-- Schemas required by the CDC replication sinks.
CREATE SCHEMA IF NOT EXISTS cdc_management;
{{range .Schemas}}CREATE SCHEMA IF NOT EXISTS {{.}};
{{end}}`))

var cdcManagementTmpl = template.Must(template.New("management").Parse(`-- Shared CDC management objects: per-table sync state, merge metrics,
-- and a monitoring view over both.
CREATE TABLE IF NOT EXISTS cdc_management.sync_control (
    sink_name text NOT NULL,
    schema_name text NOT NULL,
    table_name text NOT NULL,
    enabled boolean NOT NULL DEFAULT true,
    last_lsn text,
    last_seqval bigint,
    last_synced_at timestamptz,
    updated_at timestamptz NOT NULL DEFAULT now(),
    CONSTRAINT "pk_sync_control" PRIMARY KEY (sink_name, schema_name, table_name)
);

CREATE TABLE IF NOT EXISTS cdc_management.sync_metrics (
    metric_id bigint GENERATED BY DEFAULT AS IDENTITY,
    sink_name text,
    schema_name text NOT NULL,
    table_name text NOT NULL,
    rows_merged bigint NOT NULL DEFAULT 0,
    merged_at timestamptz NOT NULL DEFAULT now(),
    CONSTRAINT "pk_sync_metrics" PRIMARY KEY (metric_id)
);

CREATE OR REPLACE VIEW cdc_management.v_sync_status AS
SELECT
    c.sink_name,
    c.schema_name,
    c.table_name,
    c.enabled,
    c.last_synced_at,
    m.last_merge_at,
    COALESCE(m.rows_merged_24h, 0) AS rows_merged_24h
FROM cdc_management.sync_control c
LEFT JOIN (
    SELECT schema_name, table_name,
           max(merged_at) AS last_merge_at,
           sum(rows_merged) FILTER (WHERE merged_at > now() - interval '24 hours') AS rows_merged_24h
    FROM cdc_management.sync_metrics
    GROUP BY schema_name, table_name
) m ON m.schema_name = c.schema_name AND m.table_name = c.table_name;

GRANT USAGE ON SCHEMA cdc_management TO {{.DBUser}};
GRANT SELECT, INSERT, UPDATE ON ALL TABLES IN SCHEMA cdc_management TO {{.DBUser}};
GRANT SELECT ON cdc_management.v_sync_status TO {{.DBUser}};
`))

type mergeProcData struct {
	SchemaSQL    string
	SchemaName   string
	Sink         string
	TableName    string
	ProcName     string
	TargetTable  string
	StagingTable string
	ColumnList   string
	HasPK        bool
	PKColumn     string
	UpdateSet    string
}

type syncTriggerData struct {
	SchemaSQL   string
	TriggerFn   string
	TriggerName string
	TargetTable string
	SyncColumn  string
}

// BuildStagingArtifact renders the full <Table>-staging.sql content:
// staging table DDL, batched merge procedure, and the sync-timestamp
// trigger on the base table.
func BuildStagingArtifact(rc *RenderContext) (string, error) {
	stagingDDL, err := BuildCreateStaging(rc)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(stagingDDL)
	sb.WriteString("\n")

	data := mergeProcData{
		SchemaSQL:    rc.Schema.SQL(),
		SchemaName:   rc.Schema.Name(),
		Sink:         rc.Sink,
		TableName:    rc.Table,
		ProcName:     QuoteIdent("merge_" + rc.Table),
		TargetTable:  rc.QualifiedTable(),
		StagingTable: rc.QualifiedStagingTable(),
		ColumnList:   BuildColumnList(rc.Columns),
		HasPK:        rc.HasPrimaryKey(),
		PKColumn:     QuoteIdent(rc.PrimaryKey),
		UpdateSet:    BuildUpdateSet(rc.Columns, rc.PrimaryKey),
	}
	if err := mergeProcTmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering merge procedure for %s: %w", rc.SourceTable, err)
	}

	sb.WriteString("\n")
	trigger := syncTriggerData{
		SchemaSQL:   rc.Schema.SQL(),
		TriggerFn:   QuoteIdent("fn_" + rc.Table + "_touch_synced_at"),
		TriggerName: QuoteIdent("tg_" + rc.Table + "_touch_synced_at"),
		TargetTable: rc.QualifiedTable(),
		SyncColumn:  QuoteIdent(SyncTimestampColumn),
	}
	if err := syncTriggerTmpl.Execute(&sb, trigger); err != nil {
		return "", fmt.Errorf("rendering sync trigger for %s: %w", rc.SourceTable, err)
	}

	return sb.String(), nil
}

// BuildCreateSchemasArtifact renders 01-create-schemas.sql. The schemas
// argument is already quoted (or the raw placeholder token) and sorted.
func BuildCreateSchemasArtifact(schemas []string) (string, error) {
	var sb strings.Builder
	if err := createSchemasTmpl.Execute(&sb, struct{ Schemas []string }{schemas}); err != nil {
		return "", fmt.Errorf("rendering schema creation: %w", err)
	}
	return sb.String(), nil
}

// BuildCDCManagementArtifact renders 02-cdc-management.sql with grants for
// the configured database user.
func BuildCDCManagementArtifact(dbUser string) (string, error) {
	var sb strings.Builder
	if err := cdcManagementTmpl.Execute(&sb, struct{ DBUser string }{QuoteIdent(dbUser)}); err != nil {
		return "", fmt.Errorf("rendering cdc management: %w", err)
	}
	return sb.String(), nil
}
