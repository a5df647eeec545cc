// Package generator is the migration generation engine: it turns sink
// configuration plus introspected table definitions into a deterministic,
// idempotent set of PostgreSQL migration artifacts. It performs no network
// or database access; its only side effect is Result.Write.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/replisys/cdcgen/internal/config"
	"github.com/replisys/cdcgen/internal/logging"
	"github.com/replisys/cdcgen/internal/source"
	"github.com/replisys/cdcgen/internal/util"
)

// DefaultDBUser receives the management-schema grants unless CDC_DB_USER
// overrides it.
const DefaultDBUser = "postgres"

// Options controls one generation run.
type Options struct {
	TableFilter string // substring match against target table names
	DryRun      bool   // compute everything, write nothing
	OutputDir   string // artifact tree root
	DBUser      string // grant target, default postgres
	Now         func() time.Time
	OnTable     func(table string) // progress hook, called once per configured table
}

// SkippedTable records a table excluded from generation by configuration.
type SkippedTable struct {
	Sink   string `yaml:"sink"`
	Table  string `yaml:"table"`
	Reason string `yaml:"reason"`
}

// Result is the complete outcome of a generation run. Identical inputs
// always produce an identical Result, independent of map iteration order.
type Result struct {
	Artifacts       []GeneratedArtifact
	Diagnostics     []Diagnostic
	Skipped         []SkippedTable
	Schemas         []string
	TablesGenerated int
}

// Warnings returns the number of warning diagnostics.
func (r *Result) Warnings() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Generate runs the engine over every configured sink and table in stable
// sorted order (sink, then schema.table key) and returns the full artifact
// and diagnostic sets. Warnings never abort the run; an error indicates an
// internal-invariant violation.
func Generate(cfg *config.Config, defs map[string]*source.TableDefinition, opts Options) (*Result, error) {
	if opts.DBUser == "" {
		opts.DBUser = DefaultDBUser
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	res := &Result{}
	schemaSet := make(map[string]bool)    // manifest names
	schemaSQLSet := make(map[string]bool) // quoted names / raw placeholder for DDL

	sinkNames := make([]string, 0, len(cfg.Sinks))
	for name := range cfg.Sinks {
		sinkNames = append(sinkNames, name)
	}
	sort.Strings(sinkNames)

	for _, sinkName := range sinkNames {
		sink := cfg.Sinks[sinkName]

		tableKeys := make([]string, 0, len(sink.Tables))
		for key := range sink.Tables {
			tableKeys = append(tableKeys, key)
		}
		sort.Strings(tableKeys)

		for _, key := range tableKeys {
			tbl := sink.Tables[key]
			tableName := targetTableName(key)

			if opts.TableFilter != "" && !util.ContainsFold(tableName, opts.TableFilter) {
				continue
			}
			if opts.OnTable != nil {
				opts.OnTable(key)
			}

			if tbl.TargetExists {
				logging.Debug("skipping %s: target_exists", key)
				res.Skipped = append(res.Skipped, SkippedTable{Sink: sinkName, Table: key, Reason: "target_exists"})
				continue
			}

			ref := tbl.SourceRef(key)
			def, ok := defs[ref]
			if !ok {
				res.Diagnostics = append(res.Diagnostics, warning(CodeMissingTableDefinition, ref,
					fmt.Sprintf("no table definition found for %s", ref)))
				continue
			}

			cols := ResolveColumns(def, tbl, cfg.ColumnTemplates)
			if len(cols) == MetadataColumnCount {
				res.Diagnostics = append(res.Diagnostics, warning(CodeMetadataOnlyTable, ref,
					"table resolves to metadata columns only; likely a configuration mistake"))
			}

			cols, diags := MapColumnTypes(cols, ref)
			res.Diagnostics = append(res.Diagnostics, diags...)

			primaryKey := def.PrimaryKey
			if primaryKey != "" && !HasColumn(cols, primaryKey) {
				// PK column removed by the ignore list; emitting the
				// constraint would reference a missing column.
				primaryKey = ""
			}
			if primaryKey == "" {
				res.Diagnostics = append(res.Diagnostics, warning(CodeNoPrimaryKey, ref,
					"no usable primary key; emitting table without PRIMARY KEY clause"))
			}

			token := ResolveSchema(sinkName, &sink, tbl)
			schemaSet[token.Name()] = true
			schemaSQLSet[token.SQL()] = true

			rc := &RenderContext{
				Sink:        sinkName,
				SourceTable: ref,
				Table:       tableName,
				Schema:      token,
				Columns:     cols,
				PrimaryKey:  primaryKey,
			}

			tableDDL, err := BuildCreateTable(rc)
			if err != nil {
				return nil, err
			}
			content := tableDDL
			if rc.HasPrimaryKey() {
				content += "\n" + BuildSyncIndex(rc)
			}
			res.Artifacts = append(res.Artifacts, GeneratedArtifact{
				Path:     filepath.Join("01-tables", tableName+".sql"),
				Content:  content,
				Category: CategoryTable,
			})

			stagingContent, err := BuildStagingArtifact(rc)
			if err != nil {
				return nil, err
			}
			res.Artifacts = append(res.Artifacts, GeneratedArtifact{
				Path:     filepath.Join("01-tables", tableName+"-staging.sql"),
				Content:  stagingContent,
				Category: CategoryStaging,
			})

			res.TablesGenerated++
		}
	}

	res.Schemas = SortedSchemas(schemaSet)

	schemasSQL := SortedSchemas(schemaSQLSet)
	schemasContent, err := BuildCreateSchemasArtifact(schemasSQL)
	if err != nil {
		return nil, err
	}
	managementContent, err := BuildCDCManagementArtifact(opts.DBUser)
	if err != nil {
		return nil, err
	}
	infra := []GeneratedArtifact{
		{Path: filepath.Join("00-infrastructure", "01-create-schemas.sql"), Content: schemasContent, Category: CategoryInfrastructure},
		{Path: filepath.Join("00-infrastructure", "02-cdc-management.sql"), Content: managementContent, Category: CategoryInfrastructure},
	}
	res.Artifacts = append(infra, res.Artifacts...)

	manifest, err := BuildManifest(res, now().UTC())
	if err != nil {
		return nil, err
	}
	res.Artifacts = append(res.Artifacts, manifest)

	return res, nil
}

// Write materializes every artifact under dir. Each file is written to a
// temporary name and renamed into place so an interrupted run never leaves
// a partially-written artifact.
func (r *Result) Write(dir string) error {
	for _, a := range r.Artifacts {
		path := filepath.Join(dir, a.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
		if err != nil {
			return fmt.Errorf("creating temp file for %s: %w", a.Path, err)
		}
		if _, err := tmp.WriteString(a.Content); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("writing %s: %w", a.Path, err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("closing %s: %w", a.Path, err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("renaming %s: %w", a.Path, err)
		}
	}
	return nil
}

// targetTableName extracts the bare table name from a schema.table key.
func targetTableName(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}
