// Package introspect reads source-table schemas from a live database and
// materializes them as TableDefinition records for the generator. It is the
// only package besides history that opens a connection; the generation
// engine itself never does.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/replisys/cdcgen/internal/config"
	"github.com/replisys/cdcgen/internal/logging"
	"github.com/replisys/cdcgen/internal/source"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
)

// strategy supplies per-dialect SQL and parameter binding for the shared
// introspection flow.
type strategy interface {
	DriverName() string
	DSN(cfg config.ConnConfig) string
	TablesQuery() string
	ColumnsQuery() string
	PrimaryKeyQuery() string
	Bind(args ...string) []any
}

func strategyFor(sourceType string) (strategy, error) {
	switch sourceType {
	case "mssql", "sqlserver":
		return mssqlStrategy{}, nil
	case "postgres", "postgresql":
		return postgresStrategy{}, nil
	default:
		return nil, fmt.Errorf("unsupported source type %q", sourceType)
	}
}

// Run connects to the configured source and introspects every base table in
// the given schemas, returning definitions sorted by schema.table.
func Run(ctx context.Context, cfg config.ConnConfig, schemas []string) ([]*source.TableDefinition, error) {
	strat, err := strategyFor(cfg.Type)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(strat.DriverName(), strat.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening source connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging source: %w", err)
	}
	logging.Debug("connected to %s source %s:%d/%s", cfg.Type, cfg.Host, cfg.Port, cfg.Database)

	var defs []*source.TableDefinition
	for _, schema := range schemas {
		names, err := listTables(ctx, db, strat, schema)
		if err != nil {
			return nil, fmt.Errorf("listing tables in %s: %w", schema, err)
		}
		for _, name := range names {
			def, err := loadTable(ctx, db, strat, schema, name)
			if err != nil {
				return nil, fmt.Errorf("introspecting %s.%s: %w", schema, name, err)
			}
			defs = append(defs, def)
		}
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].FullName() < defs[j].FullName() })
	return defs, nil
}

func listTables(ctx context.Context, db *sql.DB, strat strategy, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, strat.TablesQuery(), strat.Bind(schema)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func loadTable(ctx context.Context, db *sql.DB, strat strategy, schema, table string) (*source.TableDefinition, error) {
	def := &source.TableDefinition{Schema: schema, Name: table}

	rows, err := db.QueryContext(ctx, strat.ColumnsQuery(), strat.Bind(schema, table)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec source.ColumnRecord
		if err := rows.Scan(&rec.Name, &rec.SourceType, &rec.MaxLength, &rec.Precision, &rec.Scale, &rec.Nullable); err != nil {
			return nil, err
		}
		def.Columns = append(def.Columns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pkCols, err := loadPrimaryKey(ctx, db, strat, schema, table)
	if err != nil {
		return nil, err
	}
	if len(pkCols) > 0 {
		def.PrimaryKey = pkCols[0]
		if len(pkCols) > 1 {
			logging.Warn("%s.%s has a composite primary key; keeping leading column %q", schema, table, pkCols[0])
		}
	}

	return def, nil
}

func loadPrimaryKey(ctx context.Context, db *sql.DB, strat strategy, schema, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, strat.PrimaryKeyQuery(), strat.Bind(schema, table)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}
