package introspect

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/replisys/cdcgen/internal/config"
)

type mssqlStrategy struct{}

func (mssqlStrategy) DriverName() string { return "sqlserver" }

func (mssqlStrategy) DSN(cfg config.ConnConfig) string {
	query := url.Values{}
	query.Set("database", cfg.Database)
	if cfg.TrustServerCert {
		query.Set("trustServerCertificate", "true")
	}
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (mssqlStrategy) TablesQuery() string {
	return `SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`
}

func (mssqlStrategy) ColumnsQuery() string {
	return `SELECT COLUMN_NAME, DATA_TYPE,
			ISNULL(CHARACTER_MAXIMUM_LENGTH, 0),
			ISNULL(NUMERIC_PRECISION, 0),
			ISNULL(NUMERIC_SCALE, 0),
			CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`
}

func (mssqlStrategy) PrimaryKeyQuery() string {
	return `SELECT ku.COLUMN_NAME
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
			ON tc.CONSTRAINT_NAME = ku.CONSTRAINT_NAME
			AND tc.TABLE_SCHEMA = ku.TABLE_SCHEMA
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
			AND ku.TABLE_SCHEMA = @p1 AND ku.TABLE_NAME = @p2
		ORDER BY ku.ORDINAL_POSITION`
}

func (mssqlStrategy) Bind(args ...string) []any {
	bound := make([]any, len(args))
	for i, a := range args {
		bound[i] = sql.Named(fmt.Sprintf("p%d", i+1), a)
	}
	return bound
}
