package introspect

import (
	"fmt"
	"net/url"

	"github.com/replisys/cdcgen/internal/config"
)

type postgresStrategy struct{}

func (postgresStrategy) DriverName() string { return "pgx" }

func (postgresStrategy) DSN(cfg config.ConnConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

func (postgresStrategy) TablesQuery() string {
	return `SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`
}

func (postgresStrategy) ColumnsQuery() string {
	return `SELECT column_name, data_type,
			COALESCE(character_maximum_length, 0),
			COALESCE(numeric_precision, 0),
			COALESCE(numeric_scale, 0),
			CASE WHEN is_nullable = 'YES' THEN true ELSE false END
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`
}

func (postgresStrategy) PrimaryKeyQuery() string {
	return `SELECT a.attname
		FROM pg_index i
		JOIN pg_class c ON c.oid = i.indrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
		WHERE i.indisprimary AND n.nspname = $1 AND c.relname = $2
		ORDER BY array_position(i.indkey, a.attnum)`
}

func (postgresStrategy) Bind(args ...string) []any {
	bound := make([]any, len(args))
	for i, a := range args {
		bound[i] = a
	}
	return bound
}
