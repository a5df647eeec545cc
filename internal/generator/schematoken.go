package generator

import "github.com/replisys/cdcgen/internal/config"

// SchemaPlaceholder is the literal token left in per-tenant artifacts and
// substituted per deployment target at apply time.
const SchemaPlaceholder = "{{SCHEMA}}"

// SchemaToken is the resolved target schema for one table: either a literal
// schema name baked in at generation time (shared pattern) or a symbolic
// placeholder (per-tenant pattern).
type SchemaToken struct {
	placeholder bool
	name        string
}

// PlaceholderSchema returns the symbolic per-tenant schema token.
func PlaceholderSchema() SchemaToken {
	return SchemaToken{placeholder: true}
}

// LiteralSchema returns a token for a concrete schema name.
func LiteralSchema(name string) SchemaToken {
	return SchemaToken{name: name}
}

// ResolveSchema decides how a table's target schema appears in artifacts.
// This is the only tenancy-aware branch in the engine; everything else
// consumes the token.
func ResolveSchema(sinkName string, sink *config.SinkConfig, tbl config.SinkTableConfig) SchemaToken {
	if sink.Pattern == config.PatternPerTenant {
		return PlaceholderSchema()
	}
	return LiteralSchema(sink.TargetSchema(sinkName, tbl))
}

// IsPlaceholder reports whether the token is still symbolic.
func (s SchemaToken) IsPlaceholder() bool { return s.placeholder }

// SQL returns the schema as it appears in generated statements: the raw
// placeholder token, or the quoted literal name.
func (s SchemaToken) SQL() string {
	if s.placeholder {
		return SchemaPlaceholder
	}
	return QuoteIdent(s.name)
}

// Name returns the schema name for manifest bookkeeping; placeholders report
// the token itself.
func (s SchemaToken) Name() string {
	if s.placeholder {
		return SchemaPlaceholder
	}
	return s.name
}
