// Package config loads and validates the cdcgen configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pattern selects the tenancy layout of a sink group.
type Pattern string

const (
	// PatternPerTenant deploys one database per tenant; generated artifacts
	// keep a symbolic schema placeholder resolved at apply time.
	PatternPerTenant Pattern = "per_tenant"
	// PatternShared hosts all tenants in one database; the target schema is
	// baked into the artifact at generation time.
	PatternShared Pattern = "shared"
)

// Config is the root configuration document.
type Config struct {
	Source          ConnConfig                `yaml:"source"`
	Output          OutputConfig              `yaml:"output"`
	Sinks           map[string]SinkConfig     `yaml:"sinks"`
	ColumnTemplates map[string]ColumnTemplate `yaml:"column_templates"`
}

// ConnConfig holds source database connection settings, used only by the
// introspect command. The generator never opens a connection.
type ConnConfig struct {
	Type            string `yaml:"type"` // "mssql" or "postgres" (default: mssql)
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Database        string `yaml:"database"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`          // PostgreSQL: disable, require, verify-ca, verify-full
	TrustServerCert bool   `yaml:"trust_server_cert"` // MSSQL: trust server certificate
}

// OutputConfig holds filesystem locations for generated output.
type OutputConfig struct {
	Dir            string `yaml:"dir"`             // artifact tree root (default: migrations)
	DefinitionsDir string `yaml:"definitions_dir"` // introspected table definitions (default: table-definitions)
	HistoryPath    string `yaml:"history_path"`    // run history database (default: .cdcgen/history.db)
}

// SinkConfig describes one sink group and its replicated tables.
type SinkConfig struct {
	Pattern          Pattern                    `yaml:"pattern"`
	EnvironmentAware bool                       `yaml:"environment_aware"`
	Schema           string                     `yaml:"schema"` // shared pattern: target schema (defaults to sink name)
	Tables           map[string]SinkTableConfig `yaml:"tables"` // keyed by schema.table
}

// SinkTableConfig describes one replicated table within a sink.
type SinkTableConfig struct {
	From                 string   `yaml:"from"` // source table reference; defaults to the table key
	TargetExists         bool     `yaml:"target_exists"`
	ReplicateStructure   bool     `yaml:"replicate_structure"`
	IgnoreColumns        []string `yaml:"ignore_columns"`
	ColumnTemplates      []string `yaml:"column_templates"`
	TargetSchemaOverride string   `yaml:"target_schema_override"`
}

// ColumnTemplate is a named, reusable column definition injectable into any
// table's generated schema.
type ColumnTemplate struct {
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Default  string `yaml:"default"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = "mssql"
	}
	if c.Source.Port == 0 {
		if c.Source.Type == "postgres" {
			c.Source.Port = 5432
		} else {
			c.Source.Port = 1433
		}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "migrations"
	}
	if c.Output.DefinitionsDir == "" {
		c.Output.DefinitionsDir = "table-definitions"
	}
	if c.Output.HistoryPath == "" {
		c.Output.HistoryPath = ".cdcgen/history.db"
	}
	if pw := os.Getenv("CDC_SOURCE_PASSWORD"); pw != "" {
		c.Source.Password = pw
	}
}

func (c *Config) validate() error {
	if len(c.Sinks) == 0 {
		return fmt.Errorf("config: at least one sink is required")
	}

	// Deterministic validation order so the first reported error is stable.
	sinkNames := make([]string, 0, len(c.Sinks))
	for name := range c.Sinks {
		sinkNames = append(sinkNames, name)
	}
	sort.Strings(sinkNames)

	for _, name := range sinkNames {
		sink := c.Sinks[name]
		switch sink.Pattern {
		case PatternPerTenant, PatternShared:
		case "":
			return fmt.Errorf("config: sink %q: pattern is required (per_tenant or shared)", name)
		default:
			return fmt.Errorf("config: sink %q: unknown pattern %q", name, sink.Pattern)
		}
		if len(sink.Tables) == 0 {
			return fmt.Errorf("config: sink %q: no tables configured", name)
		}

		tableKeys := make([]string, 0, len(sink.Tables))
		for key := range sink.Tables {
			tableKeys = append(tableKeys, key)
		}
		sort.Strings(tableKeys)

		for _, key := range tableKeys {
			tbl := sink.Tables[key]
			if !strings.Contains(key, ".") {
				return fmt.Errorf("config: sink %q: table key %q must be schema.table", name, key)
			}
			if tbl.From != "" && !strings.Contains(tbl.From, ".") {
				return fmt.Errorf("config: sink %q table %q: from %q must be schema.table", name, key, tbl.From)
			}
			for _, tmpl := range tbl.ColumnTemplates {
				if _, ok := c.ColumnTemplates[tmpl]; !ok {
					return fmt.Errorf("config: sink %q table %q: unknown column template %q", name, key, tmpl)
				}
			}
		}
	}

	tmplNames := make([]string, 0, len(c.ColumnTemplates))
	for name := range c.ColumnTemplates {
		tmplNames = append(tmplNames, name)
	}
	sort.Strings(tmplNames)
	for _, name := range tmplNames {
		if c.ColumnTemplates[name].Type == "" {
			return fmt.Errorf("config: column template %q: type is required", name)
		}
	}

	return nil
}

// TargetSchema returns the schema name a shared-pattern sink resolves to.
func (s *SinkConfig) TargetSchema(sinkName string, tbl SinkTableConfig) string {
	if tbl.TargetSchemaOverride != "" {
		return tbl.TargetSchemaOverride
	}
	if s.Schema != "" {
		return s.Schema
	}
	return sinkName
}

// SourceRef returns the source table reference for a configured table,
// falling back to the table key when no explicit mapping is set.
func (t SinkTableConfig) SourceRef(key string) string {
	if t.From != "" {
		return t.From
	}
	return key
}
