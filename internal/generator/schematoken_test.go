package generator

import (
	"testing"

	"github.com/replisys/cdcgen/internal/config"
)

func TestResolveSchemaPerTenant(t *testing.T) {
	sink := &config.SinkConfig{Pattern: config.PatternPerTenant, Schema: "ignored"}

	token := ResolveSchema("adopus", sink, config.SinkTableConfig{TargetSchemaOverride: "also_ignored"})
	if !token.IsPlaceholder() {
		t.Fatal("per_tenant must stay symbolic")
	}
	if token.SQL() != "{{SCHEMA}}" {
		t.Errorf("SQL() = %q, want raw placeholder", token.SQL())
	}
	if token.Name() != "{{SCHEMA}}" {
		t.Errorf("Name() = %q", token.Name())
	}
}

func TestResolveSchemaShared(t *testing.T) {
	tests := []struct {
		name     string
		sink     config.SinkConfig
		tbl      config.SinkTableConfig
		wantName string
		wantSQL  string
	}{
		{
			name:     "defaults to sink name",
			sink:     config.SinkConfig{Pattern: config.PatternShared},
			wantName: "adopus",
			wantSQL:  `"adopus"`,
		},
		{
			name:     "sink schema wins over sink name",
			sink:     config.SinkConfig{Pattern: config.PatternShared, Schema: "adopus_shared"},
			wantName: "adopus_shared",
			wantSQL:  `"adopus_shared"`,
		},
		{
			name:     "table override wins over everything",
			sink:     config.SinkConfig{Pattern: config.PatternShared, Schema: "adopus_shared"},
			tbl:      config.SinkTableConfig{TargetSchemaOverride: "special"},
			wantName: "special",
			wantSQL:  `"special"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ResolveSchema("adopus", &tt.sink, tt.tbl)
			if token.IsPlaceholder() {
				t.Fatal("shared must resolve immediately")
			}
			if token.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", token.Name(), tt.wantName)
			}
			if token.SQL() != tt.wantSQL {
				t.Errorf("SQL() = %q, want %q", token.SQL(), tt.wantSQL)
			}
		})
	}
}
