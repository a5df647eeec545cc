package main

import (
	"testing"

	"github.com/replisys/cdcgen/internal/config"
)

func TestDBUser(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", "postgres"},
		{"from environment", "cdc_writer", "cdc_writer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("CDC_DB_USER", tt.env)
			}
			if got := dbUser(); got != tt.want {
				t.Errorf("dbUser() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountMatchingTables(t *testing.T) {
	cfg := &config.Config{
		Sinks: map[string]config.SinkConfig{
			"adopus": {
				Tables: map[string]config.SinkTableConfig{
					"dbo.Actor":     {},
					"dbo.ActorRole": {},
					"dbo.Journal":   {},
				},
			},
			"billing": {
				Tables: map[string]config.SinkTableConfig{
					"dbo.Invoice": {},
				},
			},
		},
	}

	tests := []struct {
		filter string
		want   int
	}{
		{"", 4},
		{"Actor", 2},
		{"actor", 2}, // case-insensitive
		{"Invoice", 1},
		{"nomatch", 0},
	}

	for _, tt := range tests {
		if got := countMatchingTables(cfg, tt.filter); got != tt.want {
			t.Errorf("countMatchingTables(%q) = %d, want %d", tt.filter, got, tt.want)
		}
	}
}
