package generator

import (
	"strings"
	"testing"
)

func TestBuildStagingArtifactWithPK(t *testing.T) {
	content, err := BuildStagingArtifact(actorContext())
	if err != nil {
		t.Fatalf("BuildStagingArtifact() error: %v", err)
	}

	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS {{SCHEMA}}."Actor_staging"`,
		`CREATE OR REPLACE PROCEDURE {{SCHEMA}}."merge_Actor"(p_batch_size integer DEFAULT 5000)`,
		`ON CONFLICT ("actno") DO UPDATE SET`,
		`"name" = EXCLUDED."name"`,
		`INSERT INTO cdc_management.sync_metrics`,
		`CREATE OR REPLACE FUNCTION {{SCHEMA}}."fn_Actor_touch_synced_at"()`,
		`CREATE OR REPLACE TRIGGER "tg_Actor_touch_synced_at"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("staging artifact missing %q:\n%s", want, content)
		}
	}

	// The merge procedure must not update the conflict key itself.
	if strings.Contains(content, `"actno" = EXCLUDED."actno"`) {
		t.Error("merge procedure updates the primary key")
	}
	if strings.Contains(strings.ToUpper(content), "DROP ") {
		t.Error("staging artifact contains a destructive statement")
	}
}

func TestBuildStagingArtifactWithoutPK(t *testing.T) {
	rc := actorContext()
	rc.PrimaryKey = ""

	content, err := BuildStagingArtifact(rc)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(content, "ON CONFLICT") {
		t.Errorf("insert-only merge expected without a primary key:\n%s", content)
	}
}

func TestBuildCreateSchemasArtifact(t *testing.T) {
	content, err := BuildCreateSchemasArtifact([]string{"{{SCHEMA}}", `"adopus"`})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"CREATE SCHEMA IF NOT EXISTS cdc_management;",
		"CREATE SCHEMA IF NOT EXISTS {{SCHEMA}};",
		`CREATE SCHEMA IF NOT EXISTS "adopus";`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("schemas artifact missing %q:\n%s", want, content)
		}
	}
}

func TestBuildCDCManagementArtifact(t *testing.T) {
	content, err := BuildCDCManagementArtifact("cdc_writer")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS cdc_management.sync_control",
		"CREATE TABLE IF NOT EXISTS cdc_management.sync_metrics",
		"CREATE OR REPLACE VIEW cdc_management.v_sync_status",
		`GRANT USAGE ON SCHEMA cdc_management TO "cdc_writer";`,
		`GRANT SELECT, INSERT, UPDATE ON ALL TABLES IN SCHEMA cdc_management TO "cdc_writer";`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("management artifact missing %q:\n%s", want, content)
		}
	}
}
