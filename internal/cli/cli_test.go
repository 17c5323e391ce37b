package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/stratum/internal/validate"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Cleanup(func() {
		mandatoryFlag = nil
		validateOutput = ""
		orderOutput = ""
		synthesizeOutput = ""
	})
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writePlans(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func coherentPlans(t *testing.T) string {
	return writePlans(t, map[string]string{
		"schema.md":    "# Schema\n\n### Table: users\n\n- id: UUID (required)\n",
		"interface.md": "# Interface\n\nPOST /users\n\nUserResponse:\n  id: string\n",
		"logic.md":     "# Logic\n\nhandler: postUsers\n\n- id: string (required)\n",
	})
}

func TestValidateCommandPasses(t *testing.T) {
	chdir(t, t.TempDir())
	plans := coherentPlans(t)
	if err := execute(t, "validate", plans, "--mandatory", "schema"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateCommandFailExitsNonZero(t *testing.T) {
	chdir(t, t.TempDir())
	plans := writePlans(t, map[string]string{
		"interface.md": "# Interface\n\nGET /users\n",
		"logic.md":     "# Logic\n\nhandler: unrelatedWork\n",
	})
	err := execute(t, "validate", plans, "--mandatory", "logic")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestValidateCommandMandatoryMissing(t *testing.T) {
	chdir(t, t.TempDir())
	plans := writePlans(t, map[string]string{
		"logic.md": "# Logic\n",
	})
	err := execute(t, "validate", plans, "--mandatory", "schema")
	if err == nil || errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected fatal load error, got %v", err)
	}
}

func TestValidateCommandWritesReport(t *testing.T) {
	chdir(t, t.TempDir())
	plans := coherentPlans(t)
	out := filepath.Join(t.TempDir(), "report.json")
	if err := execute(t, "validate", plans, "--output", out); err != nil {
		t.Fatalf("validate: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report validate.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Status == "" {
		t.Fatal("report status missing")
	}
}

func TestOrderCommandWritesSteps(t *testing.T) {
	chdir(t, t.TempDir())
	plans := coherentPlans(t)
	out := filepath.Join(t.TempDir(), "plan.json")
	if err := execute(t, "order", plans, "--output", out); err != nil {
		t.Fatalf("order: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read steps: %v", err)
	}
	var steps []map[string]any
	if err := json.Unmarshal(data, &steps); err != nil {
		t.Fatalf("decode steps: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
}

func TestSynthesizeCommandWritesMarkdown(t *testing.T) {
	chdir(t, t.TempDir())
	plans := coherentPlans(t)
	out := filepath.Join(t.TempDir(), "unified.md")
	if err := execute(t, "synthesize", plans, "--output", out); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read unified plan: %v", err)
	}
	if !strings.Contains(string(data), "# Unified Implementation Plan") {
		t.Fatal("markdown header missing")
	}
}

func TestSynthesizeCommandWritesJSON(t *testing.T) {
	chdir(t, t.TempDir())
	plans := coherentPlans(t)
	out := filepath.Join(t.TempDir(), "unified.json")
	if err := execute(t, "synthesize", plans, "--output", out); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read unified plan: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode unified plan: %v", err)
	}
	if _, ok := decoded["steps"]; !ok {
		t.Fatal("steps missing from JSON plan")
	}
}

func TestInitCommandCreatesTree(t *testing.T) {
	projectDir := t.TempDir()
	chdir(t, projectDir)
	if err := execute(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectDir, ".stratum", "config.yaml")); err != nil {
		t.Fatalf("config not seeded: %v", err)
	}
}

func TestRulePackChangesSeverity(t *testing.T) {
	projectDir := t.TempDir()
	chdir(t, projectDir)
	if err := execute(t, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	pack := "id: strict-naming\nversion: \"1\"\nseverities:\n  naming: error\n"
	rulesDir := filepath.Join(projectDir, ".stratum", "rules")
	if err := os.WriteFile(filepath.Join(rulesDir, "strict.yaml"), []byte(pack), 0o644); err != nil {
		t.Fatal(err)
	}
	// created_at vs createdAt is normally a warning; the pack escalates it.
	plans := writePlans(t, map[string]string{
		"schema.md":    "# Schema\n\n### Table: users\n\n- created_at: TIMESTAMP\n",
		"interface.md": "# Interface\n\nUserResponse:\n  createdAt: string\n",
	})
	err := execute(t, "validate", plans, "--mandatory", "schema")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected escalation to FAIL, got %v", err)
	}
}
