package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/plan"
	"github.com/kingrea/stratum/internal/validate"
)

func writePlan(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const coherentSchema = `# Schema Plan

### Table: users

- id: UUID (required)
- email: VARCHAR (required)
`

const coherentInterface = `# Interface Plan

## Endpoints

POST /users

UserResponse:
  id: string
  email: string
`

const coherentLogic = `# Logic Plan

handler: postUsers

- id: string (required)
- email: string (required)
`

func fixedClock() time.Time {
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestRunCoherentPlans(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "schema.md", coherentSchema)
	writePlan(t, dir, "interface.md", coherentInterface)
	writePlan(t, dir, "logic.md", coherentLogic)

	result, err := Run(dir, Options{Now: fixedClock})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Failed {
		t.Fatalf("coherent plans should not fail, report: %+v", result.Report)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Kind != layer.KindSchema {
		t.Fatalf("schema should run first, got %s", result.Steps[0].Kind)
	}
	if result.Unified == nil {
		t.Fatal("unified plan missing")
	}
	if !result.Unified.GeneratedAt.Equal(fixedClock()) {
		t.Fatalf("unified plan should use injected clock, got %s", result.Unified.GeneratedAt)
	}
}

func TestRunMandatoryMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "logic.md", coherentLogic)

	_, err := Run(dir, Options{Mandatory: []layer.Kind{layer.KindSchema}})
	if err == nil {
		t.Fatal("expected error for missing mandatory layer")
	}
	var notFound *plan.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Kind != layer.KindSchema {
		t.Fatalf("wrong kind in error: %s", notFound.Kind)
	}
}

func TestRunValidationFailureStillSynthesizes(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "interface.md", "# Interface\n\nGET /users\n")
	writePlan(t, dir, "logic.md", "# Logic\n\nhandler: deleteEverything\n")

	result, err := Run(dir, Options{Now: fixedClock})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Failed {
		t.Fatal("uncovered endpoint should fail validation")
	}
	if result.Report.Status != validate.StatusFail {
		t.Fatalf("expected FAIL, got %s", result.Report.Status)
	}
	if result.Unified == nil {
		t.Fatal("synthesis must still complete on validation failure")
	}
	if len(result.Unified.Steps) != 2 {
		t.Fatalf("expected 2 steps in unified plan, got %d", len(result.Unified.Steps))
	}
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := Run(filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatal("expected error for missing plans directory")
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "schema.md", coherentSchema)
	writePlan(t, dir, "interface.md", coherentInterface)
	writePlan(t, dir, "logic.md", coherentLogic)

	sequential, err := Run(dir, Options{Now: fixedClock})
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}
	parallel, err := Run(dir, Options{Now: fixedClock, ParallelParse: true})
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}
	if sequential.Unified.RenderMarkdown() != parallel.Unified.RenderMarkdown() {
		t.Fatal("parallel parse changed the rendered output")
	}
}
