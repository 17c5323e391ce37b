package unified

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/orchestrate"
	"github.com/kingrea/stratum/internal/plan"
	"github.com/kingrea/stratum/internal/validate"
)

func fixture() (map[layer.Kind]*plan.Plan, validate.Report, []orchestrate.Step, time.Time) {
	plans := map[layer.Kind]*plan.Plan{
		layer.KindSchema: {
			Kind:   layer.KindSchema,
			Source: "schema.md",
			Facts: plan.FactSet{
				ReferencedFiles: []string{"migrations/001_users.sql", "docs/schema.md"},
			},
		},
		layer.KindLogic: {
			Kind:   layer.KindLogic,
			Source: "logic.md",
			Facts: plan.FactSet{
				ReferencedFiles: []string{"docs/schema.md", "internal/users/service.go"},
			},
		},
	}
	report := validate.Report{
		Status: validate.StatusWarnings,
		Issues: []validate.Issue{{
			Severity:    validate.SeverityWarning,
			Category:    validate.CategoryNaming,
			Message:     "field 'created_at' spelled 'createdAt' downstream",
			SourceLayer: layer.KindSchema,
			TargetLayer: layer.KindLogic,
		}},
	}
	steps := []orchestrate.Step{
		{Order: 1, Kind: layer.KindSchema, Source: "schema.md", Description: "data model", Checkpoint: "migrations apply cleanly"},
		{Order: 2, Kind: layer.KindLogic, Source: "logic.md", Description: "business logic", Dependencies: []layer.Kind{layer.KindSchema}, Checkpoint: "handlers tested"},
	}
	generated := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return plans, report, steps, generated
}

func TestSynthesizeManifest(t *testing.T) {
	plans, report, steps, generated := fixture()
	u := Synthesize(plans, report, steps, generated)

	if len(u.Files) != 3 {
		t.Fatalf("expected 3 manifest entries, got %d", len(u.Files))
	}
	// Sorted by path; the shared doc is annotated with both layers.
	if u.Files[0].Path != "docs/schema.md" {
		t.Fatalf("manifest not sorted, first entry %q", u.Files[0].Path)
	}
	if len(u.Files[0].Layers) != 2 {
		t.Fatalf("shared file should name both layers, got %v", u.Files[0].Layers)
	}
	if u.Files[1].Path != "internal/users/service.go" || u.Files[2].Path != "migrations/001_users.sql" {
		t.Fatalf("unexpected manifest order: %v", u.Files)
	}
}

func TestSynthesizeIdempotent(t *testing.T) {
	plans, report, steps, generated := fixture()
	first := Synthesize(plans, report, steps, generated)
	second := Synthesize(plans, report, steps, generated)

	if first.RenderMarkdown() != second.RenderMarkdown() {
		t.Fatal("markdown rendering differs across identical syntheses")
	}
	firstJSON, err := first.RenderJSON()
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	secondJSON, err := second.RenderJSON()
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatal("json rendering differs across identical syntheses")
	}
}

func TestSynthesizeDoesNotMutateInputs(t *testing.T) {
	plans, report, steps, generated := fixture()
	before := plans[layer.KindSchema].Facts.ReferencedFiles[0]
	stepsBefore := steps[0]

	u := Synthesize(plans, report, steps, generated)
	u.Steps[0].Checkpoint = "tampered"
	u.Files[0].Path = "tampered"

	if plans[layer.KindSchema].Facts.ReferencedFiles[0] != before {
		t.Fatal("synthesis mutated the plan inputs")
	}
	if !reflect.DeepEqual(steps[0], stepsBefore) {
		t.Fatal("synthesis shares the caller's step slice")
	}
}

func TestRenderMarkdownSections(t *testing.T) {
	plans, report, steps, generated := fixture()
	doc := Synthesize(plans, report, steps, generated).RenderMarkdown()

	for _, heading := range []string{
		"## Validation Status",
		"## Execution Order",
		"## File Changes Summary",
		"## Cross-Layer Integration",
		"## Test Strategy",
		"## Implementation Checkpoints",
		"## Detailed Plans",
	} {
		if !strings.Contains(doc, heading) {
			t.Fatalf("rendering missing %q", heading)
		}
	}
	if !strings.Contains(doc, "**Generated**: 2026-03-14 09:30:00") {
		t.Fatal("rendering should carry the supplied timestamp")
	}
	if !strings.Contains(doc, "Status**: WARNINGS (1 warning(s))") {
		t.Fatalf("warning status not rendered:\n%s", doc)
	}
	if !strings.Contains(doc, "### Step 1: Schema") {
		t.Fatal("step headings missing")
	}
}

func TestRenderMarkdownFailListsErrors(t *testing.T) {
	plans, _, steps, generated := fixture()
	report := validate.Report{
		Status: validate.StatusFail,
		Issues: []validate.Issue{{
			Severity:    validate.SeverityError,
			Category:    validate.CategoryCoverage,
			Message:     "endpoint GET /users has no handler",
			SourceLayer: layer.KindInterface,
			TargetLayer: layer.KindLogic,
		}},
	}
	doc := Synthesize(plans, report, steps, generated).RenderMarkdown()
	if !strings.Contains(doc, "Status**: FAIL (1 error(s))") {
		t.Fatal("fail status not rendered")
	}
	if !strings.Contains(doc, "endpoint GET /users has no handler") {
		t.Fatal("error detail not rendered")
	}
}
