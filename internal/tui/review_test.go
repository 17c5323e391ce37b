package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/logbook"
	"github.com/kingrea/stratum/internal/orchestrate"
	"github.com/kingrea/stratum/internal/pipeline"
	"github.com/kingrea/stratum/internal/plan"
	"github.com/kingrea/stratum/internal/unified"
	"github.com/kingrea/stratum/internal/validate"
)

func testResult() *pipeline.Result {
	plans := map[layer.Kind]*plan.Plan{
		layer.KindSchema: {
			Kind:   layer.KindSchema,
			Source: "schema.md",
			Facts:  plan.FactSet{ReferencedFiles: []string{"migrations/001_users.sql"}},
		},
	}
	report := validate.Report{
		Status: validate.StatusWarnings,
		Issues: []validate.Issue{{
			Severity:    validate.SeverityWarning,
			Category:    validate.CategoryNaming,
			Message:     "field spelling differs",
			SourceLayer: layer.KindSchema,
			TargetLayer: layer.KindInterface,
		}},
	}
	steps := []orchestrate.Step{
		{Order: 1, Kind: layer.KindSchema, Source: "schema.md", Checkpoint: "migrations apply"},
	}
	return &pipeline.Result{
		Plans:   plans,
		Report:  report,
		Steps:   steps,
		Unified: unified.Synthesize(plans, report, steps, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func TestNewReviewPopulatesPanes(t *testing.T) {
	review := NewReview(testResult(), nil)
	if got := len(review.issues.Items()); got != 1 {
		t.Fatalf("issue items = %d, want 1", got)
	}
	if got := len(review.steps.Items()); got != 1 {
		t.Fatalf("step items = %d, want 1", got)
	}
	if got := len(review.files.Items()); got != 1 {
		t.Fatalf("file items = %d, want 1", got)
	}
}

func TestTabSwitching(t *testing.T) {
	review := NewReview(testResult(), nil)
	model, _ := review.Update(tea.KeyMsg{Type: tea.KeyTab})
	review = model.(*Review)
	if review.tab != tabSteps {
		t.Fatalf("tab after one switch = %d, want steps", review.tab)
	}
	model, _ = review.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	review = model.(*Review)
	if review.tab != tabIssues {
		t.Fatalf("tab after switching back = %d, want issues", review.tab)
	}
}

func TestQuitKey(t *testing.T) {
	review := NewReview(testResult(), nil)
	_, cmd := review.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestViewShowsStatusAndTabs(t *testing.T) {
	review := NewReview(testResult(), nil)
	model, _ := review.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	review = model.(*Review)
	view := review.View()
	if !strings.Contains(view, "WARNINGS") {
		t.Fatalf("status missing from view:\n%s", view)
	}
	for _, name := range tabNames {
		if !strings.Contains(view, name) {
			t.Fatalf("tab %s missing from view", name)
		}
	}
}

func TestJournalTabReadsLogbook(t *testing.T) {
	book, err := logbook.New(filepath.Join(t.TempDir(), "runs.log"))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	book.Info("validated 3 layers")
	review := NewReview(testResult(), book)
	review.tab = tabJournal
	review.refreshJournal()
	view := review.View()
	if !strings.Contains(view, "validated 3 layers") {
		t.Fatalf("journal entry missing:\n%s", view)
	}
}
