// Package pipeline wires the stages together: load plans, validate
// consistency, compute the execution order, synthesize the unified plan.
// Each stage gets its configuration passed in explicitly so a run is fully
// described by its Options.

package pipeline

import (
	"fmt"
	"time"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/orchestrate"
	"github.com/kingrea/stratum/internal/plan"
	"github.com/kingrea/stratum/internal/unified"
	"github.com/kingrea/stratum/internal/validate"
)

// Options configures a pipeline run.
type Options struct {
	// Mandatory layers abort the run with plan.NotFoundError when absent.
	Mandatory []layer.Kind
	// Graph overrides the built-in layer graph.
	Graph *layer.Graph
	// Checkpoints overrides per-kind checkpoint texts.
	Checkpoints map[layer.Kind]string
	// NamingThreshold overrides the field-correspondence similarity cutoff.
	NamingThreshold float64
	// TypeSynonyms extends the built-in type compatibility table.
	TypeSynonyms map[string][]string
	// SeverityOverrides remaps issue categories to a different severity.
	SeverityOverrides map[validate.Category]validate.Severity
	// ParallelParse parses layer files concurrently.
	ParallelParse bool
	// Now supplies the synthesis timestamp; defaults to time.Now.
	Now func() time.Time
}

// Result is everything a completed run produced. Unified is populated even
// when validation fails, so callers keep the full picture; Failed records
// the validation outcome for exit-code handling.
type Result struct {
	Plans   map[layer.Kind]*plan.Plan
	Report  validate.Report
	Steps   []orchestrate.Step
	Unified *unified.UnifiedPlan
	Failed  bool
}

// Run executes the full pipeline over the plans directory. A missing
// mandatory layer or a cyclic graph is fatal and returns before synthesis;
// validation errors are not fatal here.
func Run(dir string, opts Options) (*Result, error) {
	store := plan.NewStore(plan.WithParallelParse(opts.ParallelParse))
	plans, err := store.Load(dir, plan.Options{Mandatory: opts.Mandatory})
	if err != nil {
		return nil, fmt.Errorf("pipeline: load plans: %w", err)
	}

	validator := validate.New(validate.Config{
		Graph:             opts.Graph,
		NamingThreshold:   opts.NamingThreshold,
		TypeSynonyms:      opts.TypeSynonyms,
		SeverityOverrides: opts.SeverityOverrides,
	})
	report := validator.Validate(plans)

	orch := orchestrate.New(orchestrate.Config{
		Graph:       opts.Graph,
		Checkpoints: opts.Checkpoints,
	})
	steps, err := orch.Order(plans)
	if err != nil {
		return nil, fmt.Errorf("pipeline: order layers: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Result{
		Plans:   plans,
		Report:  report,
		Steps:   steps,
		Unified: unified.Synthesize(plans, report, steps, now()),
		Failed:  report.Status == validate.StatusFail,
	}, nil
}
