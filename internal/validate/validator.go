package validate

import (
	"fmt"
	"sort"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/plan"
)

// Config carries everything a validation run needs. It is passed in
// explicitly so the same validator logic can run under different layer sets
// and thresholds without shared globals.
type Config struct {
	// Graph defines layer adjacency. Nil means the built-in graph.
	Graph *layer.Graph
	// NamingThreshold is the minimum similarity for field correspondence.
	// Zero means DefaultNamingThreshold.
	NamingThreshold float64
	// TypeSynonyms extends the built-in type compatibility table.
	TypeSynonyms map[string][]string
	// SeverityOverrides remaps the severity of whole issue categories,
	// typically supplied by a rule pack.
	SeverityOverrides map[Category]Severity
}

// Validator applies the rule battery to a set of loaded plans.
type Validator struct {
	graph      *layer.Graph
	threshold  float64
	types      *TypeTable
	severities map[Category]Severity
}

// New builds a validator, filling config defaults.
func New(cfg Config) *Validator {
	graph := cfg.Graph
	if graph == nil {
		graph = layer.DefaultGraph()
	}
	threshold := cfg.NamingThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultNamingThreshold
	}
	return &Validator{
		graph:      graph,
		threshold:  threshold,
		types:      NewTypeTable(cfg.TypeSynonyms),
		severities: cfg.SeverityOverrides,
	}
}

// rules is the fixed, ordered battery applied to every adjacent pair.
var rules = []func(pairContext) []Issue{
	namingRule,
	typeRule,
	coverageRule,
	requiredFieldRule,
}

// Validate runs every rule over every adjacent pair of present layers plus
// the per-layer parse findings, and returns the classified report. Identical
// inputs always produce the identical report.
func (v *Validator) Validate(plans map[layer.Kind]*plan.Plan) Report {
	var issues []Issue
	issues = append(issues, parseIssues(plans)...)
	for _, pair := range v.graph.AdjacentPairs() {
		upstream, upOK := plans[pair[0]]
		downstream, downOK := plans[pair[1]]
		if !upOK || !downOK {
			continue
		}
		ctx := pairContext{
			upstream:   upstream,
			downstream: downstream,
			threshold:  v.threshold,
			types:      v.types,
		}
		for _, rule := range rules {
			issues = append(issues, rule(ctx)...)
		}
	}
	for i := range issues {
		if severity, ok := v.severities[issues[i].Category]; ok {
			issues[i].Severity = severity
		}
	}
	return newReport(issues)
}

// parseIssues surfaces degraded layers as warnings so a bad file does not
// hide the rest of the results.
func parseIssues(plans map[layer.Kind]*plan.Plan) []Issue {
	kinds := make([]layer.Kind, 0, len(plans))
	for kind := range plans {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	var issues []Issue
	for _, kind := range kinds {
		loaded := plans[kind]
		if loaded.ParseErr == nil {
			continue
		}
		issues = append(issues, Issue{
			Severity:    SeverityWarning,
			Category:    CategoryParse,
			Message:     fmt.Sprintf("layer %s could not be fully parsed and was degraded to empty facts: %v", kind, loaded.ParseErr.Err),
			SourceLayer: kind,
		})
	}
	return issues
}
