// Package validate runs the fixed battery of cross-layer consistency rules
// over loaded plans. Rules compare adjacent layers only, where adjacency is
// defined by the static layer graph, and the output ordering is fully
// deterministic so repeated runs over the same plans agree byte for byte.

package validate

import (
	"sort"

	"github.com/kingrea/stratum/internal/layer"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Category names the rule family that produced an issue.
type Category string

const (
	CategoryNaming         Category = "naming"
	CategoryTypeMismatch   Category = "type-mismatch"
	CategoryCoverage       Category = "missing-coverage"
	CategorySchemaConflict Category = "schema-conflict"
	CategoryParse          Category = "parse"
)

// Issue is one validation finding. Immutable once created.
type Issue struct {
	Severity    Severity   `json:"severity" yaml:"severity"`
	Category    Category   `json:"category" yaml:"category"`
	Message     string     `json:"message" yaml:"message"`
	SourceLayer layer.Kind `json:"source_layer" yaml:"source_layer"`
	TargetLayer layer.Kind `json:"target_layer,omitempty" yaml:"target_layer,omitempty"`
}

// Status summarizes a whole validation run.
type Status string

const (
	StatusPass     Status = "PASS"
	StatusWarnings Status = "WARNINGS"
	StatusFail     Status = "FAIL"
)

// Report is the validator's result: the classified issue list plus the
// overall status derived from it.
type Report struct {
	Status Status  `json:"status" yaml:"status"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Errors returns the error-severity issues in report order.
func (r Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the warning-severity issues in report order.
func (r Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// newReport sorts the issues into their canonical order and computes the
// status. Sort keys: category, then source layer, then target layer, then
// message; the sort is stable so equal issues keep insertion order.
func newReport(issues []Issue) Report {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SourceLayer != b.SourceLayer {
			return a.SourceLayer < b.SourceLayer
		}
		if a.TargetLayer != b.TargetLayer {
			return a.TargetLayer < b.TargetLayer
		}
		return a.Message < b.Message
	})
	status := StatusPass
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			status = StatusFail
			break
		}
		status = StatusWarnings
	}
	return Report{Status: status, Issues: issues}
}
