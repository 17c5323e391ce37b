package unified

import (
	"fmt"
	"strings"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/validate"
)

// Per-layer verification guidance included in the rendered document.
var testNotes = map[layer.Kind][]string{
	layer.KindSchema: {
		"Run migrations against a scratch database",
		"Verify schema integrity and constraints",
	},
	layer.KindInterface: {
		"Validate the API schema syntax",
		"Run contract tests against the declared endpoints",
	},
	layer.KindLogic: {
		"Unit tests for business logic",
		"Integration tests for every handler",
	},
	layer.KindPresentation: {
		"Integration tests for API client calls",
		"State management and end-to-end tests",
	},
	layer.KindInfrastructure: {
		"Provision into a disposable environment",
		"Verify service health checks and teardown",
	},
}

// Pairwise integration reminders keyed by (upstream, downstream).
var integrationNotes = map[[2]layer.Kind][]string{
	{layer.KindSchema, layer.KindInterface}: {
		"Schema entities map to interface request/response models",
		"Field naming conventions align across the boundary",
		"Data type compatibility is validated",
	},
	{layer.KindInterface, layer.KindLogic}: {
		"Every declared endpoint has a corresponding handler",
		"Request/response shapes match the handler transformations",
	},
	{layer.KindLogic, layer.KindPresentation}: {
		"Presentation client calls match declared endpoints",
		"Error handling covers every failure response",
	},
	{layer.KindLogic, layer.KindInfrastructure}: {
		"Runtime services referenced by the logic layer are provisioned",
	},
}

// RenderMarkdown renders the unified plan as a markdown document. The layout
// is stable: identical plans render identical bytes.
func (u *UnifiedPlan) RenderMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Unified Implementation Plan\n\n")
	fmt.Fprintf(&b, "**Generated**: %s\n\n", u.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))
	b.WriteString("---\n\n")

	b.WriteString("## Table of Contents\n\n")
	b.WriteString("1. [Validation Status](#validation-status)\n")
	b.WriteString("2. [Execution Order](#execution-order)\n")
	b.WriteString("3. [File Changes Summary](#file-changes-summary)\n")
	b.WriteString("4. [Cross-Layer Integration](#cross-layer-integration)\n")
	b.WriteString("5. [Test Strategy](#test-strategy)\n")
	b.WriteString("6. [Implementation Checkpoints](#implementation-checkpoints)\n")
	b.WriteString("7. [Detailed Plans](#detailed-plans)\n\n")
	b.WriteString("---\n\n")

	u.renderValidation(&b)
	u.renderSteps(&b)
	u.renderFiles(&b)
	u.renderIntegration(&b)
	u.renderTestStrategy(&b)
	u.renderCheckpoints(&b)
	u.renderDetailedPlans(&b)

	b.WriteString("**End of Unified Implementation Plan**\n")
	return b.String()
}

func (u *UnifiedPlan) renderValidation(b *strings.Builder) {
	b.WriteString("## Validation Status\n\n")
	switch u.Validation.Status {
	case validate.StatusPass:
		b.WriteString("**Status**: PASS\n\n")
		b.WriteString("All plans are coherent and ready for implementation.\n")
	case validate.StatusWarnings:
		warnings := u.Validation.Warnings()
		fmt.Fprintf(b, "**Status**: WARNINGS (%d warning(s))\n\n", len(warnings))
		b.WriteString("Plans have warnings. Review recommended before implementation:\n\n")
		renderIssues(b, warnings)
	default:
		errors := u.Validation.Errors()
		fmt.Fprintf(b, "**Status**: FAIL (%d error(s))\n\n", len(errors))
		b.WriteString("Critical errors detected. Cannot proceed with implementation:\n\n")
		renderIssues(b, errors)
		if warnings := u.Validation.Warnings(); len(warnings) > 0 {
			fmt.Fprintf(b, "\nAdditionally %d warning(s):\n\n", len(warnings))
			renderIssues(b, warnings)
		}
	}
	b.WriteString("\n---\n\n")
}

func renderIssues(b *strings.Builder, issues []validate.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(b, "- **[%s]** %s\n", issue.Category, issue.Message)
		fmt.Fprintf(b, "  - Source: `%s`\n", issue.SourceLayer)
		if issue.TargetLayer != "" {
			fmt.Fprintf(b, "  - Target: `%s`\n", issue.TargetLayer)
		}
	}
}

func (u *UnifiedPlan) renderSteps(b *strings.Builder) {
	b.WriteString("## Execution Order\n\n")
	if len(u.Steps) == 0 {
		b.WriteString("No execution plan available.\n\n---\n\n")
		return
	}
	b.WriteString("Implementation should follow this dependency-ordered sequence:\n\n")
	for _, step := range u.Steps {
		fmt.Fprintf(b, "### Step %d: %s\n\n", step.Order, layer.InfoFor(step.Kind).Name)
		fmt.Fprintf(b, "**Description**: %s\n\n", step.Description)
		fmt.Fprintf(b, "**Plan File**: `%s`\n\n", step.Source)
		if len(step.Dependencies) > 0 {
			names := make([]string, len(step.Dependencies))
			for i, dep := range step.Dependencies {
				names[i] = string(dep)
			}
			fmt.Fprintf(b, "**Dependencies**: %s\n\n", strings.Join(names, ", "))
		} else {
			b.WriteString("**Dependencies**: None\n\n")
		}
		fmt.Fprintf(b, "**Checkpoint**: %s\n\n", step.Checkpoint)
	}
	b.WriteString("---\n\n")
}

func (u *UnifiedPlan) renderFiles(b *strings.Builder) {
	b.WriteString("## File Changes Summary\n\n")
	if len(u.Files) == 0 {
		b.WriteString("No file references found in the plans.\n\n---\n\n")
		return
	}
	b.WriteString("Files referenced across the plans:\n\n")
	for _, entry := range u.Files {
		names := make([]string, len(entry.Layers))
		for i, kind := range entry.Layers {
			names[i] = string(kind)
		}
		fmt.Fprintf(b, "- `%s` (%s)\n", entry.Path, strings.Join(names, ", "))
	}
	b.WriteString("\n---\n\n")
}

func (u *UnifiedPlan) renderIntegration(b *strings.Builder) {
	b.WriteString("## Cross-Layer Integration\n\n")
	b.WriteString("Key integration points between architectural layers:\n\n")
	wrote := false
	for _, step := range u.Steps {
		for _, dep := range step.Dependencies {
			notes, ok := integrationNotes[[2]layer.Kind{dep, step.Kind}]
			if !ok {
				continue
			}
			wrote = true
			fmt.Fprintf(b, "### %s ↔ %s\n\n", layer.InfoFor(dep).Name, layer.InfoFor(step.Kind).Name)
			for _, note := range notes {
				fmt.Fprintf(b, "- %s\n", note)
			}
			b.WriteString("\n")
		}
	}
	if !wrote {
		b.WriteString("No adjacent layer pairs present.\n\n")
	}
	b.WriteString("---\n\n")
}

func (u *UnifiedPlan) renderTestStrategy(b *strings.Builder) {
	b.WriteString("## Test Strategy\n\n")
	b.WriteString("Verification approach across the present layers:\n\n")
	for _, step := range u.Steps {
		notes, ok := testNotes[step.Kind]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "### %s Tests\n\n", layer.InfoFor(step.Kind).Name)
		for _, note := range notes {
			fmt.Fprintf(b, "- %s\n", note)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
}

func (u *UnifiedPlan) renderCheckpoints(b *strings.Builder) {
	b.WriteString("## Implementation Checkpoints\n\n")
	b.WriteString("Verify these checkpoints after each implementation step:\n\n")
	for _, step := range u.Steps {
		fmt.Fprintf(b, "%d. **After %s**: %s\n", step.Order, layer.InfoFor(step.Kind).Name, step.Checkpoint)
	}
	b.WriteString("\n---\n\n")
}

func (u *UnifiedPlan) renderDetailedPlans(b *strings.Builder) {
	b.WriteString("## Detailed Plans\n\n")
	b.WriteString("Full layer plans for reference:\n\n")
	for _, source := range u.Sources {
		fmt.Fprintf(b, "### %s\n\n", layer.InfoFor(source.Kind).Name)
		fmt.Fprintf(b, "See: `%s`\n\n", source.File)
	}
	b.WriteString("---\n\n")
}
