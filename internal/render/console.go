// Package render formats pipeline results for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/orchestrate"
	"github.com/kingrea/stratum/internal/validate"
)

var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50C878"))
	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E8B339"))
	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
)

// Report renders a validation report for the console.
func Report(report validate.Report) string {
	var b strings.Builder
	b.WriteString(statusLine(report.Status))
	b.WriteString("\n")
	if len(report.Issues) == 0 {
		b.WriteString(dimStyle.Render("No issues found.") + "\n")
		return b.String()
	}
	for _, issue := range report.Issues {
		marker := warnStyle.Render("warning")
		if issue.Severity == validate.SeverityError {
			marker = failStyle.Render("error")
		}
		pair := string(issue.SourceLayer)
		if issue.TargetLayer != "" {
			pair += " -> " + string(issue.TargetLayer)
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			marker,
			categoryStyle.Render("["+string(issue.Category)+"]"),
			issue.Message,
		)
		fmt.Fprintf(&b, "        %s\n", dimStyle.Render(pair))
	}
	return b.String()
}

// Steps renders the execution order for the console.
func Steps(steps []orchestrate.Step) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Execution order") + "\n")
	if len(steps) == 0 {
		b.WriteString(dimStyle.Render("No layers present.") + "\n")
		return b.String()
	}
	for _, step := range steps {
		deps := "none"
		if len(step.Dependencies) > 0 {
			names := make([]string, len(step.Dependencies))
			for i, dep := range step.Dependencies {
				names[i] = string(dep)
			}
			deps = strings.Join(names, ", ")
		}
		fmt.Fprintf(&b, "  %d. %s %s\n",
			step.Order,
			layer.InfoFor(step.Kind).Name,
			dimStyle.Render("("+step.Source+")"),
		)
		fmt.Fprintf(&b, "     depends on: %s\n", deps)
		fmt.Fprintf(&b, "     checkpoint: %s\n", step.Checkpoint)
	}
	return b.String()
}

func statusLine(status validate.Status) string {
	switch status {
	case validate.StatusPass:
		return passStyle.Render("PASS") + " all plans are coherent"
	case validate.StatusWarnings:
		return warnStyle.Render("WARNINGS") + " review recommended"
	default:
		return failStyle.Render("FAIL") + " critical inconsistencies detected"
	}
}
