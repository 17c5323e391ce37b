// internal/tui/review.go
//
// Interactive browser over a pipeline run. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/logbook"
	"github.com/kingrea/stratum/internal/pipeline"
	"github.com/kingrea/stratum/internal/validate"
)

// reviewTab represents which pane the browser is showing.
type reviewTab int

const (
	tabIssues reviewTab = iota
	tabSteps
	tabFiles
	tabJournal
)

const journalTailLines = 50

var tabNames = []string{"Issues", "Steps", "Files", "Journal"}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))
	statusPassStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50C878"))
	statusWarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E8B339"))
	statusFailStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// issueItem implements list.Item for validation findings.
type issueItem struct {
	issue validate.Issue
}

func (i issueItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.issue.Category, i.issue.Severity)
}

func (i issueItem) Description() string {
	pair := string(i.issue.SourceLayer)
	if i.issue.TargetLayer != "" {
		pair += " -> " + string(i.issue.TargetLayer)
	}
	return fmt.Sprintf("%s (%s)", i.issue.Message, pair)
}

func (i issueItem) FilterValue() string { return i.issue.Message }

// stepItem implements list.Item for execution steps.
type stepItem struct {
	order      int
	kind       layer.Kind
	checkpoint string
	deps       []layer.Kind
}

func (s stepItem) Title() string {
	return fmt.Sprintf("%d. %s", s.order, layer.InfoFor(s.kind).Name)
}

func (s stepItem) Description() string {
	deps := "no dependencies"
	if len(s.deps) > 0 {
		names := make([]string, len(s.deps))
		for i, dep := range s.deps {
			names[i] = string(dep)
		}
		deps = "after " + strings.Join(names, ", ")
	}
	return deps + " · " + s.checkpoint
}

func (s stepItem) FilterValue() string { return string(s.kind) }

// fileItem implements list.Item for manifest entries.
type fileItem struct {
	path   string
	layers []layer.Kind
}

func (f fileItem) Title() string { return f.path }

func (f fileItem) Description() string {
	names := make([]string, len(f.layers))
	for i, kind := range f.layers {
		names[i] = string(kind)
	}
	return "referenced by " + strings.Join(names, ", ")
}

func (f fileItem) FilterValue() string { return f.path }

// Review is the browser model. It holds ALL the state for the session.
type Review struct {
	result  *pipeline.Result
	logbook *logbook.Logbook

	tab    reviewTab
	issues list.Model
	steps  list.Model
	files  list.Model

	journal      []string
	journalTotal int

	width  int
	height int
}

// NewReview builds the browser over a completed pipeline run. The logbook is
// optional; without one the journal tab stays empty.
func NewReview(result *pipeline.Result, book *logbook.Logbook) *Review {
	issueItems := make([]list.Item, 0, len(result.Report.Issues))
	for _, issue := range result.Report.Issues {
		issueItems = append(issueItems, issueItem{issue: issue})
	}
	stepItems := make([]list.Item, 0, len(result.Steps))
	for _, step := range result.Steps {
		stepItems = append(stepItems, stepItem{
			order:      step.Order,
			kind:       step.Kind,
			checkpoint: step.Checkpoint,
			deps:       step.Dependencies,
		})
	}
	var fileItems []list.Item
	if result.Unified != nil {
		fileItems = make([]list.Item, 0, len(result.Unified.Files))
		for _, entry := range result.Unified.Files {
			fileItems = append(fileItems, fileItem{path: entry.Path, layers: entry.Layers})
		}
	}

	r := &Review{
		result:  result,
		logbook: book,
		issues:  newPane("Validation Issues", issueItems),
		steps:   newPane("Execution Order", stepItems),
		files:   newPane("File Manifest", fileItems),
	}
	r.refreshJournal()
	return r
}

func newPane(title string, items []list.Item) list.Model {
	pane := list.New(items, list.NewDefaultDelegate(), 0, 0)
	pane.Title = title
	pane.SetShowStatusBar(false)
	pane.SetFilteringEnabled(false)
	return pane
}

func (r *Review) refreshJournal() {
	r.journal, r.journalTotal = r.logbook.Tail(journalTailLines)
}

// Init implements tea.Model.
func (r *Review) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (r *Review) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		paneHeight := max(5, msg.Height-6)
		r.issues.SetSize(msg.Width, paneHeight)
		r.steps.SetSize(msg.Width, paneHeight)
		r.files.SetSize(msg.Width, paneHeight)
		return r, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case "tab", "right", "l":
			r.tab = (r.tab + 1) % reviewTab(len(tabNames))
			if r.tab == tabJournal {
				r.refreshJournal()
			}
			return r, nil
		case "shift+tab", "left", "h":
			r.tab = (r.tab + reviewTab(len(tabNames)) - 1) % reviewTab(len(tabNames))
			if r.tab == tabJournal {
				r.refreshJournal()
			}
			return r, nil
		}
	}
	var cmd tea.Cmd
	switch r.tab {
	case tabIssues:
		r.issues, cmd = r.issues.Update(msg)
	case tabSteps:
		r.steps, cmd = r.steps.Update(msg)
	case tabFiles:
		r.files, cmd = r.files.Update(msg)
	}
	return r, cmd
}

// View implements tea.Model.
func (r *Review) View() string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("stratum review"),
		r.renderStatus(),
		r.renderTabs(),
	)
	var body string
	switch r.tab {
	case tabIssues:
		body = r.issues.View()
	case tabSteps:
		body = r.steps.View()
	case tabFiles:
		body = r.files.View()
	default:
		body = r.renderJournal()
	}
	footer := footerStyle.Render("tab/shift+tab switch panes · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (r *Review) renderStatus() string {
	report := r.result.Report
	errs := len(report.Errors())
	warns := len(report.Warnings())
	summary := fmt.Sprintf(" %d error(s), %d warning(s), %d step(s)", errs, warns, len(r.result.Steps))
	switch report.Status {
	case validate.StatusPass:
		return statusPassStyle.Render("PASS") + summary
	case validate.StatusWarnings:
		return statusWarnStyle.Render("WARNINGS") + summary
	default:
		return statusFailStyle.Render("FAIL") + summary
	}
}

func (r *Review) renderTabs() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if reviewTab(i) == r.tab {
			parts[i] = tabActiveStyle.Render(name)
		} else {
			parts[i] = tabInactiveStyle.Render(name)
		}
	}
	return strings.Join(parts, "  ")
}

func (r *Review) renderJournal() string {
	if len(r.journal) == 0 {
		return footerStyle.Render("No journal entries yet.")
	}
	lines := make([]string, 0, len(r.journal)+1)
	lines = append(lines, r.journal...)
	if r.journalTotal > len(r.journal) {
		lines = append(lines, footerStyle.Render(
			fmt.Sprintf("... %d earlier entries", r.journalTotal-len(r.journal)),
		))
	}
	return strings.Join(lines, "\n")
}

// Run launches the browser and blocks until the user quits.
func Run(result *pipeline.Result, book *logbook.Logbook) error {
	program := tea.NewProgram(NewReview(result, book), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: run review: %w", err)
	}
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
