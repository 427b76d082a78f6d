// Package report renders the per-domain capability report returned by
// the completion collaborator.
package report

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/flow"
	"github.com/oakline/baseline/internal/ledger"
	"github.com/oakline/baseline/internal/screen"
	"github.com/oakline/baseline/internal/ui/components"
	"github.com/oakline/baseline/internal/ui/layout"
	"github.com/oakline/baseline/internal/ui/theme"
)

// ReportScreen displays the assessment results, one section per domain.
type ReportScreen struct {
	result  *collab.CompletionResult
	grouped map[flow.Domain][]ledger.Entry
}

var _ screen.Screen = (*ReportScreen)(nil)
var _ screen.KeyHintProvider = (*ReportScreen)(nil)

// New creates a ReportScreen for a completed assessment.
func New(result *collab.CompletionResult) *ReportScreen {
	s := &ReportScreen{result: result}
	if result != nil {
		s.grouped = ledger.GroupByDomain(result.QuestionLedger, result.DetailedResponses)
	}
	return s
}

func (s *ReportScreen) Init() tea.Cmd {
	return nil
}

func (s *ReportScreen) Title() string {
	return "Assessment Report"
}

func (s *ReportScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Q", Description: "Quit"},
	}
}

func (s *ReportScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "q", "enter", "esc":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *ReportScreen) View(width, height int) string {
	if s.result == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Assessment complete!"))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))

	for _, domain := range flow.AllDomains() {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(domain.DisplayName())))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		b.WriteString(s.renderDomain(width, domain))
		b.WriteString("\n")
	}

	return b.String()
}

func (s *ReportScreen) renderDomain(width int, domain flow.Domain) string {
	entries := s.grouped[domain]

	pct, ok := ledger.Accuracy(entries)
	if !ok {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("No prompt history yet.")) + "\n"
	}

	var b strings.Builder

	correct := 0
	for _, e := range entries {
		if e.IsCorrect != nil && *e.IsCorrect {
			correct++
		}
	}
	summaryLine := fmt.Sprintf("%d/%d correct    %d%% accuracy", correct, len(entries), pct)
	summaryStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if pct >= 80 {
		summaryStyle = summaryStyle.Foreground(theme.Success)
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		summaryStyle.Render(summaryLine)))
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(pct)/100, false, min(width-16, 40))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")

	for _, e := range entries {
		mark := "✗"
		style := lipgloss.NewStyle().Foreground(theme.Error)
		if e.IsCorrect != nil && *e.IsCorrect {
			mark = "✓"
			style = lipgloss.NewStyle().Foreground(theme.Success)
		}
		text := e.Question.Content
		if len(text) > 48 {
			text = text[:45] + "..."
		}
		line := fmt.Sprintf("  %s %s", mark, text)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}
