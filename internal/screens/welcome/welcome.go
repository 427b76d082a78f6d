// Package welcome shows the entry screen: it allocates the server-side
// session and, when a matching snapshot exists, offers to resume the
// saved assessment or start over.
package welcome

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakline/baseline/internal/assess"
	"github.com/oakline/baseline/internal/router"
	"github.com/oakline/baseline/internal/screen"
	"github.com/oakline/baseline/internal/ui/components"
	"github.com/oakline/baseline/internal/ui/layout"
	"github.com/oakline/baseline/internal/ui/theme"
)

const banner = `╔╗ ┌─┐┌─┐┌─┐┬  ┬┌┐┌┌─┐
╠╩╗├─┤└─┐├┤ │  ││││├┤
╚═╝┴ ┴└─┘└─┘┴─┘┴┘└┘└─┘`

// startedMsg is sent when Engine.Start finishes.
type startedMsg struct {
	Err error
}

// resumeDecidedMsg is sent after Resume or StartOver completes.
type resumeDecidedMsg struct {
	Err error
}

// WelcomeScreen drives the pre-assessment phase of the engine.
type WelcomeScreen struct {
	engine   *assess.Engine
	next     func() screen.Screen
	menu     components.Menu
	starting bool
	errMsg   string
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. next builds the assessment screen that
// replaces this one once the engine reaches IN_PROGRESS.
func New(engine *assess.Engine, next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{engine: engine, next: next}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	w.starting = true
	return func() tea.Msg {
		return startedMsg{Err: w.engine.Start(context.Background())}
	}
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	if w.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	if w.engine.State().Phase == assess.PhaseResumeOffered {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "R", Description: "Resume"},
			{Key: "S", Description: "Start over"},
		}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		w.starting = false
		if msg.Err != nil {
			w.errMsg = msg.Err.Error()
			return w, nil
		}
		if w.engine.State().Phase == assess.PhaseResumeOffered {
			w.menu = components.NewMenu([]components.MenuItem{
				{Label: "Resume where you left off", Action: w.resume},
				{Label: "Start over from the beginning", Action: w.startOver},
			})
			return w, nil
		}
		return w, w.transition()

	case resumeDecidedMsg:
		if msg.Err != nil {
			w.errMsg = msg.Err.Error()
			return w, nil
		}
		return w, w.transition()

	case tea.KeyMsg:
		return w.handleKey(msg)
	}
	return w, nil
}

func (w *WelcomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if w.errMsg != "" {
		if key == "r" || key == "R" {
			w.errMsg = ""
			return w, w.Init()
		}
		return w, nil
	}

	if w.engine.State().Phase == assess.PhaseResumeOffered {
		switch key {
		case "r", "R":
			return w, w.resume()
		case "s", "S":
			return w, w.startOver()
		default:
			var cmd tea.Cmd
			w.menu, cmd = w.menu.Update(msg)
			return w, cmd
		}
	}
	return w, nil
}

func (w *WelcomeScreen) resume() tea.Cmd {
	return func() tea.Msg {
		return resumeDecidedMsg{Err: w.engine.Resume(context.Background())}
	}
}

func (w *WelcomeScreen) startOver() tea.Cmd {
	return func() tea.Msg {
		return resumeDecidedMsg{Err: w.engine.StartOver(context.Background())}
	}
}

func (w *WelcomeScreen) transition() tea.Cmd {
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Render(banner))
	sections = append(sections, "")
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Baseline assessment"))
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render("Learner: "+w.engine.State().LearnerID))
	sections = append(sections, "")

	switch {
	case w.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Error).
			Render("Could not start: "+w.errMsg))
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("Press R to retry."))

	case w.starting:
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("Setting up your session..."))

	case w.engine.State().Phase == assess.PhaseResumeOffered:
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Render("You have an assessment in progress."))
		sections = append(sections, "")
		sections = append(sections, w.menu.View())
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
