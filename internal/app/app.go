package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakline/baseline/internal/assess"
	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/router"
	"github.com/oakline/baseline/internal/screen"
	"github.com/oakline/baseline/internal/screens/assessment"
	"github.com/oakline/baseline/internal/screens/report"
	"github.com/oakline/baseline/internal/screens/welcome"
	"github.com/oakline/baseline/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	engine *assess.Engine
	width  int
	height int
}

// newAppModel wires the screen flow: welcome -> assessment -> report.
func newAppModel(engine *assess.Engine, deps assess.Deps) AppModel {
	reportFactory := func(result *collab.CompletionResult) screen.Screen {
		return report.New(result)
	}
	assessmentFactory := func() screen.Screen {
		return assessment.New(engine, deps, reportFactory)
	}
	return AppModel{
		router: router.New(welcome.New(engine, assessmentFactory)),
		engine: engine,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.engine.State().Progress(), m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(provider.KeyHints(), footerHints...)
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program for one assessment attempt.
func Run(engine *assess.Engine, deps assess.Deps) error {
	p := tea.NewProgram(newAppModel(engine, deps))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
