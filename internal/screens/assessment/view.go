package assessment

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakline/baseline/internal/assess"
	"github.com/oakline/baseline/internal/collab"
	"github.com/oakline/baseline/internal/ui/theme"
)

func (s *AssessmentScreen) View(width, height int) string {
	st := s.engine.State()

	if st.LastError != "" {
		return renderError(width, st.LastError, s.retry != nil)
	}

	switch s.mode {
	case modeSubmitting:
		return centerDim(width, "\n\n\n  Submitting your assessment...")
	case modeFeedback:
		return s.renderFeedback(width)
	case modeSpeechAudio, modeSpeechNaming:
		return s.renderSpeech(width)
	}

	if st.Loading || st.CurrentQuestion == nil {
		return centerDim(width, "\n\n  Preparing your next question...")
	}
	return s.renderQuestion(width)
}

func (s *AssessmentScreen) renderQuestion(width int) string {
	st := s.engine.State()
	q := st.CurrentQuestion

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s — %s", st.CurrentDomain().Domain.DisplayName(), st.CurrentComponent().Name))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  level %d",
			st.AnsweredInComponent+1,
			st.CurrentComponent().QuestionCount,
			q.Difficulty,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	questionStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(questionStyle.Render(q.Content))
	b.WriteString("\n\n")

	if q.Type == collab.TypeMultipleChoice {
		b.WriteString(s.renderOptions(width))
	} else {
		answerLine := lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View())
		b.WriteString(answerLine)
	}

	return b.String()
}

func (s *AssessmentScreen) renderOptions(width int) string {
	var b strings.Builder
	b.WriteString(s.mc.View())

	selectLine := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\nSelect (1-4) or use arrows + Enter")
	b.WriteString(selectLine)

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *AssessmentScreen) renderSpeech(width int) string {
	st := s.engine.State()
	comp := st.CurrentComponent()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("%s — %s", st.CurrentDomain().Domain.DisplayName(), comp.Name)))
	b.WriteString("\n\n")

	if s.mode == modeSpeechAudio {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Render("Record the learner speaking, then enter the recording's file path."))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("File: " + s.input.View()))
		return b.String()
	}

	labels := make([]string, len(defaultNamingCards))
	for i, card := range defaultNamingCards {
		labels[i] = card.Label
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Show the %d picture cards and write down what the learner calls each one.", len(labels))))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Cards: " + strings.Join(labels, ", ")))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Names: " + s.input.View()))
	return b.String()
}

func (s *AssessmentScreen) renderFeedback(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	switch {
	case s.lastSpeech:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Speech sample recorded!"))
	case s.lastCorrect:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Success).
			Bold(true).
			Render("Correct!"))
	default:
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Bold(true).
			Render("Not quite"))
	}

	if s.lastOutcome != nil {
		switch {
		case s.lastOutcome.ReadyToSubmit:
			b.WriteString("\n\n")
			b.WriteString(centerDim(width, "That was the last one! Submitting next."))
		case s.lastOutcome.Advanced == assess.AdvancedDomain:
			b.WriteString("\n\n")
			b.WriteString(centerDim(width, fmt.Sprintf("Moving on to %s.",
				s.engine.State().CurrentDomain().Domain.DisplayName())))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(centerDim(width, "Press any key to continue..."))
	return b.String()
}

func renderError(width int, errMsg string, retryable bool) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Something went wrong: %s", errMsg)))
	if retryable {
		b.WriteString("\n\n")
		b.WriteString(centerDim(width, "Press R to retry."))
	}
	return b.String()
}

func centerDim(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(text)
}
